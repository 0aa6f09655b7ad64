package scenario

import (
	"fmt"
	"regexp"
	"strings"
)

const conciseBridge = "Bearish stress meets bullish rescue; credit conditions and timing frictions dampen " +
	"both loops, yielding a muted, path-dependent outcome."

const firstClauseLimit = 90

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	stanceTag     = regexp.MustCompile(`(?i)^(NEG|POS)\s*:\s*`)
	clauseEnd     = regexp.MustCompile(`[.;!?]`)
)

// NeutralThesis returns the neutralized thesis for style. Both styles are fixed templates;
// compare quotes the first clause of each stance thesis.
func NeutralThesis(style NeutralStyle, negThesis, posThesis string) string {
	if normalizeStyle(style) == StyleCompare {
		return fmt.Sprintf("Bearish stress vs bullish rescue; outcomes muted by funding conditions (%s vs %s).",
			firstClause(negThesis), firstClause(posThesis))
	}
	return conciseBridge
}

// firstClause collapses whitespace, drops a NEG:/POS: tag and cuts at the first sentence
// terminator, truncating to firstClauseLimit runes.
func firstClause(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = stanceTag.ReplaceAllString(s, "")
	if loc := clauseEnd.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if r := []rune(s); len(r) > firstClauseLimit {
		return string(r[:firstClauseLimit]) + "…"
	}
	return s
}

// stripStanceTags removes any leading NEG:/POS: tags from a thesis.
func stripStanceTags(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := stanceTag.ReplaceAllString(s, "")
		if trimmed == s {
			return s
		}
		s = strings.TrimSpace(trimmed)
	}
}

// FeedbackChain builds the stance's self-reinforcing narrative, cycling through signals.
func FeedbackChain(stance Stance, signals []string, steps int) []string {
	if len(signals) == 0 || steps <= 0 {
		return []string{}
	}
	tail := "squeeze/relief rally → easier credit → perceived resilience"
	if stance == StanceNegative {
		tail = "investor flight → funding stress → liquidity spiral"
	}
	chain := make([]string, steps)
	for i := range chain {
		chain[i] = fmt.Sprintf("Step %d: %s → %s", i+1, signals[i%len(signals)], tail)
	}
	return chain
}
