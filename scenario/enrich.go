package scenario

import (
	"regexp"
	"strings"
)

// LabelField names which label list a vocabulary entry fills.
type LabelField string

const (
	FieldDrivers LabelField = "drivers"
	FieldRisks   LabelField = "risks"
)

// Classifier maps a topic and its context to a vocabulary domain.
type Classifier func(topic, context string) (domain string, ok bool)

// Vocabulary holds replacement labels per stance and field for one domain.
type Vocabulary map[Stance]map[LabelField][]string

// Enricher swaps placeholder labels for domain vocabulary when the classifier recognizes
// the topic. The zero value leaves labels untouched.
type Enricher struct {
	Classify     Classifier
	Vocabularies map[string]Vocabulary
}

// KeywordClassifier returns a Classifier that reports domain when any keyword occurs as a
// whole word (optionally pluralized) in the topic or context, ignoring case.
func KeywordClassifier(domain string, keywords ...string) Classifier {
	var patterns []*regexp.Regexp
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(k)+`s?\b`))
		}
	}
	return func(topic, context string) (string, bool) {
		text := topic + " " + context
		for _, p := range patterns {
			if p.MatchString(text) {
				return domain, true
			}
		}
		return "", false
	}
}

// FirstMatch chains classifiers and returns the first match.
func FirstMatch(classifiers ...Classifier) Classifier {
	return func(topic, context string) (string, bool) {
		for _, c := range classifiers {
			if c == nil {
				continue
			}
			if d, ok := c(topic, context); ok {
				return d, true
			}
		}
		return "", false
	}
}

// Pool returns the vocabulary for stance and field, or nil when the topic is unclassified.
func (e Enricher) Pool(topic, context string, stance Stance, field LabelField) []string {
	if e.Classify == nil {
		return nil
	}
	domain, ok := e.Classify(topic, context)
	if !ok {
		return nil
	}
	return e.Vocabularies[domain][stance][field]
}

// Enrich replaces placeholder labels with pool entries in order, skipping entries the list
// already holds. Placeholders stay when the pool runs out.
func (e Enricher) Enrich(topic, context string, stance Stance, field LabelField, items []string) []string {
	out := append([]string(nil), items...)
	pool := e.Pool(topic, context, stance, field)
	if len(pool) == 0 {
		return out
	}
	used := labelSet(out)
	next := 0
	for i, it := range out {
		if !IsPlaceholder(it) {
			continue
		}
		for next < len(pool) {
			candidate := pool[next]
			next++
			key := strings.ToLower(candidate)
			if _, ok := used[key]; ok {
				continue
			}
			used[key] = struct{}{}
			out[i] = candidate
			break
		}
	}
	return out
}

// AccountingStressDomain is the domain key of the built-in vocabulary.
const AccountingStressDomain = "accounting-stress"

// AccountingStressVocabulary covers accounting-fraud and balance-sheet-stress narratives.
var AccountingStressVocabulary = Vocabulary{
	StanceNegative: {
		FieldDrivers: {
			"auditor churn",
			"off-balance-sheet obligations",
			"related-party transactions",
			"mark-to-market opacity",
			"credit spread widening",
			"wholesale funding stress",
		},
		FieldRisks: {
			"regulatory intervention window",
			"short-squeeze reflex",
			"activist balance-sheet clean-up",
			"acquisition rumor",
		},
	},
	StancePositive: {
		FieldDrivers: {
			"short-squeeze reflex",
			"regulatory intervention window",
			"asset sale / deleveraging",
			"turnaround guidance",
			"credit line reaffirmation",
		},
		FieldRisks: {
			"forensic accounting exposure",
			"auditor churn",
			"related-party transactions",
			"off-balance-sheet obligations",
		},
	},
}

// DefaultEnricher recognizes accounting-stress topics by keyword.
func DefaultEnricher() Enricher {
	return Enricher{
		Classify: KeywordClassifier(AccountingStressDomain,
			"enron", "10-q", "auditor", "off-balance", "spe", "mark-to-market"),
		Vocabularies: map[string]Vocabulary{
			AccountingStressDomain: AccountingStressVocabulary,
		},
	}
}
