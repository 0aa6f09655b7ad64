package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeutralThesis(t *testing.T) {
	t.Parallel()

	assert.Equal(t, conciseBridge, NeutralThesis(StyleConcise, "a", "b"))
	assert.Equal(t, conciseBridge, NeutralThesis("", "a", "b"))

	got := NeutralThesis(StyleCompare, "NEG: funding spiral deepens. More text", "POS:  squeeze lifts   price; later")
	want := "Bearish stress vs bullish rescue; outcomes muted by funding conditions (funding spiral deepens vs squeeze lifts price)."
	assert.Equal(t, want, got)
}

func TestFirstClause_Truncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 120)
	got := firstClause(long)
	assert.Equal(t, strings.Repeat("x", firstClauseLimit)+"…", got)
}

func TestStripStanceTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "reflexive negative thesis", stripStanceTags("NEG: POS: reflexive negative thesis"))
	assert.Equal(t, "plain", stripStanceTags("  plain "))
}

func TestFeedbackChain(t *testing.T) {
	t.Parallel()

	signals := []string{"a", "b", "c", "d", "e"}
	neg := FeedbackChain(StanceNegative, signals, 4)
	assert.Len(t, neg, 4)
	assert.Equal(t, "Step 1: a → investor flight → funding stress → liquidity spiral", neg[0])

	pos := FeedbackChain(StancePositive, []string{"x"}, 2)
	assert.Equal(t, "Step 2: x → squeeze/relief rally → easier credit → perceived resilience", pos[1])

	assert.Empty(t, FeedbackChain(StanceNegative, nil, 4))
}
