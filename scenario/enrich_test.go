package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	t.Parallel()

	c := KeywordClassifier("accounting-stress", "Enron", "10-Q")
	d, ok := c("Enron-like patterns", "")
	assert.True(t, ok)
	assert.Equal(t, "accounting-stress", d)

	_, ok = c("Semiconductor cycle", "inventory glut")
	assert.False(t, ok)

	_, ok = c("", "company x 10-q anomalies")
	assert.True(t, ok)
}

func TestDefaultEnricher_MatchesWholeWords(t *testing.T) {
	t.Parallel()

	classify := DefaultEnricher().Classify
	for _, text := range []string{"SPE structures", "two auditors resigned", "Mark-to-market gains"} {
		if _, ok := classify(text, ""); !ok {
			t.Fatalf("classify(%q) ok=false, want true", text)
		}
	}
	for _, text := range []string{"speed of a special prospect", "auditorium lease"} {
		if _, ok := classify(text, ""); ok {
			t.Fatalf("classify(%q) ok=true, want false", text)
		}
	}
}

func TestFirstMatch(t *testing.T) {
	t.Parallel()

	c := FirstMatch(nil, KeywordClassifier("chips", "wafer"), KeywordClassifier("banks", "deposit", "wafer"))
	d, ok := c("wafer shortage", "")
	assert.True(t, ok)
	assert.Equal(t, "chips", d)

	d, ok = c("deposit flight", "")
	assert.True(t, ok)
	assert.Equal(t, "banks", d)
}

func TestEnricher_ReplacesPlaceholdersOnly(t *testing.T) {
	t.Parallel()

	e := DefaultEnricher()
	got := e.Enrich("Enron 2001", "", StanceNegative, FieldDrivers, []string{"signal-1", "governance flags", "signal-3"})
	assert.Equal(t, []string{"auditor churn", "governance flags", "off-balance-sheet obligations"}, got)

	untouched := e.Enrich("Semiconductor cycle", "", StanceNegative, FieldDrivers, []string{"signal-1"})
	assert.Equal(t, []string{"signal-1"}, untouched)

	var zero Enricher
	assert.Equal(t, []string{"signal-2"}, zero.Enrich("Enron", "", StancePositive, FieldRisks, []string{"signal-2"}))
	assert.Nil(t, zero.Pool("Enron", "", StancePositive, FieldRisks))
}

func TestEnricher_PoolByStance(t *testing.T) {
	t.Parallel()

	e := DefaultEnricher()
	assert.Equal(t, AccountingStressVocabulary[StancePositive][FieldRisks],
		e.Pool("", "off-balance vehicles", StancePositive, FieldRisks))
}
