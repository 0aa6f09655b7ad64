package scenario

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func assertDisjoint(t *testing.T, l Labels) {
	t.Helper()
	drivers := labelSet(l.Drivers)
	for _, r := range l.Risks {
		if _, ok := drivers[strings.ToLower(r)]; ok {
			t.Fatalf("risk %q repeats a driver: drivers=%v risks=%v", r, l.Drivers, l.Risks)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPlaceholder("signal-1"))
	assert.True(t, IsPlaceholder(" Signal-12 "))
	assert.False(t, IsPlaceholder("signal"))
	assert.False(t, IsPlaceholder("auditor signal-1"))
}

func TestReconcileLabels_MixesNegativeFirst(t *testing.T) {
	t.Parallel()

	neg := Labels{
		Drivers: []string{"signal-1", "auditor churn", "credit spread widening"},
		Risks:   []string{"acquisition rumor"},
	}
	pos := Labels{
		Drivers: []string{"turnaround guidance", "short-squeeze reflex"},
		Risks:   []string{"Auditor Churn", "forensic accounting exposure"},
	}

	got := ReconcileLabels(neg, pos)
	want := Labels{
		Drivers: []string{"auditor churn", "credit spread widening", "turnaround guidance"},
		Risks:   []string{"acquisition rumor", "forensic accounting exposure", "governance uncertainty"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ReconcileLabels mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileLabels_PadsEmptyInput(t *testing.T) {
	t.Parallel()

	got := ReconcileLabels(Labels{}, Labels{})
	assert.Equal(t, FallbackDrivers, got.Drivers)
	assert.Equal(t, FallbackRisks, got.Risks)
	assertDisjoint(t, got)
}

func TestReconcileLabels_RisksOverlappingDriversAreReplaced(t *testing.T) {
	t.Parallel()

	neg := Labels{Drivers: []string{"liquidity squeeze"}, Risks: []string{"LIQUIDITY SQUEEZE"}}
	pos := Labels{Drivers: []string{"model uncertainty"}, Risks: []string{"model uncertainty"}}

	got := ReconcileLabels(neg, pos)
	assert.Len(t, got.Drivers, MaxLabels)
	assert.Len(t, got.Risks, MaxLabels)
	assertDisjoint(t, got)
	assert.Contains(t, got.Risks, "governance uncertainty")
}

func TestLabelsNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []Labels{
		{},
		{Drivers: []string{"a", "A", " b ", ""}, Risks: []string{"b", "c", "d", "e"}},
		{Drivers: []string{"governance uncertainty"}, Risks: []string{"governance uncertainty"}},
		{Drivers: []string{"x", "y", "z", "w"}, Risks: []string{"x", "y", "z"}},
	}
	for _, in := range inputs {
		once := in.Normalize()
		twice := once.Normalize()
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("Normalize not idempotent for %v (-once +twice):\n%s", in, diff)
		}
		assertDisjoint(t, once)
		assert.Len(t, once.Drivers, MaxLabels)
		assert.Len(t, once.Risks, MaxLabels)
	}
}

func TestDisjointStance(t *testing.T) {
	t.Parallel()

	got := disjointStance(Labels{
		Drivers: []string{"a", "b", "c", "d"},
		Risks:   []string{"B", "e"},
	})
	assert.Equal(t, []string{"a", "b", "c"}, got.Drivers)
	assert.Equal(t, []string{"e"}, got.Risks)

	empty := disjointStance(Labels{})
	assert.NotNil(t, empty.Drivers)
	assert.NotNil(t, empty.Risks)
}

func TestDedupeLabels_CaseInsensitiveKeepsFirst(t *testing.T) {
	t.Parallel()

	got := dedupeLabels([]string{" Auditor churn", "auditor churn", "", "AUDITOR CHURN ", "acquisition rumor"})
	assert.Equal(t, []string{"Auditor churn", "acquisition rumor"}, got)

	l := ReconcileLabels(
		Labels{Drivers: []string{"Credit spread widening"}},
		Labels{Drivers: []string{"credit spread widening", "turnaround guidance"}},
	)
	assert.Equal(t, "Credit spread widening", l.Drivers[0])
	assert.NotContains(t, l.Drivers[1:], "credit spread widening")
}
