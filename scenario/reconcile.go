package scenario

import (
	"regexp"
	"slices"
	"strings"
)

// MaxLabels is the number of drivers and risks a bundle carries.
const MaxLabels = 3

var placeholderLabel = regexp.MustCompile(`(?i)^signal-\d+$`)

var (
	// FallbackRisks fill the neutralized risk slots that reconciliation could not.
	FallbackRisks = []string{"governance uncertainty", "liquidity squeeze", "model uncertainty"}

	// FallbackDrivers are stance-neutral labels used to pad neutralized drivers.
	FallbackDrivers = []string{"dampened feedback", "funding conditions", "timing frictions"}

	// reserveRisks extend FallbackRisks when drivers already use some of them.
	reserveRisks = []string{"sentiment reversal", "policy uncertainty", "execution risk"}
)

// Labels is a drivers/risks pair.
type Labels struct {
	Drivers []string `json:"drivers"`
	Risks   []string `json:"risks"`
}

// IsPlaceholder reports whether label is a generated "signal-<n>" stand-in.
func IsPlaceholder(label string) bool {
	return placeholderLabel.MatchString(strings.TrimSpace(label))
}

// preferSubstance stable-sorts substantive labels ahead of placeholders.
func preferSubstance(items []string) []string {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b string) int {
		pa, pb := IsPlaceholder(a), IsPlaceholder(b)
		switch {
		case pa == pb:
			return 0
		case pb:
			return -1
		default:
			return 1
		}
	})
	return out
}

// mixLabels takes up to two preferred labels from each side, negative first, and keeps the
// first MaxLabels distinct ones.
func mixLabels(neg, pos []string) []string {
	n := preferSubstance(head(neg, MaxLabels))
	p := preferSubstance(head(pos, MaxLabels))
	merged := append(head(n, 2), head(p, 2)...)
	return head(dedupeLabels(merged), MaxLabels)
}

// ReconcileLabels merges the two stances' drivers and risks into the neutralized labels.
func ReconcileLabels(neg, pos Labels) Labels {
	return Labels{
		Drivers: mixLabels(neg.Drivers, pos.Drivers),
		Risks:   mixLabels(neg.Risks, pos.Risks),
	}.Normalize()
}

// Normalize dedupes, pads drivers from FallbackDrivers, then removes risks that repeat a
// driver and pads risks from FallbackRisks and reserveRisks. The overlap check runs once,
// after padding, so Normalize is idempotent.
func (l Labels) Normalize() Labels {
	drivers := padLabels(head(dedupeLabels(l.Drivers), MaxLabels), FallbackDrivers, nil)

	exclude := labelSet(drivers)
	risks := make([]string, 0, MaxLabels)
	for _, r := range dedupeLabels(l.Risks) {
		if _, ok := exclude[strings.ToLower(r)]; ok {
			continue
		}
		risks = append(risks, r)
	}
	risks = padLabels(head(risks, MaxLabels), slices.Concat(FallbackRisks, reserveRisks), exclude)
	return Labels{Drivers: drivers, Risks: risks}
}

// disjointStance keeps a stance's own labels without padding: drivers deduped and capped,
// risks deduped, stripped of drivers and capped.
func disjointStance(l Labels) Labels {
	drivers := head(dedupeLabels(l.Drivers), MaxLabels)
	exclude := labelSet(drivers)
	var risks []string
	for _, r := range dedupeLabels(l.Risks) {
		if _, ok := exclude[strings.ToLower(r)]; !ok {
			risks = append(risks, r)
		}
	}
	if drivers == nil {
		drivers = []string{}
	}
	if risks == nil {
		risks = []string{}
	}
	return Labels{Drivers: drivers, Risks: head(risks, MaxLabels)}
}

// padLabels appends pool entries not already present (or excluded) until MaxLabels.
func padLabels(items, pool []string, exclude map[string]struct{}) []string {
	out := slices.Clone(items)
	if out == nil {
		out = []string{}
	}
	present := labelSet(out)
	for _, c := range pool {
		if len(out) >= MaxLabels {
			break
		}
		key := strings.ToLower(c)
		if _, ok := present[key]; ok {
			continue
		}
		if _, ok := exclude[key]; ok {
			continue
		}
		present[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// dedupeLabels trims labels, drops empties and keeps the first of any case-insensitive
// duplicates.
func dedupeLabels(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func labelSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return slices.Clone(items)
	}
	return slices.Clone(items[:n])
}
