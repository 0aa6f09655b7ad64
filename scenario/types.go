package scenario

import "time"

// Stance identifies which side of the reflexive narrative a bundle represents.
type Stance string

const (
	StanceNegative    Stance = "negative"
	StancePositive    Stance = "positive"
	StanceNeutralized Stance = "neutralized"
)

// Bundle is the thesis/drivers/risks/path/confidence tuple for one stance or for the
// neutralized synthesis.
type Bundle struct {
	Thesis string `json:"thesis" jsonschema:"required"`

	// Drivers and Risks hold up to three short labels each and never share a label
	// (compared case-insensitively).
	Drivers []string `json:"drivers" jsonschema:"required"`
	Risks   []string `json:"risks" jsonschema:"required"`

	// Chain is the stance's feedback loop narrative, one entry per step.
	Chain []string `json:"chain,omitempty"`

	// PricePath is a step-indexed percentage move; cumulative only in geometric path mode.
	PricePath  []float64 `json:"price_path" jsonschema:"required"`
	Confidence float64   `json:"confidence" jsonschema:"required"`

	// Band is set on the neutralized bundle only.
	Band *Band `json:"band,omitempty"`
}

// Band is a uniform variance envelope around the neutralized path.
type Band struct {
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

// Outcomes groups the three stance bundles of a run.
type Outcomes struct {
	Negative    Bundle `json:"negative" jsonschema:"required"`
	Neutralized Bundle `json:"neutralized" jsonschema:"required"`
	Positive    Bundle `json:"positive" jsonschema:"required"`
}

// Comparators are non-reflexive baselines seeded from each stance's first step.
type Comparators struct {
	NegIndependent []float64 `json:"neg_independent"`
	PosIndependent []float64 `json:"pos_independent"`
}

// InteractionArea is the summed absolute gap between each stance path and its comparator.
type InteractionArea struct {
	Neg float64 `json:"neg"`
	Pos float64 `json:"pos"`
}

// Meta describes how a run was produced.
type Meta struct {
	RunID          string           `json:"run_id"`
	Mode           string           `json:"mode"`
	Timestamp      time.Time        `json:"timestamp"`
	Horizon        int              `json:"horizon"`
	Unit           string           `json:"unit"`
	PathMode       PathMode         `json:"path_mode"`
	ComparatorMode ComparatorMode   `json:"comparator_mode"`
	Weights        Weights          `json:"weights"`
	DampEffective  float64          `json:"damp_effective"`
	Interaction    *InteractionArea `json:"interaction_area,omitempty"`

	// ValidationError is an advisory note; a result that fails validation is still returned.
	ValidationError string `json:"validation_error,omitempty"`
}

// RunResult is the sole externally consumed artifact of a scenario run.
type RunResult struct {
	Topic       string       `json:"topic" jsonschema:"required"`
	Context     string       `json:"context" jsonschema:"required"`
	Outcomes    Outcomes     `json:"outcomes" jsonschema:"required"`
	Comparators *Comparators `json:"comparators,omitempty"`
	Meta        Meta         `json:"meta"`
}

// Bundle returns the outcome bundle for stance.
func (o Outcomes) Bundle(s Stance) (Bundle, bool) {
	switch s {
	case StanceNegative:
		return o.Negative, true
	case StancePositive:
		return o.Positive, true
	case StanceNeutralized:
		return o.Neutralized, true
	}
	return Bundle{}, false
}
