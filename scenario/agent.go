package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/theimaginaryfoundation/reflex-o-bot/scenario/fileutils"
)

const (
	signalCount = 5
	chainSteps  = 4
)

// Persona is a stance agent's identity and system preamble.
type Persona struct {
	Name     string
	Stance   Stance
	Preamble string
}

var (
	NegativePersona = Persona{
		Name:   "NEG",
		Stance: StanceNegative,
		Preamble: "You are the NEGATIVE feedback agent. Amplify adverse narratives: fraud contagion, " +
			"liquidity spirals, covenant breaches, regulatory overhang. Build a self-reinforcing " +
			"causal chain. Be precise and non-defamatory; flag uncertainty.",
	}
	PositivePersona = Persona{
		Name:   "POS",
		Stance: StancePositive,
		Preamble: "You are the POSITIVE feedback agent. Amplify constructive narratives: flight-to-quality " +
			"illusions, short-squeezes, turnaround catalysts, accounting clean-up. Build a self-" +
			"reinforcing causal chain. Be precise and non-defamatory; flag uncertainty.",
	}
)

// defaultPaths are the stance path shapes used when the generator does not supply one.
var defaultPaths = map[Stance][]float64{
	StanceNegative: {-3.0, -2.0, -1.0, -0.5, -0.2},
	StancePositive: {2.0, 1.5, 1.0, 0.5, 0.2},
}

var defaultConfidence = map[Stance]float64{
	StanceNegative: 0.6,
	StancePositive: 0.65,
}

// SignalReport is the structured answer a live generator may return instead of free text.
type SignalReport struct {
	// Signals are five short market signals for the topic.
	Signals []string `json:"signals" jsonschema:"description=Exactly five short market signals"`

	// Thesis is a one-sentence reflexive thesis for the stance.
	Thesis string `json:"thesis" jsonschema:"description=One-sentence reflexive thesis"`

	// PricePath is five per-step percentage moves.
	PricePath []float64 `json:"price_path" jsonschema:"description=Five per-step percentage moves"`

	// Confidence is in (0,1].
	Confidence float64 `json:"confidence" jsonschema:"description=Confidence between 0 and 1"`
}

// Agent produces one stance's raw bundle from a Generator.
type Agent struct {
	Persona   Persona
	Generator Generator
	Enricher  Enricher
}

// Reason asks the generator for signals and turns them into a stance bundle. Generator
// errors are returned; malformed output is replaced with deterministic placeholders.
func (a Agent) Reason(ctx context.Context, topic, contextText string) (Bundle, error) {
	if a.Generator == nil {
		return Bundle{}, errors.New("Agent.Reason: generator is nil")
	}
	raw, err := a.Generator.Generate(ctx, a.prompt(topic, contextText))
	if err != nil {
		return Bundle{}, fmt.Errorf("Agent.Reason %s: generate: %w", a.Persona.Name, err)
	}

	report, structured := parseReport(raw)
	signals := padSignals(report.Signals)
	stance := a.Persona.Stance

	drivers := a.Enricher.Enrich(topic, contextText, stance, FieldDrivers, signals[:MaxLabels])
	risks := a.Enricher.Enrich(topic, contextText, stance, FieldRisks, signals[len(signals)-MaxLabels:])
	riskPool := slices.Concat(a.Enricher.Pool(topic, contextText, stance, FieldRisks), FallbackRisks, reserveRisks)
	risks = disjointFill(drivers, risks, riskPool)

	thesis := stripStanceTags(report.Thesis)
	if thesis == "" {
		thesis = stripStanceTags(fmt.Sprintf("%s: reflexive %s thesis under '%s'.", a.Persona.Name, stance, topic))
	}

	path := append([]float64(nil), defaultPaths[stance]...)
	if structured && validPath(report.PricePath) {
		path = append([]float64(nil), report.PricePath...)
	}
	confidence := defaultConfidence[stance]
	if structured && report.Confidence > 0 && report.Confidence <= 1 {
		confidence = report.Confidence
	}

	return Bundle{
		Thesis:     thesis,
		Drivers:    drivers,
		Risks:      risks,
		Chain:      FeedbackChain(stance, signals, chainSteps),
		PricePath:  path,
		Confidence: confidence,
	}, nil
}

func (a Agent) prompt(topic, contextText string) string {
	var b strings.Builder
	b.WriteString(a.Persona.Preamble)
	b.WriteString("\nTopic: ")
	b.WriteString(topic)
	b.WriteString("\nContext: ")
	b.WriteString(contextText)
	b.WriteString("\nTask: 1) Extract 5 signals. 2) Build 4-step chain. 3) Output thesis, drivers, risks, price path, confidence.")
	return b.String()
}

// parseReport reads a JSON SignalReport when the output holds one, else the "Signals:"
// segment of a free-text answer. structured reports whether JSON was used.
func parseReport(raw string) (report SignalReport, structured bool) {
	var rep SignalReport
	if err := fileutils.DecodeModelJSON(raw, &rep); err == nil && len(rep.Signals) > 0 {
		return rep, true
	}

	parts := strings.SplitN(raw, "Signals:", 2)
	if len(parts) < 2 {
		return SignalReport{}, false
	}
	segment, _, _ := strings.Cut(parts[1], ";")
	var signals []string
	for _, s := range strings.Split(segment, ",") {
		if s = strings.TrimSpace(s); s != "" {
			signals = append(signals, s)
		}
	}
	return SignalReport{Signals: signals}, false
}

// padSignals trims to signalCount entries, padding with "signal-<n>" placeholders.
func padSignals(signals []string) []string {
	out := make([]string, 0, signalCount)
	for _, s := range signals {
		if s = strings.TrimSpace(s); s != "" && len(out) < signalCount {
			out = append(out, s)
		}
	}
	for i := len(out) + 1; i <= signalCount; i++ {
		out = append(out, fmt.Sprintf("signal-%d", i))
	}
	return out
}

// disjointFill drops risks that repeat a driver and refills from pool up to MaxLabels.
func disjointFill(drivers, risks, pool []string) []string {
	seen := labelSet(drivers)
	cleaned := make([]string, 0, MaxLabels)
	for _, r := range dedupeLabels(risks) {
		if _, ok := seen[strings.ToLower(r)]; !ok {
			cleaned = append(cleaned, r)
		}
	}
	return padLabels(head(cleaned, MaxLabels), pool, seen)
}

func validPath(p []float64) bool {
	if len(p) != signalCount {
		return false
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
