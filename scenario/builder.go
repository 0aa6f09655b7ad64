package scenario

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Run modes recorded in Meta.Mode.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Builder reconciles two raw stance bundles into a RunResult. The zero value is usable.
type Builder struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Now and NewID default to the wall clock and random UUIDs; fix them for reproducible output.
	Now   func() time.Time
	NewID func() string

	// Mode is recorded in Meta.Mode (defaults to ModeLive).
	Mode string
}

// BuildResult is Builder{}.Build. Its run_id is a random UUID and its timestamp is the wall
// clock, so two calls with the same inputs differ in those two Meta fields only; use a
// Builder with Now and NewID set for byte-identical output.
func BuildResult(topic, context string, neg, pos Bundle, cfg Config) RunResult {
	return Builder{}.Build(topic, context, neg, pos, cfg)
}

// Build blends the two stance paths, reconciles their labels, projects independent
// comparators and measures the interaction area. It never fails: a result that does not
// pass schema validation carries the reason in Meta.ValidationError.
func (b Builder) Build(topic, context string, neg, pos Bundle, cfg Config) RunResult {
	log := b.logger()
	cfg = cfg.withDefaults()

	cNeg, cPos := clamp01(neg.Confidence), clamp01(pos.Confidence)
	w := ConfidenceWeights(cNeg, cPos)
	if cfg.Weights != "" {
		if override, ok := ParseWeights(cfg.Weights); ok {
			w = override
		} else {
			log.Warn("ignoring malformed weights override", zap.String("weights", cfg.Weights))
		}
	}

	labels := ReconcileLabels(
		Labels{Drivers: neg.Drivers, Risks: neg.Risks},
		Labels{Drivers: pos.Drivers, Risks: pos.Risks},
	)

	negPath := normalizePath(neg.PricePath, cfg.Horizon)
	posPath := normalizePath(pos.PricePath, cfg.Horizon)
	h := len(negPath)

	blended := BlendPaths(negPath, posPath, w, cfg.Damp, cfg.Eps, h)
	if cfg.PathMode == PathGeom {
		blended = GeometricCompound(blended)
	}
	blended = LinearSmooth(blended, h)

	log.Debug("blended stance paths",
		zap.Float64("w_neg", w.Neg),
		zap.Float64("w_pos", w.Pos),
		zap.Float64("damp_effective", EffectiveDampening(cfg.Damp, h)),
		zap.Int("horizon", h),
		zap.String("path_mode", string(cfg.PathMode)))

	neutral := Bundle{
		Thesis:     NeutralThesis(cfg.NeutralStyle, neg.Thesis, pos.Thesis),
		Drivers:    labels.Drivers,
		Risks:      labels.Risks,
		PricePath:  blended,
		Confidence: round2((cNeg + cPos) / 2),
		Band:       varianceBand(negPath, posPath, blended),
	}

	comparators := independentPaths(negPath, posPath, h, cfg)

	result := RunResult{
		Topic:   topic,
		Context: context,
		Outcomes: Outcomes{
			Negative:    stanceOutcome(neg, negPath, cNeg),
			Neutralized: neutral,
			Positive:    stanceOutcome(pos, posPath, cPos),
		},
		Comparators: &comparators,
		Meta: Meta{
			RunID:          b.newID(),
			Mode:           b.mode(),
			Timestamp:      b.now(),
			Horizon:        len(blended),
			Unit:           cfg.Unit,
			PathMode:       cfg.PathMode,
			ComparatorMode: cfg.ComparatorMode,
			Weights:        w,
			DampEffective:  EffectiveDampening(cfg.Damp, h),
			Interaction: &InteractionArea{
				Neg: interactionArea(negPath, comparators.NegIndependent),
				Pos: interactionArea(posPath, comparators.PosIndependent),
			},
		},
	}

	if err := ValidateResult(result); err != nil {
		log.Warn("result failed schema validation", zap.Error(err))
		result.Meta.ValidationError = err.Error()
	}
	return result
}

// normalizePath fits a raw stance path to the base horizon, then resamples it when the
// configured horizon differs.
func normalizePath(path []float64, horizon int) []float64 {
	fitted := fitLength(path, baseHorizon)
	if horizon > 0 && horizon != baseHorizon {
		return Resample(fitted, horizon)
	}
	return fitted
}

// stanceOutcome keeps the stance's own thesis and labels with drivers and risks made disjoint.
func stanceOutcome(raw Bundle, path []float64, confidence float64) Bundle {
	l := disjointStance(Labels{Drivers: raw.Drivers, Risks: raw.Risks})
	return Bundle{
		Thesis:     raw.Thesis,
		Drivers:    l.Drivers,
		Risks:      l.Risks,
		Chain:      slices.Clone(raw.Chain),
		PricePath:  path,
		Confidence: confidence,
	}
}

// varianceBand offsets the neutral path by a quarter of the mean absolute stance spread.
func varianceBand(neg, pos, neutral []float64) *Band {
	if len(neg) == 0 || len(neg) != len(pos) {
		return nil
	}
	spread := make([]float64, len(neg))
	floats.SubTo(spread, pos, neg)
	for i, v := range spread {
		spread[i] = math.Abs(v)
	}
	width := stat.Mean(spread, nil) / 4

	band := &Band{
		Upper: make([]float64, len(neutral)),
		Lower: make([]float64, len(neutral)),
	}
	for i, v := range neutral {
		band.Upper[i] = round2(v + width)
		band.Lower[i] = round2(v - width)
	}
	return band
}

// independentPaths projects the non-reflexive baselines for both stances.
func independentPaths(negPath, posPath []float64, horizon int, cfg Config) Comparators {
	project := func(path []float64) []float64 {
		var start float64
		if len(path) > 0 {
			start = path[0]
		}
		var out []float64
		if cfg.ComparatorMode == ComparatorDecay {
			out = IndependentDecay(start, horizon, cfg.Kappa)
		} else {
			out = IndependentDrift(start, horizon, cfg.Drift)
		}
		if cfg.PathMode == PathGeom {
			out = GeometricCompound(out)
		}
		return out
	}
	return Comparators{
		NegIndependent: project(negPath),
		PosIndependent: project(posPath),
	}
}

// interactionArea is the L1 distance between a reflexive path and its comparator.
func interactionArea(actual, independent []float64) float64 {
	if len(actual) == 0 || len(actual) != len(independent) {
		return 0
	}
	return round2(floats.Distance(actual, independent, 1))
}

func (b Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b Builder) now() time.Time {
	if b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now()
}

func (b Builder) newID() string {
	if b.NewID == nil {
		return uuid.NewString()
	}
	return b.NewID()
}

func (b Builder) mode() string {
	if b.Mode == "" {
		return ModeLive
	}
	return b.Mode
}
