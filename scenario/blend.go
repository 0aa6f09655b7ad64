package scenario

import "math"

const (
	// DefaultDampening attenuates the confidence-weighted blend of the two stances.
	DefaultDampening = 0.55

	// baseHorizon is the horizon the dampening factor is calibrated for.
	baseHorizon = 5

	minHorizonDampening = 0.35
	maxHorizonDampening = 0.9
)

// EffectiveDampening scales damp down for horizons longer than five steps, clamped to
// [0.35, 0.9]. Shorter horizons use damp unchanged.
func EffectiveDampening(damp float64, horizon int) float64 {
	if horizon <= baseHorizon {
		return damp
	}
	step := damp * baseHorizon / float64(horizon)
	return math.Max(minHorizonDampening, math.Min(maxHorizonDampening, step))
}

// BlendPaths combines two percentage-move paths by weight, applies the horizon-adjusted
// dampening and snaps near-zero values. Inputs of unequal length are zipped to the shorter one.
// The result is neither compounded nor smoothed.
func BlendPaths(neg, pos []float64, w Weights, damp, eps float64, horizon int) []float64 {
	n := min(len(neg), len(pos))
	step := EffectiveDampening(damp, horizon)

	base := make([]float64, n)
	for i := range base {
		base[i] = (w.Neg*neg[i] + w.Pos*pos[i]) * step
	}
	return SnapZero(base, eps)
}
