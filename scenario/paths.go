package scenario

import "math"

// DefaultSnapEpsilon is the magnitude at or below which a path value is treated as zero.
const DefaultSnapEpsilon = 0.049

// round2 rounds half-to-even at two decimals and never returns negative zero.
func round2(v float64) float64 {
	r := math.RoundToEven(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

// SnapZero sets values with |v| <= eps to zero and rounds everything to two decimals. A value
// that only falls within eps after rounding is snapped too, so SnapZero is idempotent.
func SnapZero(values []float64, eps float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		r := round2(v)
		if math.Abs(v) <= eps || math.Abs(r) <= eps {
			r = 0
		}
		out[i] = r
	}
	return out
}

// GeometricCompound interprets moves as sequential percentage moves and returns the
// cumulative percentage path.
func GeometricCompound(moves []float64) []float64 {
	out := make([]float64, len(moves))
	acc := 1.0
	for i, m := range moves {
		acc *= 1 + m/100
		out[i] = round2((acc - 1) * 100)
	}
	return out
}

// LinearSmooth replaces seq with a straight line from its first to its last value over
// horizon equally spaced points. It returns a copy of seq when horizon <= 1 or seq is empty.
func LinearSmooth(seq []float64, horizon int) []float64 {
	if horizon <= 1 || len(seq) == 0 {
		return append([]float64{}, seq...)
	}
	start, end := seq[0], seq[len(seq)-1]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = round2(start + (end-start)*float64(i)/float64(horizon-1))
	}
	return out
}

// Resample maps path onto points values by piecewise-linear interpolation at fractional
// indices i*(n-1)/(points-1).
func Resample(path []float64, points int) []float64 {
	n := len(path)
	switch {
	case points <= 0 || n == 0:
		return []float64{}
	case points == n:
		return append([]float64{}, path...)
	case n == 1:
		out := make([]float64, points)
		for i := range out {
			out[i] = path[0]
		}
		return out
	case points == 1:
		return []float64{path[0]}
	}

	out := make([]float64, points)
	for i := range out {
		pos := float64(i) * float64(n-1) / float64(points-1)
		j := int(pos)
		if j >= n-1 {
			out[i] = path[n-1]
			continue
		}
		t := pos - float64(j)
		out[i] = path[j]*(1-t) + path[j+1]*t
	}
	return out
}

// IndependentDecay projects a non-reflexive path whose per-step move shrinks by
// (1-kappa) each step, preserving sign.
func IndependentDecay(startStep float64, horizon int, kappa float64) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	out := make([]float64, horizon)
	step := startStep
	for i := range out {
		out[i] = round2(step)
		step *= 1 - kappa
	}
	return out
}

// IndependentDrift projects a non-reflexive path that moves away from zero by drift per
// step. Zero starts drift upward.
func IndependentDrift(startStep float64, horizon int, drift float64) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	sign := 1.0
	if startStep < 0 {
		sign = -1
	}
	out := make([]float64, horizon)
	step := startStep
	for i := range out {
		out[i] = round2(step)
		step += sign * drift
	}
	return out
}

// fitLength truncates path to n values or pads it with trailing zeros.
func fitLength(path []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, path)
	return out
}
