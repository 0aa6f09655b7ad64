package scenario

import (
	"math"
	"strconv"
	"strings"
)

// Weights is the normalized pair of stance weights used by the blender.
type Weights struct {
	Neg float64 `json:"w_neg" yaml:"w_neg"`
	Pos float64 `json:"w_pos" yaml:"w_pos"`
}

// ConfidenceWeights derives weights from the two stance confidences, each clamped to [0,1].
// Two zero confidences produce zero weights.
func ConfidenceWeights(negConfidence, posConfidence float64) Weights {
	cNeg := clamp01(negConfidence)
	cPos := clamp01(posConfidence)
	total := cNeg + cPos
	if total == 0 {
		total = 1
	}
	return Weights{Neg: cNeg / total, Pos: cPos / total}
}

// ParseWeights parses an explicit "w_neg,w_pos" override and normalizes it to sum to 1.
// It reports false for malformed, negative or all-zero input so the caller can fall back
// to confidence-derived weights.
func ParseWeights(s string) (Weights, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Weights{}, false
	}
	var vals [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, false
		}
		vals[i] = v
	}
	total := vals[0] + vals[1]
	if total == 0 {
		return Weights{}, false
	}
	return Weights{Neg: vals[0] / total, Pos: vals[1] / total}, true
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
