package analysis

import (
	"math"
)

// LogRelativeAbundance converts a sample's log2-transformed counts into
// log2 relative abundances by subtracting log2 of the sample total. The
// linear-space abundances 2^a sum to exactly 1 per sample, which makes the
// result independent of sequencing depth.
func LogRelativeAbundance(transformed []float64) []float64 {
	total := 0.0
	for _, t := range transformed {
		total += math.Exp2(t)
	}
	out := make([]float64, len(transformed))
	if total <= 0 {
		copy(out, transformed)
		return out
	}
	logTotal := math.Log2(total)
	for i, t := range transformed {
		out[i] = t - logTotal
	}
	return out
}
