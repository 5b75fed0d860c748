package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
)

// PairedTTest runs a two-sided paired t-test on matched observations,
// returning the t-statistic and p-value. Pairs with fewer than two
// observations, or with zero variance in the differences, carry no evidence
// and report t = 0, p = 1.
func PairedTTest(x, y []float64) (float64, float64) {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0, 1.0
	}

	diffs := make([]float64, n)
	for i := range x {
		diffs[i] = y[i] - x[i]
	}

	mean, _ := stats.Mean(diffs)
	sd, _ := stats.StandardDeviationSample(diffs)
	if sd == 0 || math.IsNaN(sd) {
		return 0, 1.0
	}

	tStat := mean / (sd / math.Sqrt(float64(n)))
	return tStat, TTestPValue(tStat, n-1)
}
