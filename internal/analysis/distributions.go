package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// minPValue floors p-values before log combination to keep Fisher's method
// finite when an element p-value underflows.
const minPValue = 1e-300

// TTestPValue computes the exact two-tailed p-value for a t-statistic using
// Student's t-distribution.
func TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	df := float64(degreesOfFreedom)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	// Two-tailed test
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// FisherCombinedPValue combines independent p-values with Fisher's method:
// -2 Σ ln(p) follows a chi-squared distribution with 2k degrees of freedom.
func FisherCombinedPValue(pvalues []float64) float64 {
	if len(pvalues) == 0 {
		return 1.0
	}
	if len(pvalues) == 1 {
		return pvalues[0]
	}

	statistic := 0.0
	for _, p := range pvalues {
		if p < minPValue {
			p = minPValue
		}
		if p > 1 {
			p = 1
		}
		statistic += -2 * math.Log(p)
	}

	chiDist := distuv.ChiSquared{K: float64(2 * len(pvalues))}
	return 1 - chiDist.CDF(statistic)
}
