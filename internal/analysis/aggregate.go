package analysis

import (
	"github.com/montanaflynn/stats"

	"phenoscreen/domain/score"
)

// CollapseToTargets groups element-level rows by target and combines them
// into one row per target: the target score is the mean of its element
// scores, and element p-values are combined with Fisher's method. Target
// order follows first appearance in the element rows.
func CollapseToTargets(rows []score.Row) []score.Row {
	index := make(map[string]int)
	var order []string
	grouped := make(map[string][]score.Row)

	for _, r := range rows {
		if _, seen := index[r.Target]; !seen {
			index[r.Target] = len(order)
			order = append(order, r.Target)
		}
		grouped[r.Target] = append(grouped[r.Target], r)
	}

	out := make([]score.Row, 0, len(order))
	for _, target := range order {
		members := grouped[target]
		scores := make([]float64, len(members))
		pvalues := make([]float64, len(members))
		for i, m := range members {
			scores[i] = m.Score
			pvalues[i] = m.PValue
		}

		mean, _ := stats.Mean(scores)
		out = append(out, score.Row{
			Target: target,
			Score:  mean,
			PValue: FisherCombinedPValue(pvalues),
		})
	}
	return out
}
