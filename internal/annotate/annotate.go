package annotate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"phenoscreen/domain/score"
)

// Options controls hit calling
type Options struct {
	CtrlLabel    string  // target label marking negative controls
	Threshold    float64 // required z-score magnitude
	PValueCutoff float64 // required significance
}

// AnnotateScores standardizes every row of a score table against the
// negative-control distribution and classifies hits. A row is a hit when
// |z| >= Threshold and pvalue < PValueCutoff; control rows are labeled as
// controls and never called hits. The stored table is not modified.
func AnnotateScores(table *score.Table, opts Options) (*score.AnnotatedTable, error) {
	var ctrlScores []float64
	for _, r := range table.Rows {
		if r.Target == opts.CtrlLabel {
			ctrlScores = append(ctrlScores, r.Score)
		}
	}
	if len(ctrlScores) == 0 {
		return nil, fmt.Errorf("control label %q has no rows in score table %q", opts.CtrlLabel, table.Label)
	}

	ctrlMean, _ := stats.Mean(ctrlScores)
	ctrlStd, _ := stats.StandardDeviation(ctrlScores)

	out := &score.AnnotatedTable{
		ScoreLabel: table.Label,
		CtrlLabel:  opts.CtrlLabel,
		Threshold:  opts.Threshold,
		CtrlMean:   ctrlMean,
		CtrlStdDev: ctrlStd,
		Rows:       make([]score.AnnotatedRow, 0, len(table.Rows)),
	}

	for _, r := range table.Rows {
		z := standardize(r.Score, ctrlMean, ctrlStd)
		row := score.AnnotatedRow{
			Target: r.Target,
			Score:  r.Score,
			PValue: r.PValue,
			ZScore: z,
			Label:  score.HitLabelNone,
		}
		switch {
		case r.Target == opts.CtrlLabel:
			row.Label = score.HitLabelControl
		case math.Abs(z) >= opts.Threshold && r.PValue < opts.PValueCutoff:
			row.Hit = true
			if z > 0 {
				row.Label = score.HitLabelUp
			} else {
				row.Label = score.HitLabelDown
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// standardize computes (x - mean) / sd against the control null. A
// zero-spread null still maps the exact control mean to 0; any deviation
// from it is infinitely many spreads away.
func standardize(x, mean, sd float64) float64 {
	diff := x - mean
	if sd > 0 {
		return diff / sd
	}
	if diff == 0 {
		return 0
	}
	return math.Inf(int(math.Copysign(1, diff)))
}
