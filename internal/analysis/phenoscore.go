package analysis

import (
	"context"
	"runtime"
	"sync"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"phenoscreen/domain/core"
	"phenoscreen/domain/score"
	"phenoscreen/domain/screen"
)

// TestTTest is the paired t-test identifier, the only supported test
const TestTTest = "ttest"

// Params configures one phenotype score computation between two conditions
type Params struct {
	Kind  score.Kind
	Cond1 string // baseline condition
	Cond2 string // comparison condition

	// GrowthRate divides every log-ratio to normalize for proliferation
	// differences between arms. Zero disables the correction.
	GrowthRate float64

	NReps          int
	Transformation string
	Test           string

	// Level selects the aggregation granularity: LevelTarget collapses
	// elements to targets, anything else stays at element level.
	Level score.Level
}

// RunPhenoScore computes a per-element (or per-target) phenotype score
// between two conditions:
//
//  1. select NReps replicate samples per condition
//  2. transform counts, then normalize to log relative abundances
//  3. per-replicate-pair log2-ratio Cond2 vs Cond1, divided by GrowthRate
//  4. paired t-test across replicate pairs per element
//  5. aggregate replicate ratios to a mean score per element
//  6. optionally collapse elements to targets
//
// Returns the derived comparison name (e.g. "untreated_vs_treated") and the
// score table. Per-element tests are independent, so they run under a
// bounded semaphore; results land in pre-assigned slots and the output is
// order-invariant and deterministic.
func RunPhenoScore(ctx context.Context, m *screen.Matrix, p Params) (string, *score.Table, error) {
	if p.Test != TestTTest {
		return "", nil, core.NewUnsupportedTestError(p.Test)
	}

	cols1, err := m.ReplicateColumns(p.Cond1, p.NReps)
	if err != nil {
		return "", nil, err
	}
	cols2, err := m.ReplicateColumns(p.Cond2, p.NReps)
	if err != nil {
		return "", nil, err
	}

	abund1, err := normalizeReplicates(p.Transformation, cols1)
	if err != nil {
		return "", nil, err
	}
	abund2, err := normalizeReplicates(p.Transformation, cols2)
	if err != nil {
		return "", nil, err
	}

	nElems := m.ElementCount()
	rows := make([]score.Row, nElems)

	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	var wg sync.WaitGroup
	for i := 0; i < nElems; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return "", nil, err
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			rows[i] = scoreElement(m.Elements[i], abund1, abund2, i, p.GrowthRate)
		}(i)
	}
	wg.Wait()

	if p.Level == score.LevelTarget {
		rows = CollapseToTargets(rows)
	}

	compareName := score.CompareName(p.Cond1, p.Cond2)
	table := score.NewTable(score.Label(p.Kind, compareName), p.Level, rows)
	return compareName, table, nil
}

// normalizeReplicates applies the transform and the abundance normalizer to
// each replicate column.
func normalizeReplicates(transformation string, cols [][]float64) ([][]float64, error) {
	out := make([][]float64, len(cols))
	for r, col := range cols {
		transformed, err := ApplyTransform(transformation, col)
		if err != nil {
			return nil, err
		}
		out[r] = LogRelativeAbundance(transformed)
	}
	return out, nil
}

// scoreElement computes the score and p-value for one element across
// replicate pairs.
func scoreElement(meta screen.ElementMeta, abund1, abund2 [][]float64, i int, growthRate float64) score.Row {
	nReps := len(abund1)
	before := make([]float64, nReps)
	after := make([]float64, nReps)
	ratios := make([]float64, nReps)
	for r := 0; r < nReps; r++ {
		before[r] = abund1[r][i]
		after[r] = abund2[r][i]
		ratio := after[r] - before[r]
		if growthRate != 0 {
			ratio /= growthRate
		}
		ratios[r] = ratio
	}

	mean, _ := stats.Mean(ratios)
	// Dividing the ratios by a constant growth rate leaves the paired
	// t-statistic unchanged, so the test runs on the raw abundance pairs.
	_, pvalue := PairedTTest(before, after)

	return score.Row{
		Element: meta.ID,
		Target:  meta.Target,
		Score:   mean,
		PValue:  pvalue,
	}
}
