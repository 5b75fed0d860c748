package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"phenoscreen/domain/core"
	"phenoscreen/domain/score"
	"phenoscreen/domain/screen"
	"phenoscreen/internal/config"
)

// drugScreenMatrix builds the canonical drug-screen fixture: 3 replicates
// each for T0, untreated and treated, one element per target.
func drugScreenMatrix() *screen.Matrix {
	return &screen.Matrix{
		Counts: [][]float64{
			// T0 r1-3, untreated r1-3, treated r1-3
			{100, 101, 99, 100, 102, 98, 400, 410, 390}, // GeneA: enriched under treatment
			{100, 99, 101, 100, 98, 102, 25, 24, 26},    // GeneB: depleted under treatment
			{100, 100, 100, 100, 100, 100, 100, 100, 100},
		},
		Elements: []screen.ElementMeta{
			{ID: "sgGeneA_1", Target: "GeneA"},
			{ID: "sgGeneB_1", Target: "GeneB"},
			{ID: "sgCtrl_1", Target: "negCtrl", Control: true},
		},
		Samples: []screen.SampleMeta{
			{ID: "T0_1", Condition: "T0", Replicate: 1},
			{ID: "T0_2", Condition: "T0", Replicate: 2},
			{ID: "T0_3", Condition: "T0", Replicate: 3},
			{ID: "unt_1", Condition: "untreated", Replicate: 1},
			{ID: "unt_2", Condition: "untreated", Replicate: 2},
			{ID: "unt_3", Condition: "untreated", Replicate: 3},
			{ID: "trt_1", Condition: "treated", Replicate: 1},
			{ID: "trt_2", Condition: "treated", Replicate: 2},
			{ID: "trt_3", Condition: "treated", Replicate: 3},
		},
	}
}

func newScreen(t *testing.T) *PooledScreen {
	t.Helper()
	s, err := NewPooledScreen(drugScreenMatrix(), config.Default().Screen, nil)
	require.NoError(t, err)
	return s
}

func TestCalculateDrugScreen_EndToEnd(t *testing.T) {
	s := newScreen(t)
	ctx := context.Background()

	result, err := s.CalculateDrugScreen(ctx, DrugScreenRequest{
		T0:          "T0",
		Untreated:   "untreated",
		Treated:     "treated",
		DBUntreated: 1.0,
		DBTreated:   2.0,
		Level:       score.Level("sgRNA"),
	})
	require.NoError(t, err)
	require.Equal(t, "sgRNA", result.RunName)
	require.Equal(t, []string{
		"gamma:T0_vs_untreated",
		"tau:T0_vs_treated",
		"rho:untreated_vs_treated",
	}, result.Labels())
	require.Equal(t, result.Labels(), s.Registry().Names())

	out, err := s.GetPhenotypeScores(ScoreQuery{
		RunName:   "sgRNA",
		ScoreName: "rho:untreated_vs_treated",
		Threshold: 2,
	})
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)

	ctrl, ok := out.Row("negCtrl")
	require.True(t, ok)
	require.InDelta(t, 0, ctrl.ZScore, 1e-12, "control must sit at the center of its own null")
	require.False(t, ctrl.Hit)
	require.Equal(t, score.HitLabelControl, ctrl.Label)

	geneA, ok := out.Row("GeneA")
	require.True(t, ok)
	require.True(t, geneA.Hit, "strong consistent enrichment should be called")
	require.Equal(t, score.HitLabelUp, geneA.Label)

	geneB, ok := out.Row("GeneB")
	require.True(t, ok)
	require.True(t, geneB.Hit)
	require.Equal(t, score.HitLabelDown, geneB.Label)
}

func TestCalculateDrugScreen_DuplicateRun(t *testing.T) {
	s := newScreen(t)
	ctx := context.Background()
	req := DrugScreenRequest{
		T0: "T0", Untreated: "untreated", Treated: "treated",
		DBUntreated: 1.0, DBTreated: 2.0,
		Level: score.LevelElement,
	}

	_, err := s.CalculateDrugScreen(ctx, req)
	require.NoError(t, err)

	// Same comparisons produce the same score labels, even under a new run name
	req.RunName = "second"
	_, err = s.CalculateDrugScreen(ctx, req)
	require.ErrorIs(t, err, core.ErrDuplicateScore)

	// The failed call must not have registered anything
	require.Equal(t, []string{"element"}, s.Registry().Runs())
	require.Len(t, s.Registry().Names(), 3)
}

func TestCalculateDrugScreen_DegenerateGrowthRate(t *testing.T) {
	s := newScreen(t)

	_, err := s.CalculateDrugScreen(context.Background(), DrugScreenRequest{
		T0: "T0", Untreated: "untreated", Treated: "treated",
		DBUntreated: 1.5, DBTreated: 1.5,
		Level: score.LevelElement,
	})
	require.ErrorIs(t, err, core.ErrDegenerateGrowthRate)
	require.Empty(t, s.Registry().Names(), "no partial registration on failure")
}

func TestCalculateDrugScreen_MissingCondition(t *testing.T) {
	s := newScreen(t)

	_, err := s.CalculateDrugScreen(context.Background(), DrugScreenRequest{
		T0: "T0", Untreated: "untreated", Treated: "sorted",
		DBUntreated: 1.0, DBTreated: 2.0,
		Level: score.LevelElement,
	})
	require.ErrorIs(t, err, core.ErrMissingCondition)
	require.Empty(t, s.Registry().Names())
}

func TestCalculateFlowBasedScreen(t *testing.T) {
	m := drugScreenMatrix()
	// Reuse the fixture as sorting bins
	for i := range m.Samples {
		switch m.Samples[i].Condition {
		case "untreated":
			m.Samples[i].Condition = "lowBin"
		case "treated":
			m.Samples[i].Condition = "highBin"
		}
	}
	s, err := NewPooledScreen(m, config.Default().Screen, nil)
	require.NoError(t, err)

	result, err := s.CalculateFlowBasedScreen(context.Background(), FlowScreenRequest{
		LowBin:  "lowBin",
		HighBin: "highBin",
		Level:   score.LevelTarget,
	})
	require.NoError(t, err)
	require.Equal(t, "target", result.RunName)
	require.Equal(t, []string{"delta:lowBin_vs_highBin"}, result.Labels())

	table, err := s.Registry().Lookup("target", "delta:lowBin_vs_highBin")
	require.NoError(t, err)
	require.Len(t, table.Rows, 3) // one row per target
}

func TestGetPhenotypeScores_NotFound(t *testing.T) {
	s := newScreen(t)

	_, err := s.GetPhenotypeScores(ScoreQuery{RunName: "sgRNA", ScoreName: "rho:untreated_vs_treated"})
	require.ErrorIs(t, err, core.ErrScoreNotFound)
}

func TestNewPooledScreen_InvalidMatrix(t *testing.T) {
	m := drugScreenMatrix()
	m.Counts = m.Counts[:2] // drop a row but keep its metadata

	_, err := NewPooledScreen(m, config.Default().Screen, nil)
	require.Error(t, err)
}
