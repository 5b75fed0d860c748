package app

import (
	"context"
	"math"

	"phenoscreen/domain/core"
	"phenoscreen/domain/score"
	"phenoscreen/domain/screen"
	"phenoscreen/internal"
	"phenoscreen/internal/analysis"
	"phenoscreen/internal/annotate"
	"phenoscreen/internal/config"
)

// PooledScreen processes one pooled CRISPR screen dataset: it owns the
// phenotype run registry and orchestrates scoring and hit calling over the
// caller's count matrix.
type PooledScreen struct {
	matrix   *screen.Matrix
	cfg      config.ScreenConfig
	registry *score.Registry
	logger   *internal.Logger
}

// NewPooledScreen creates a screen processor over a validated count matrix
func NewPooledScreen(matrix *screen.Matrix, cfg config.ScreenConfig, logger *internal.Logger) (*PooledScreen, error) {
	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PooledScreen{
		matrix:   matrix,
		cfg:      cfg,
		registry: score.NewRegistry(),
		logger:   logger,
	}, nil
}

// Registry exposes the append-only phenotype run registry
func (s *PooledScreen) Registry() *score.Registry {
	return s.registry
}

// DrugScreenRequest describes a growth-rate screen scoring run
type DrugScreenRequest struct {
	T0        string // baseline condition
	Untreated string
	Treated   string

	// Doubling rates of the two arms, used as growth-rate divisors
	DBUntreated float64
	DBTreated   float64

	Level   score.Level
	RunName string // defaults to the score level
}

// CalculateDrugScreen computes gamma, tau and rho phenotype scores and
// registers them as one phenotype run. The call is atomic: all three scores
// are computed and validated before the registry changes, so a failure
// leaves no partial state.
func (s *PooledScreen) CalculateDrugScreen(ctx context.Context, req DrugScreenRequest) (*score.PhenotypeResult, error) {
	growthDelta := math.Abs(req.DBUntreated - req.DBTreated)
	if growthDelta < s.cfg.MinGrowthRateDelta {
		return nil, core.NewDegenerateGrowthRateError(growthDelta, s.cfg.MinGrowthRateDelta)
	}

	gamma, err := s.runScore(ctx, score.KindGamma, req.T0, req.Untreated, req.DBUntreated, req.Level)
	if err != nil {
		return nil, err
	}
	tau, err := s.runScore(ctx, score.KindTau, req.T0, req.Treated, req.DBTreated, req.Level)
	if err != nil {
		return nil, err
	}
	rho, err := s.runScore(ctx, score.KindRho, req.Untreated, req.Treated, growthDelta, req.Level)
	if err != nil {
		return nil, err
	}

	runName := req.RunName
	if runName == "" {
		runName = string(req.Level)
	}
	result := score.NewPhenotypeResult(runName)
	for _, table := range []*score.Table{gamma, tau, rho} {
		if err := result.Add(table); err != nil {
			return nil, err
		}
	}
	if err := s.registry.Register(result); err != nil {
		return nil, err
	}

	s.logger.Info("registered drug screen run %q (run id %s): %v", runName, result.RunID, result.Labels())
	return result, nil
}

// FlowScreenRequest describes a flow-sorting screen scoring run
type FlowScreenRequest struct {
	LowBin  string
	HighBin string

	Level   score.Level
	RunName string // defaults to the score level
}

// CalculateFlowBasedScreen computes the delta phenotype score between the
// low and high sorting bins, with no growth-rate correction, and registers
// it as one phenotype run. Duplicate score labels fail the whole call.
func (s *PooledScreen) CalculateFlowBasedScreen(ctx context.Context, req FlowScreenRequest) (*score.PhenotypeResult, error) {
	delta, err := s.runScore(ctx, score.KindDelta, req.LowBin, req.HighBin, 0, req.Level)
	if err != nil {
		return nil, err
	}

	runName := req.RunName
	if runName == "" {
		runName = string(req.Level)
	}
	result := score.NewPhenotypeResult(runName)
	if err := result.Add(delta); err != nil {
		return nil, err
	}
	if err := s.registry.Register(result); err != nil {
		return nil, err
	}

	s.logger.Info("registered flow screen run %q (run id %s): %v", runName, result.RunID, result.Labels())
	return result, nil
}

// ScoreQuery selects a registered score and overrides hit-calling defaults
type ScoreQuery struct {
	RunName   string
	ScoreName string // full label, e.g. "rho:untreated_vs_treated"

	// Optional overrides; zero values fall back to the screen configuration
	Threshold    float64
	PValueCutoff float64
	CtrlLabel    string
}

// GetPhenotypeScores retrieves a registered score table and annotates it
// against the negative-control distribution. Registry state is not
// modified.
func (s *PooledScreen) GetPhenotypeScores(query ScoreQuery) (*score.AnnotatedTable, error) {
	table, err := s.registry.Lookup(query.RunName, query.ScoreName)
	if err != nil {
		return nil, err
	}

	opts := annotate.Options{
		CtrlLabel:    query.CtrlLabel,
		Threshold:    query.Threshold,
		PValueCutoff: query.PValueCutoff,
	}
	if opts.CtrlLabel == "" {
		opts.CtrlLabel = s.cfg.CtrlLabel
	}
	if opts.Threshold == 0 {
		opts.Threshold = s.cfg.Threshold
	}
	if opts.PValueCutoff == 0 {
		opts.PValueCutoff = s.cfg.PValueCutoff
	}

	s.logger.Debug("annotating %s/%s with threshold %g, pvalue cutoff %g, control %q",
		query.RunName, query.ScoreName, opts.Threshold, opts.PValueCutoff, opts.CtrlLabel)
	return annotate.AnnotateScores(table, opts)
}

func (s *PooledScreen) runScore(ctx context.Context, kind score.Kind, cond1, cond2 string, growthRate float64, level score.Level) (*score.Table, error) {
	_, table, err := analysis.RunPhenoScore(ctx, s.matrix, analysis.Params{
		Kind:           kind,
		Cond1:          cond1,
		Cond2:          cond2,
		GrowthRate:     growthRate,
		NReps:          s.cfg.NReps,
		Transformation: s.cfg.Transformation,
		Test:           s.cfg.Test,
		Level:          level,
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}
