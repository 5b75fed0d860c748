package score

import (
	"fmt"
	"math"
	"strings"

	"phenoscreen/domain/core"
)

// Level names the granularity of a phenotype score and doubles as the
// default run name. LevelTarget collapses elements to target genes; every
// other label (e.g. "sgRNA") scores at element level.
type Level string

const (
	LevelElement Level = "element" // one row per sgRNA
	LevelTarget  Level = "target"  // one row per target gene
)

// Kind names the phenotype score types for growth-based and flow-based screens
type Kind string

const (
	KindGamma Kind = "gamma" // t0 vs untreated, growth normalized
	KindTau   Kind = "tau"   // t0 vs treated, growth normalized
	KindRho   Kind = "rho"   // untreated vs treated, growth-delta normalized
	KindDelta Kind = "delta" // low bin vs high bin, no growth correction
)

// CompareName derives the comparison part of a score label from two
// condition labels, e.g. "untreated_vs_treated".
func CompareName(cond1, cond2 string) string {
	return fmt.Sprintf("%s_vs_%s", cond1, cond2)
}

// Label builds a full score label, e.g. "rho:untreated_vs_treated"
func Label(kind Kind, compareName string) string {
	return fmt.Sprintf("%s:%s", kind, compareName)
}

// Row is one scored element or target
type Row struct {
	Element string  `json:"element,omitempty"` // empty in target-level tables
	Target  string  `json:"target"`
	Score   float64 `json:"score"`
	PValue  float64 `json:"pvalue"`
}

// Table is an immutable element- or target-indexed score table
type Table struct {
	Label       string    `json:"label"`
	Level       Level     `json:"level"`
	Rows        []Row     `json:"rows"`
	Fingerprint core.Hash `json:"fingerprint"`
}

// NewTable builds a table and fingerprints its rows. The fingerprint covers
// the exact float bits so determinism can be asserted across repeated runs.
func NewTable(label string, level Level, rows []Row) *Table {
	return &Table{
		Label:       label,
		Level:       level,
		Rows:        rows,
		Fingerprint: fingerprintRows(label, level, rows),
	}
}

func fingerprintRows(label string, level Level, rows []Row) core.Hash {
	var data strings.Builder
	data.WriteString(label)
	data.WriteString(string(level))
	for _, r := range rows {
		data.WriteString(r.Element)
		data.WriteString(r.Target)
		fmt.Fprintf(&data, "%016x%016x", math.Float64bits(r.Score), math.Float64bits(r.PValue))
	}
	return core.NewHash([]byte(data.String()))
}

// PhenotypeResult is a named multi-score bundle produced by one scoring run.
// All contained tables share the same row index.
type PhenotypeResult struct {
	RunName    string
	RunID      core.RunID
	ComputedAt core.Timestamp

	labels []string
	tables map[string]*Table
}

// NewPhenotypeResult creates an empty result for a run
func NewPhenotypeResult(runName string) *PhenotypeResult {
	return &PhenotypeResult{
		RunName:    runName,
		RunID:      core.RunID(core.NewID()),
		ComputedAt: core.Now(),
		tables:     make(map[string]*Table),
	}
}

// Add attaches a score table under its label, preserving insertion order
func (r *PhenotypeResult) Add(t *Table) error {
	if _, exists := r.tables[t.Label]; exists {
		return core.NewDuplicateScoreError(t.Label)
	}
	r.labels = append(r.labels, t.Label)
	r.tables[t.Label] = t
	return nil
}

// Labels returns the score labels in insertion order
func (r *PhenotypeResult) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Table returns the score table for a label
func (r *PhenotypeResult) Table(label string) (*Table, bool) {
	t, ok := r.tables[label]
	return t, ok
}

// HitLabel classifies a target after annotation
type HitLabel string

const (
	HitLabelUp      HitLabel = "up_hit"
	HitLabelDown    HitLabel = "down_hit"
	HitLabelNone    HitLabel = "non_hit"
	HitLabelControl HitLabel = "control"
)

// AnnotatedRow is one target after hit calling
type AnnotatedRow struct {
	Target string   `json:"target"`
	Score  float64  `json:"score"`
	PValue float64  `json:"pvalue"`
	ZScore float64  `json:"zscore"`
	Label  HitLabel `json:"label"`
	Hit    bool     `json:"hit"`
}

// AnnotatedTable is a target-indexed hit-call table, derived on demand and
// never stored in the registry.
type AnnotatedTable struct {
	ScoreLabel string         `json:"score_label"`
	CtrlLabel  string         `json:"ctrl_label"`
	Threshold  float64        `json:"threshold"`
	CtrlMean   float64        `json:"ctrl_mean"`
	CtrlStdDev float64        `json:"ctrl_stddev"`
	Rows       []AnnotatedRow `json:"rows"`
}

// Row returns the annotated row for a target
func (a *AnnotatedTable) Row(target string) (AnnotatedRow, bool) {
	for _, r := range a.Rows {
		if r.Target == target {
			return r, true
		}
	}
	return AnnotatedRow{}, false
}
