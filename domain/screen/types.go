package screen

import (
	"fmt"
	"sort"

	"phenoscreen/domain/core"
)

// Matrix is the canonical data object for all phenotype computation.
// Rows are elements (sgRNAs), columns are samples. The scoring engine
// reads it and produces new derived tables; it never mutates it in place.
type Matrix struct {
	// Core data
	Counts [][]float64 // rows=elements, cols=samples

	// Row metadata
	Elements []ElementMeta

	// Column metadata
	Samples []SampleMeta
}

// ElementMeta contains metadata for each matrix row
type ElementMeta struct {
	ID      string // sgRNA identifier
	Target  string // gene (or control group) the element is designed against
	Control bool   // true for negative-control elements
}

// SampleMeta contains metadata for each matrix column
type SampleMeta struct {
	ID        core.SampleID
	Condition string // condition label, e.g. "T0", "untreated", "treated"
	Replicate int    // replicate index within the condition
}

// ElementCount returns the number of matrix rows
func (m *Matrix) ElementCount() int {
	return len(m.Elements)
}

// SampleCount returns the number of matrix columns
func (m *Matrix) SampleCount() int {
	return len(m.Samples)
}

// Validate checks that counts and metadata dimensions agree
func (m *Matrix) Validate() error {
	if len(m.Counts) != len(m.Elements) {
		return fmt.Errorf("count rows (%d) do not match element metadata (%d)", len(m.Counts), len(m.Elements))
	}
	for i, row := range m.Counts {
		if len(row) != len(m.Samples) {
			return fmt.Errorf("count row %d has %d columns, sample metadata has %d", i, len(row), len(m.Samples))
		}
	}
	return nil
}

// HasCondition reports whether any sample carries the condition label
func (m *Matrix) HasCondition(condition string) bool {
	for _, s := range m.Samples {
		if s.Condition == condition {
			return true
		}
	}
	return false
}

// SamplesForCondition returns the column indices of all samples with the
// given condition label, sorted by replicate index for stable pairing.
func (m *Matrix) SamplesForCondition(condition string) []int {
	var cols []int
	for j, s := range m.Samples {
		if s.Condition == condition {
			cols = append(cols, j)
		}
	}
	sort.SliceStable(cols, func(a, b int) bool {
		return m.Samples[cols[a]].Replicate < m.Samples[cols[b]].Replicate
	})
	return cols
}

// ReplicateColumns returns freshly allocated count columns for the first
// nReps replicates of a condition. Fails if the condition is absent or has
// fewer than nReps samples.
func (m *Matrix) ReplicateColumns(condition string, nReps int) ([][]float64, error) {
	if !m.HasCondition(condition) {
		return nil, core.NewMissingConditionError(condition)
	}
	cols := m.SamplesForCondition(condition)
	if len(cols) < nReps {
		return nil, core.NewReplicateMismatchError(condition, nReps, len(cols))
	}

	out := make([][]float64, nReps)
	for r := 0; r < nReps; r++ {
		col := make([]float64, m.ElementCount())
		for i := range m.Counts {
			col[i] = m.Counts[i][cols[r]]
		}
		out[r] = col
	}
	return out, nil
}

// Targets returns the distinct target labels in row order of first appearance
func (m *Matrix) Targets() []string {
	seen := make(map[string]bool)
	var targets []string
	for _, e := range m.Elements {
		if !seen[e.Target] {
			seen[e.Target] = true
			targets = append(targets, e.Target)
		}
	}
	return targets
}
