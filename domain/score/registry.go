package score

import (
	"phenoscreen/domain/core"
)

// Registry stores phenotype runs keyed by run name. Score labels are
// globally unique across the registry's lifetime: registering a label that
// was ever seen before is a hard error, regardless of run name. Entries are
// appended by the scoring operations and never removed.
type Registry struct {
	runs      map[string]*PhenotypeResult
	runOrder  []string
	names     map[string]bool // every score label ever registered
	nameOrder []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		runs:  make(map[string]*PhenotypeResult),
		names: make(map[string]bool),
	}
}

// Register adds a result under its run name. Registration is atomic: every
// label in the result is validated against the global name set before any
// state changes, so a duplicate leaves the registry untouched.
func (reg *Registry) Register(result *PhenotypeResult) error {
	for _, label := range result.Labels() {
		if reg.names[label] {
			return core.NewDuplicateScoreError(label)
		}
	}
	if _, exists := reg.runs[result.RunName]; !exists {
		reg.runOrder = append(reg.runOrder, result.RunName)
	}
	reg.runs[result.RunName] = result
	for _, label := range result.Labels() {
		reg.names[label] = true
		reg.nameOrder = append(reg.nameOrder, label)
	}
	return nil
}

// Run returns the result stored under a run name
func (reg *Registry) Run(runName string) (*PhenotypeResult, error) {
	result, ok := reg.runs[runName]
	if !ok {
		return nil, core.NewRunNotFoundError(runName)
	}
	return result, nil
}

// Lookup retrieves one score table by (run name, score label)
func (reg *Registry) Lookup(runName, scoreName string) (*Table, error) {
	if !reg.names[scoreName] {
		return nil, core.NewScoreNotFoundError(scoreName)
	}
	result, err := reg.Run(runName)
	if err != nil {
		return nil, err
	}
	table, ok := result.Table(scoreName)
	if !ok {
		return nil, core.NewScoreNotFoundError(scoreName)
	}
	return table, nil
}

// Names returns every score label ever registered, in registration order
func (reg *Registry) Names() []string {
	out := make([]string, len(reg.nameOrder))
	copy(out, reg.nameOrder)
	return out
}

// Runs returns the run names in registration order
func (reg *Registry) Runs() []string {
	out := make([]string, len(reg.runOrder))
	copy(out, reg.runOrder)
	return out
}
