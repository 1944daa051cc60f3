package track

import "context"

// ProcedureFunc is a single unit of work attached to a pipeline member,
// usually a closure binding an external dataset-transform call.
type ProcedureFunc func(ctx context.Context) error

// Member is a unit of pipeline execution: a named, ordered sequence of
// procedures. The set of implementations is closed — a Job tracked in the
// run-results store, or a bare Procedure — so member classification happens
// at construction, not at execution.
type Member interface {
	// Name identifies the member in logs and logfile names.
	Name() string

	steps() []ProcedureFunc
	kind() string
	markRunning() error
	markTerminal(status Status) error
}

// Procedure is a bare callable promoted to a pipeline member. It has no run
// history in the store.
type Procedure struct {
	name string
	fn   ProcedureFunc
}

// NewProcedure wraps fn as a pipeline member. An empty name becomes
// "Unnamed Procedure".
func NewProcedure(name string, fn ProcedureFunc) Procedure {
	if name == "" {
		name = "Unnamed Procedure"
	}
	return Procedure{name: name, fn: fn}
}

// Name returns the procedure's display name.
func (p Procedure) Name() string { return p.name }

func (p Procedure) steps() []ProcedureFunc           { return []ProcedureFunc{p.fn} }
func (p Procedure) kind() string                     { return "procedure" }
func (p Procedure) markRunning() error               { return nil }
func (p Procedure) markTerminal(status Status) error { return nil }
