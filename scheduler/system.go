package scheduler

import (
	"context"

	"github.com/pdcamargo/atlas-engine/ecs"
)

// SystemID uniquely identifies a registered system within a Scheduler.
type SystemID string

// Set is an opaque tag naming a group of systems. Set-level constraints
// apply transitively to every current member of the set at graph-build
// time (spec.md §3 "Set").
type Set string

// Label is a string tag a system can bear; label-level ordering
// constraints expand to every system bearing the label (spec.md §4.4).
type Label string

// View is the {commands, events} pair a system invocation receives
// (spec.md §4.4 "Dispatch").
type View struct {
	Commands *ecs.Commands
	Events   *ecs.Events
}

// Func is a synchronous system body. Returning a non-nil error terminates
// only this system's invocation for the current tick; other systems in the
// phase still run (spec.md §4.4 "Failure").
type Func func(ctx context.Context, v View) error

// AsyncFunc is an asynchronous system body; the scheduler awaits its result
// channel before starting the next system (spec.md §4.4 "Async").
type AsyncFunc func(ctx context.Context, v View) <-chan error

// RunIf is a run-gate predicate. Predicates receive the same View a system
// would and are combined by logical AND with short-circuit evaluation
// (spec.md §4.4 "Run-gates").
type RunIf func(v View) bool

// Descriptor is a system's full registration: identity, body, set/label
// membership, and ordering/run-gate constraints (spec.md §3
// "System Descriptor").
type Descriptor struct {
	ID     SystemID
	Phase  Phase
	Fn     Func
	Async  AsyncFunc // mutually exclusive with Fn; exactly one must be set
	Sets   []Set
	Labels []Label

	Before []SystemID
	After  []SystemID

	BeforeSet []Set
	AfterSet  []Set

	BeforeLabel []Label
	AfterLabel  []Label

	RunIf []RunIf

	order int // insertion index, used as the Kahn tie-break
}

// SetConstraint is a per-set ordering rule applied to every current member
// of Set at graph-build time, either scoped to one phase or to every phase
// (a "wildcard" entry, Phase == "") (spec.md §4.4 step 3).
type SetConstraint struct {
	Phase       Phase // "" applies to every phase (the wildcard table)
	Set         Set
	BeforeSet   []Set
	AfterSet    []Set
	BeforeLabel []Label
	AfterLabel  []Label
}

// SetRunIf attaches a run-gate to every current and future member of set,
// evaluated alongside each member's own RunIf predicates (spec.md §4.4
// "Run-gates" — "own run-if predicates and all predicates attached to any
// of its sets").
type SetRunIf struct {
	Set   Set
	RunIf RunIf
}
