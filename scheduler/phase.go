// Package scheduler implements the declarative system scheduler:
// system descriptors, ordering-graph construction, set/label constraints,
// run-gates, and sequential per-phase dispatch (spec.md §4.4).
package scheduler

// Phase names one slot in the per-tick lifecycle. Order within a tick is
// fixed by Phases, not by registration order (spec.md §4.4).
type Phase string

const (
	StartUp         Phase = "StartUp"
	PreUpdate       Phase = "PreUpdate"
	Update          Phase = "Update"
	PostUpdate      Phase = "PostUpdate"
	PreFixedUpdate  Phase = "PreFixedUpdate"
	FixedUpdate     Phase = "FixedUpdate"
	PostFixedUpdate Phase = "PostFixedUpdate"
	PreRender       Phase = "PreRender"
	Render          Phase = "Render"
	PostRender      Phase = "PostRender"
)

// TickPhases is the per-tick phase sequence, excluding StartUp (run once
// before the main loop begins) and the fixed-step trio, which repeats
// zero or more times per tick under the accumulator (spec.md §4.4).
var TickPhases = []Phase{PreUpdate, Update, PostUpdate, PreRender, Render, PostRender}

// FixedPhases is the fixed-step trio run once per accumulator step.
var FixedPhases = []Phase{PreFixedUpdate, FixedUpdate, PostFixedUpdate}

// FixedStep is the fixed simulation step, 1/60 of a second (spec.md §4.4).
const FixedStep = 1.0 / 60.0
