package scheduler

import (
	"context"
	"fmt"

	"github.com/pdcamargo/atlas-engine/diag"
	"github.com/sirupsen/logrus"
)

// Scheduler owns every registered system, the set/label constraint tables,
// and the per-phase ordering graphs derived from them (spec.md §4.4).
// Registration is expected to complete (via plugin build hooks) before the
// first Build call; the engine does not support adding systems mid-run.
type Scheduler struct {
	log       *logrus.Entry
	sink      diag.Sink
	nextOrder int

	systems        map[Phase][]*Descriptor
	setConstraints []SetConstraint
	setRunIfs      map[Set][]RunIf

	sorted map[Phase][]*Descriptor // populated by Build
}

// New creates an empty Scheduler. log scopes every dispatch/diagnostic log
// line; sink receives SchedulerCycle diagnostics.
func New(log *logrus.Entry, sink diag.Sink) *Scheduler {
	return &Scheduler{
		log:       log,
		sink:      sink,
		systems:   make(map[Phase][]*Descriptor),
		setRunIfs: make(map[Set][]RunIf),
		sorted:    make(map[Phase][]*Descriptor),
	}
}

// AddSystem registers d in its Phase. Exactly one of d.Fn/d.Async must be
// set.
func (s *Scheduler) AddSystem(d Descriptor) error {
	if (d.Fn == nil) == (d.Async == nil) {
		return fmt.Errorf("scheduler: system %q must set exactly one of Fn/Async", d.ID)
	}
	d.order = s.nextOrder
	s.nextOrder++
	cp := d
	s.systems[d.Phase] = append(s.systems[d.Phase], &cp)
	return nil
}

// AddSetConstraint registers a per-set ordering rule (spec.md §4.4 step 3).
func (s *Scheduler) AddSetConstraint(sc SetConstraint) {
	s.setConstraints = append(s.setConstraints, sc)
}

// AddSetRunIf attaches a run-gate to every member of set.
func (s *Scheduler) AddSetRunIf(set Set, runIf RunIf) {
	s.setRunIfs[set] = append(s.setRunIfs[set], runIf)
}

// Build computes and caches the topologically sorted execution order for
// every phase that has registered systems. Call once after all plugins
// have finished their build hooks.
func (s *Scheduler) Build() {
	for phase, systems := range s.systems {
		if len(systems) == 0 {
			continue
		}
		edges := buildGraph(systems, s.setConstraints)
		s.sorted[phase] = topoSort(systems, edges, phase, s.sink)
	}
}

// Run executes every system registered in phase, in the Build-computed
// order, evaluating each system's run-gate first and awaiting async
// systems before the next one starts (spec.md §4.4 "Dispatch").
func (s *Scheduler) Run(ctx context.Context, phase Phase, v View) {
	for _, d := range s.sorted[phase] {
		if !s.gatePasses(d, v) {
			continue
		}
		s.invoke(ctx, d, v)
	}
}

func (s *Scheduler) gatePasses(d *Descriptor, v View) bool {
	for _, set := range d.Sets {
		for _, runIf := range s.setRunIfs[set] {
			if !runIf(v) {
				return false
			}
		}
	}
	for _, runIf := range d.RunIf {
		if !runIf(v) {
			return false
		}
	}
	return true
}

func (s *Scheduler) invoke(ctx context.Context, d *Descriptor, v View) {
	var err error
	if d.Fn != nil {
		err = d.Fn(ctx, v)
	} else {
		err = <-d.Async(ctx, v)
	}
	if err != nil && s.log != nil {
		s.log.WithFields(logrus.Fields{
			"system": d.ID,
			"phase":  d.Phase,
		}).WithError(err).Error("system invocation failed")
	}
}
