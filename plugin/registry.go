package plugin

import (
	"context"
	"time"

	"github.com/pdcamargo/atlas-engine/diag"
	"github.com/sirupsen/logrus"
)

// readinessCap bounds the fixed-point readiness loop (spec.md §4.5).
const readinessCap = 30 * time.Second

// entry wraps one registered plugin with its finished state.
type entry struct {
	plugin   Plugin
	finished bool
}

// Registry owns plugin registration, the build/ready/finish/cleanup
// lifecycle, and dedup-by-identity (spec.md §4.5).
type Registry struct {
	log           *logrus.Entry
	sink          diag.Sink
	readinessCap  time.Duration
	entries       []*entry
	byKey         map[string]bool
}

// New creates an empty Registry using the spec's 30-second readiness cap.
func New(log *logrus.Entry, sink diag.Sink) *Registry {
	return &Registry{log: log, sink: sink, readinessCap: readinessCap, byKey: make(map[string]bool)}
}

// NewWithCap creates a Registry with a non-default readiness cap, for
// tests that want to exercise the PluginNotReady path without waiting 30s.
func NewWithCap(log *logrus.Entry, sink diag.Sink, cap time.Duration) *Registry {
	return &Registry{log: log, sink: sink, readinessCap: cap, byKey: make(map[string]bool)}
}

// Register adds p, skipping it as a no-op if an equal-identity Unique
// plugin is already registered (spec.md §4.5 "deduplicated by identity").
// Non-unique plugins always register, even if one of the same type/name
// already exists.
func (r *Registry) Register(p Plugin) {
	if p.Unique() {
		key := typeIdentity(p)
		if r.byKey[key] {
			return
		}
		r.byKey[key] = true
	}
	r.entries = append(r.entries, &entry{plugin: p})
}

// Build invokes Build on every registered plugin, in registration order.
// Build may be asynchronous internally, but per spec.md §4.5 step 1 its
// completion is not awaited before the next plugin's Build starts — so
// Build here is itself synchronous from the Registry's point of view;
// a plugin wanting async work launches its own goroutine and becomes
// ready only once that work lands.
func (r *Registry) Build(ctx context.Context, app App) error {
	for _, e := range r.entries {
		if err := e.plugin.Build(ctx, app); err != nil {
			return err
		}
	}
	return nil
}

// RunReadinessLoop repeatedly selects plugins whose dependencies have all
// finished and whose Ready returns true, invoking Finish on them, until
// every plugin is finished or readinessCap elapses — at which point
// remaining plugins are skipped with a PluginNotReady diagnostic
// (spec.md §4.5 step 2).
func (r *Registry) RunReadinessLoop(ctx context.Context, app App) error {
	deadline := time.Now().Add(r.readinessCap)

	for {
		progressed := false
		allFinished := true

		for _, e := range r.entries {
			if e.finished {
				continue
			}
			allFinished = false

			if !r.dependenciesFinished(e) {
				continue
			}
			if !e.plugin.Ready(app) {
				continue
			}
			if err := e.plugin.Finish(ctx, app); err != nil {
				return err
			}
			e.finished = true
			progressed = true
		}

		if allFinished {
			return nil
		}
		if time.Now().After(deadline) {
			r.skipUnfinished(app)
			return nil
		}
		if !progressed {
			// Nothing became ready this pass; yield briefly rather than
			// spinning the CPU while waiting on external readiness.
			time.Sleep(time.Millisecond)
		}
	}
}

func (r *Registry) dependenciesFinished(e *entry) bool {
	if len(e.plugin.DependsOn()) == 0 {
		return true
	}
	finished := make(map[string]bool, len(r.entries))
	for _, other := range r.entries {
		if other.finished {
			finished[other.plugin.Name()] = true
		}
	}
	for _, dep := range e.plugin.DependsOn() {
		if !finished[dep] {
			return false
		}
	}
	return true
}

func (r *Registry) skipUnfinished(app App) {
	for _, e := range r.entries {
		if e.finished {
			continue
		}
		if r.log != nil {
			r.log.WithField("plugin", e.plugin.Name()).Warn("plugin did not become ready within the readiness cap; skipping")
		}
		if r.sink != nil {
			r.sink.Record(diag.Diagnostic{
				Kind:    diag.PluginNotReady,
				Subject: e.plugin.Name(),
				Message: "plugin never became ready within the " + r.readinessCap.String() + " readiness cap",
				At:      time.Now(),
			})
		}
	}
}

// Cleanup runs Cleanup on every registered plugin once, in registration
// order (spec.md §4.5 step 3).
func (r *Registry) Cleanup(ctx context.Context, app App) {
	for _, e := range r.entries {
		if err := e.plugin.Cleanup(ctx, app); err != nil && r.log != nil {
			r.log.WithField("plugin", e.plugin.Name()).WithError(err).Error("plugin cleanup failed")
		}
	}
}
