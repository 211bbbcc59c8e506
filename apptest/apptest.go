// Package apptest drives a fixed number of headless ticks against an
// app.App without a real display surface, grounded on willow/testrunner.go's
// frame-sequenced step model — here adapted from "sequence input-injection
// steps across frames" to "sequence a fixed tick count for integration
// tests" (spec.md's own ambient test-tooling supplement).
package apptest

import (
	"context"

	"github.com/pdcamargo/atlas-engine/app"
	"github.com/pdcamargo/atlas-engine/diag"
)

// Runner sequences a fixed number of ticks against an App at a constant
// delta time, with no real display surface or host frame callback.
type Runner struct {
	App   *app.App
	Delta float64 // seconds per tick; defaults to 1/60 if zero
}

// New returns a Runner wrapping app with the default 1/60s tick delta.
func New(a *app.App) *Runner {
	return &Runner{App: a, Delta: 1.0 / 60.0}
}

// Start runs the App's StartUp phase and plugin readiness loop.
func (r *Runner) Start(ctx context.Context) error {
	return r.App.Start(ctx)
}

// RunTicks advances the App by n ticks of r.Delta seconds each, stopping
// early if the App begins shutting down (e.g. after a DeviceLost
// diagnostic).
func (r *Runner) RunTicks(ctx context.Context, n int) {
	delta := r.Delta
	if delta == 0 {
		delta = 1.0 / 60.0
	}
	for i := 0; i < n; i++ {
		select {
		case <-r.App.ShuttingDown():
			return
		default:
		}
		r.App.Tick(ctx, delta)
	}
}

// DiagnosticsOfKind filters the App's recorded diagnostics down to one
// kind, for assertions like "no SchedulerCycle was recorded".
func DiagnosticsOfKind(a *app.App, kind diag.Kind) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range a.Diagnostics() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
