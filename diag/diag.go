// Package diag defines the small set of non-recoverable-but-survivable
// conditions the engine surfaces instead of panicking or returning an
// error synchronously from deep inside a frame: scheduler cycles, plugins
// that never become ready, shader compile failures, and device loss
// (spec.md §8 "Failure Modes & Diagnostics").
package diag

import "time"

// Kind names one of the engine's fixed diagnostic categories.
type Kind string

const (
	// SchedulerCycle: ordering constraints formed a cycle; the scheduler
	// fell back to insertion order for that phase.
	SchedulerCycle Kind = "SchedulerCycle"
	// PluginNotReady: a plugin never became ready within the readiness cap
	// and was skipped.
	PluginNotReady Kind = "PluginNotReady"
	// ShaderCompileError: a shader module failed to compile; pipeline
	// creation using it fails until resolved.
	ShaderCompileError Kind = "ShaderCompileError"
	// DeviceLost: the GPU device disappeared; all caches/buffers are
	// invalidated and the App begins shutdown.
	DeviceLost Kind = "DeviceLost"
)

// Diagnostic is one recorded occurrence of a Kind, with enough context to
// explain it in a log line or a test assertion.
type Diagnostic struct {
	Kind    Kind
	Subject string // system id, plugin name, shader name, etc.
	Message string
	At      time.Time
}

// Sink collects Diagnostics. The App records into a Collector, the
// canonical Sink; tests can substitute a slice-backed Sink to assert on
// emitted diagnostics.
type Sink interface {
	Record(d Diagnostic)
}

// Collector is a simple in-memory Sink, safe for the engine's
// single-threaded cooperative scheduling model (spec.md §5).
type Collector struct {
	items []Diagnostic
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends d to the collector.
func (c *Collector) Record(d Diagnostic) {
	c.items = append(c.items, d)
}

// All returns every diagnostic recorded so far, oldest first.
func (c *Collector) All() []Diagnostic {
	return c.items
}

// Last returns the most recently recorded diagnostic of kind, if any.
func (c *Collector) Last(kind Kind) (Diagnostic, bool) {
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].Kind == kind {
			return c.items[i], true
		}
	}
	return Diagnostic{}, false
}
