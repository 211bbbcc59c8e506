package app

import (
	"context"
	"fmt"
	"time"

	"github.com/pdcamargo/atlas-engine/atlaslog"
	"github.com/pdcamargo/atlas-engine/diag"
	"github.com/pdcamargo/atlas-engine/ecs"
	"github.com/pdcamargo/atlas-engine/plugin"
	"github.com/pdcamargo/atlas-engine/scheduler"
	"github.com/sirupsen/logrus"
)

// App owns the World, Scheduler, Events, Resources, and plugin registry,
// and drives the main loop from a host frame callback (spec.md §2 "App",
// §5 "Shared resources"). All mutation happens on the caller's goroutine;
// App itself holds no locks.
type App struct {
	log    *logrus.Logger
	config Config

	world      *ecs.World
	events     *ecs.Events
	resources  *ecs.Resources
	scheduler  *scheduler.Scheduler
	plugins    *plugin.Registry
	diagnostic *diag.Collector

	accumulator float64
	shutdown    chan struct{}
	shutOnce    bool
}

// New constructs an App with its own World/Events/Resources/Scheduler and
// an empty plugin registry. Call Use to register plugins, then Start to
// run the StartUp phase and the readiness loop before the first tick.
func New(cfg Config) *App {
	logger := atlaslog.NewFromEnv()
	collector := diag.NewCollector()

	a := &App{
		log:        logger,
		config:     cfg,
		world:      ecs.NewWorld(),
		events:     ecs.NewEvents(),
		resources:  ecs.NewResources(),
		diagnostic: collector,
		shutdown:   make(chan struct{}),
	}
	a.scheduler = scheduler.New(atlaslog.SchedulerLogger(logger), collector)
	a.plugins = plugin.New(atlaslog.PluginLogger(logger, "registry"), collector)
	ecs.SetResource(a.resources, cfg)
	return a
}

// Use registers a plugin. See plugin.Registry.Register for dedup rules.
func (a *App) Use(p plugin.Plugin) *App {
	a.plugins.Register(p)
	return a
}

// AddSystem registers a system descriptor with the scheduler.
func (a *App) AddSystem(d scheduler.Descriptor) error {
	return a.scheduler.AddSystem(d)
}

// World returns the owned ECS world.
func (a *App) World() *ecs.World { return a.world }

// Events returns the owned event-channel registry (an *ecs.Events).
func (a *App) Events() any { return a.events }

// Resources returns the owned resource table (an *ecs.Resources).
func (a *App) Resources() any { return a.resources }

// Diagnostics returns every diagnostic recorded so far (scheduler cycles,
// plugin timeouts, device loss). Nothing in the module records
// ShaderCompileError, so shader compile failures never appear here.
func (a *App) Diagnostics() []diag.Diagnostic {
	return a.diagnostic.All()
}

// Commands returns a facade over this App's World/Resources, satisfying
// plugin.App.
func (a *App) Commands() any {
	return ecs.NewCommands(a.world, a.resources)
}

// view builds the {commands, events} pair systems receive this tick.
func (a *App) view() scheduler.View {
	return scheduler.View{
		Commands: ecs.NewCommands(a.world, a.resources),
		Events:   a.events,
	}
}

// Start invokes plugin Build for every registered plugin, runs the
// readiness fixed-point loop, builds the scheduler's ordering graphs, and
// finally runs the StartUp phase (awaiting any async startup systems).
// Call once before the first Tick.
func (a *App) Start(ctx context.Context) error {
	if err := a.plugins.Build(ctx, a); err != nil {
		return fmt.Errorf("app: plugin build: %w", err)
	}
	if err := a.plugins.RunReadinessLoop(ctx, a); err != nil {
		return fmt.Errorf("app: plugin readiness: %w", err)
	}
	a.scheduler.Build()
	a.scheduler.Run(ctx, scheduler.StartUp, a.view())
	return nil
}

// Tick advances the simulation by deltaSeconds of host time: PreUpdate,
// Update, PostUpdate, zero-or-more fixed-step iterations, PreRender,
// Render, PostRender, then rotates event buffers (spec.md §4.4 "Phases").
// deltaSeconds must be the real elapsed time since the previous Tick, as
// reported by the host's monotonic clock.
func (a *App) Tick(ctx context.Context, deltaSeconds float64) {
	v := a.view()

	a.scheduler.Run(ctx, scheduler.PreUpdate, v)
	a.scheduler.Run(ctx, scheduler.Update, v)
	a.scheduler.Run(ctx, scheduler.PostUpdate, v)

	a.runFixedStep(ctx, v, deltaSeconds)

	a.scheduler.Run(ctx, scheduler.PreRender, v)
	a.scheduler.Run(ctx, scheduler.Render, v)
	a.scheduler.Run(ctx, scheduler.PostRender, v)

	a.events.OnFrameEnd()
}

// runFixedStep advances the accumulator by deltaSeconds and runs the
// PreFixedUpdate/FixedUpdate/PostFixedUpdate trio once per whole
// FixedStep consumed. A very long deltaSeconds produces
// floor(deltaSeconds*60) iterations, each with Δt exactly 1/60s
// (spec.md §8 "Fixed-step" boundary behavior).
func (a *App) runFixedStep(ctx context.Context, v scheduler.View, deltaSeconds float64) {
	a.accumulator += deltaSeconds
	for a.accumulator >= scheduler.FixedStep {
		a.scheduler.Run(ctx, scheduler.PreFixedUpdate, v)
		a.scheduler.Run(ctx, scheduler.FixedUpdate, v)
		a.scheduler.Run(ctx, scheduler.PostFixedUpdate, v)
		a.accumulator -= scheduler.FixedStep
	}
}

// RecordDeviceLost signals that the GPU device disappeared: every cache
// and buffer allocated through it is now invalid, and the App begins
// shutdown (spec.md §7 "DeviceLost").
func (a *App) RecordDeviceLost(reason string) {
	a.diagnostic.Record(diag.Diagnostic{
		Kind:    diag.DeviceLost,
		Message: reason,
		At:      time.Now(),
	})
	a.log.WithField("reason", reason).Error("GPU device lost; shutting down")
	a.triggerShutdown()
}

func (a *App) triggerShutdown() {
	if a.shutOnce {
		return
	}
	a.shutOnce = true
	close(a.shutdown)
}

// ShuttingDown returns a channel that closes once the App has begun
// shutdown (e.g. after RecordDeviceLost), for host loops to select on.
func (a *App) ShuttingDown() <-chan struct{} {
	return a.shutdown
}

// Shutdown runs plugin Cleanup hooks in registration order
// (spec.md §4.5 step 3) and triggers the shutdown signal if not already
// triggered.
func (a *App) Shutdown(ctx context.Context) {
	a.plugins.Cleanup(ctx, a)
	a.triggerShutdown()
}
