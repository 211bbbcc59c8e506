// Package plugin implements the plugin lifecycle: build/ready/finish/cleanup
// hooks, dependency-gated readiness, and registration-order cleanup
// (spec.md §4.5).
package plugin

import (
	"context"
	"reflect"
)

// Plugin is the trait/capability set every plugin implements. Name
// identifies the plugin for dependency declarations and diagnostics;
// Unique controls dedup behavior (spec.md §4.5 "deduplicated by identity").
type Plugin interface {
	Name() string
	DependsOn() []string
	Unique() bool

	Build(ctx context.Context, app App) error
	Ready(app App) bool
	Finish(ctx context.Context, app App) error
	Cleanup(ctx context.Context, app App) error
}

// App is the subset of the owning application a Plugin's hooks may touch.
// Defined here (rather than importing the app package) to avoid an import
// cycle: app imports plugin, not the other way around.
type App interface {
	Commands() any
	Events() any
	Resources() any
}

// Base provides no-op implementations of every Plugin hook so concrete
// plugins only override what they need, matching the teacher's habit of
// giving optional hooks zero-value defaults (spec.md §9 "plugin
// polymorphism").
type Base struct {
	PluginName   string
	Dependencies []string
	IsUnique     bool
}

func (b Base) Name() string            { return b.PluginName }
func (b Base) DependsOn() []string     { return b.Dependencies }
func (b Base) Unique() bool            { return b.IsUnique }
func (Base) Build(context.Context, App) error   { return nil }
func (Base) Ready(App) bool                     { return true }
func (Base) Finish(context.Context, App) error  { return nil }
func (Base) Cleanup(context.Context, App) error { return nil }

// typeIdentity is the dedup key used for Unique plugins: two registrations
// of the same concrete type collide and the second is a no-op (spec.md
// §4.5). Non-unique plugins never use this key for dedup purposes — see
// Registry.Register.
func typeIdentity(p Plugin) string {
	return reflect.TypeOf(p).String()
}
