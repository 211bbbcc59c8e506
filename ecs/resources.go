package ecs

import (
	"errors"
	"fmt"
)

// ErrResourceMissing is returned by MustResource-style lookups when no
// value of the requested type has been inserted (spec.md §4 "Resource").
var ErrResourceMissing = errors.New("ecs: resource missing")

// Resources is a singleton table of process-wide values keyed by their Go
// type, owned by the App alongside the World (spec.md §3 "Resource" /
// §4.4 configuration state, camera, asset caches). Unlike components,
// resources are not per-entity and are not archetype-bucketed.
type Resources struct {
	values map[ComponentType]any
}

// NewResources creates an empty resource table.
func NewResources() *Resources {
	return &Resources{values: make(map[ComponentType]any)}
}

// SetResource inserts or replaces the resource of type T.
func SetResource[T any](r *Resources, value T) {
	r.values[typeFor[T]()] = value
}

// Resource returns the resource of type T, or (zero, false) if absent.
func Resource[T any](r *Resources) (T, bool) {
	v, ok := r.values[typeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustResource returns the resource of type T, returning
// ErrResourceMissing wrapped with the type name if it hasn't been set.
func MustResource[T any](r *Resources) (T, error) {
	v, ok := Resource[T](r)
	if !ok {
		return v, fmt.Errorf("ecs: resource %s: %w", typeFor[T](), ErrResourceMissing)
	}
	return v, nil
}

// DropResource removes the resource of type T, if present. Used at plugin
// cleanup / App shutdown to release held handles deterministically
// (spec.md §5 "plugin cleanup" ordering).
func DropResource[T any](r *Resources) {
	delete(r.values, typeFor[T]())
}
