package ecs

import (
	"errors"
	"fmt"
)

// ErrBundleDuplicateComponent is returned when a Bundle (after flattening
// any nested bundles) would supply the same component type twice to one
// entity (spec.md §4.2 "Bundle").
var ErrBundleDuplicateComponent = errors.New("ecs: bundle supplies a component type twice")

// ErrBundleMissingRequired is returned when a Bundle's Required types are
// not all present among its (flattened) Components (spec.md §4.2).
var ErrBundleMissingRequired = errors.New("ecs: bundle missing required component")

// Bundle groups a fixed, compile-time-known set of components that are
// always spawned together, e.g. a "Sprite" bundle bundling Transform,
// Sprite, and Visibility. Components may themselves return Bundle values;
// Flatten expands these recursively. Required names the component types
// that must be present in the flattened shape for the bundle to be valid
// (spec.md §4.2).
type Bundle interface {
	Components() []any
	Required() []ComponentType
}

// Flatten expands a component list into its leaf (non-Bundle) components,
// recursively flattening any nested Bundle values, rejects duplicate
// component types, and verifies every encountered Bundle's Required types
// ended up present in the final flattened shape.
func Flatten(components ...any) ([]any, error) {
	out := make([]any, 0, len(components))
	seen := make(map[ComponentType]bool, len(components))
	var required []ComponentType
	if err := flattenInto(&out, seen, &required, components); err != nil {
		return nil, err
	}
	for _, t := range required {
		if !seen[t] {
			return nil, fmt.Errorf("ecs: component %s: %w", t, ErrBundleMissingRequired)
		}
	}
	return out, nil
}

func flattenInto(out *[]any, seen map[ComponentType]bool, required *[]ComponentType, components []any) error {
	for _, c := range components {
		if b, ok := c.(Bundle); ok {
			*required = append(*required, b.Required()...)
			if err := flattenInto(out, seen, required, b.Components()); err != nil {
				return err
			}
			continue
		}
		t := typeOf(c)
		if seen[t] {
			return fmt.Errorf("ecs: component %s: %w", t, ErrBundleDuplicateComponent)
		}
		seen[t] = true
		*out = append(*out, c)
	}
	return nil
}

// Spawn creates a new entity and applies the flattened component list from
// components (which may mix raw components and Bundle values) in one move
// (spec.md §4.2 "spawn with a Bundle").
func Spawn(w *World, components ...any) (Entity, error) {
	flat, err := Flatten(components...)
	if err != nil {
		return 0, err
	}
	e := w.CreateEntity()
	if len(flat) == 0 {
		return e, nil
	}
	if err := w.SetComponents(e, flat...); err != nil {
		return 0, err
	}
	return e, nil
}
