package ecs

import (
	"reflect"
	"sort"
	"strings"
)

// Entity is an opaque, monotonically increasing identifier. Entities are
// never reused within a World's lifetime (spec.md §3).
type Entity uint64

// archetypeKey canonically identifies an archetype by the sorted multiset of
// its component-type tags (spec.md §3 "Archetype"). Equality of the key
// string is structural equality of the type set.
type archetypeKey string

// keyFor builds the canonical key for a sorted slice of component types.
// types must already be de-duplicated; duplicate types within one entity
// are a caller bug, not representable in an archetype.
func keyFor(types []ComponentType) archetypeKey {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.PkgPath() + "." + t.Name()
	}
	sort.Strings(names)
	return archetypeKey(strings.Join(names, "|"))
}

// sortedTypes returns a new, sorted, de-duplicated slice of the given types.
func sortedTypes(types []ComponentType) []ComponentType {
	seen := make(map[ComponentType]bool, len(types))
	out := make([]ComponentType, 0, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PkgPath()+"."+out[i].Name() < out[j].PkgPath()+"."+out[j].Name()
	})
	return out
}

// archetype owns one column per component type plus a parallel vector of
// entity ids (spec.md §3). All columns have length equal to the row count.
type archetype struct {
	key      archetypeKey
	types    []ComponentType
	columns  map[ComponentType]*componentStorage
	entities []Entity
}

func newArchetype(key archetypeKey, types []ComponentType) *archetype {
	a := &archetype{
		key:     key,
		types:   types,
		columns: make(map[ComponentType]*componentStorage, len(types)),
	}
	for _, t := range types {
		a.columns[t] = newComponentStorage(t)
	}
	return a
}

func (a *archetype) has(t ComponentType) bool {
	_, ok := a.columns[t]
	return ok
}

// insert appends entity e with the given component values (keyed by type,
// values may be missing for types carried over from a prior archetype via
// copyFrom) and returns its row.
func (a *archetype) insert(e Entity, values map[ComponentType]any) int {
	row := len(a.entities)
	for _, t := range a.types {
		col := a.columns[t]
		if v, ok := values[t]; ok {
			col.Append(v)
		} else {
			col.Append(reflect.Zero(t).Interface())
		}
	}
	a.entities = append(a.entities, e)
	return row
}

// removeSwap removes the row via swap-with-last (spec.md §3). It returns
// the entity that was moved into `row` (if any) and whether a move
// occurred, so the World can fix up that entity's row index.
func (a *archetype) removeSwap(row int) (moved Entity, didMove bool) {
	last := len(a.entities) - 1
	for _, col := range a.columns {
		col.SwapRemove(row)
	}
	if row != last {
		a.entities[row] = a.entities[last]
		moved = a.entities[row]
		didMove = true
	}
	a.entities = a.entities[:last]
	return moved, didMove
}

func (a *archetype) rowCount() int { return len(a.entities) }
