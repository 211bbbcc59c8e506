package ecs

import "reflect"

// ComponentType is the stable per-process discriminator for a component.
// Per spec.md §3, the concrete type identity is a component's sole
// discriminator; we use reflect.Type directly rather than invent a
// registry-assigned numeric id, since reflect.Type is already a stable,
// comparable, per-process tag for a given Go type.
type ComponentType = reflect.Type

// typeOf returns the ComponentType for a component value. Components may be
// passed by value or by pointer; the pointer is dereferenced so that
// SetComponents(e, &Position{...}) and SetComponents(e, Position{...})
// address the same column.
func typeOf(component any) ComponentType {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// typeFor returns the ComponentType for a generic component parameter.
func typeFor[T any]() ComponentType {
	return reflect.TypeFor[T]()
}

// componentStorage is a type-erased, append-only column with swap-remove.
// One instance backs exactly one component type within exactly one
// Archetype. Storage is reflect-backed rather than []any to avoid the
// interface-boxing cost of a dynamically-typed column, matching the
// "type-erased columns" strategy from spec.md §9.
type componentStorage struct {
	typ   ComponentType
	slice reflect.Value // reflect.Value of a []T, addressable
}

func newComponentStorage(typ ComponentType) *componentStorage {
	sliceType := reflect.SliceOf(typ)
	return &componentStorage{
		typ:   typ,
		slice: reflect.New(sliceType).Elem(),
	}
}

// Len returns the number of rows currently stored.
func (c *componentStorage) Len() int { return c.slice.Len() }

// Append adds value to the end of the column and returns its row index.
// value may be the component type T or *T.
func (c *componentStorage) Append(value any) int {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	c.slice = reflect.Append(c.slice, v)
	return c.slice.Len() - 1
}

// At returns a pointer to the component stored at row, as `any` wrapping
// *T. Callers type-assert to the concrete pointer type they expect.
func (c *componentStorage) At(row int) any {
	return c.slice.Index(row).Addr().Interface()
}

// Set overwrites the value stored at row.
func (c *componentStorage) Set(row int, value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	c.slice.Index(row).Set(v)
}

// SwapRemove removes row by moving the last element into its place and
// truncating by one. Returns true if a different row was moved into row's
// slot (the caller must then fix up that entity's row index).
func (c *componentStorage) SwapRemove(row int) bool {
	last := c.slice.Len() - 1
	moved := false
	if row != last {
		c.slice.Index(row).Set(c.slice.Index(last))
		moved = true
	}
	c.slice = c.slice.Slice(0, last)
	return moved
}
