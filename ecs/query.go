package ecs

// queryFilter holds the "without" exclusion set shared by every arity of
// Query. Archetypes containing any excluded type are skipped entirely
// (spec.md §4.1 ".without(U1,...,Um)").
type queryFilter struct {
	without []ComponentType
}

// QueryOption configures a Query call.
type QueryOption func(*queryFilter)

// Without excludes archetypes that contain any of the given component
// types from the query's results.
func Without(types ...ComponentType) QueryOption {
	return func(f *queryFilter) {
		f.without = append(f.without, types...)
	}
}

func buildFilter(opts []QueryOption) queryFilter {
	var f queryFilter
	for _, o := range opts {
		o(&f)
	}
	return f
}

func (f *queryFilter) excludes(a *archetype) bool {
	for _, t := range f.without {
		if a.has(t) {
			return true
		}
	}
	return false
}

// matchingArchetypes returns every archetype containing all of required
// and none of the filter's excluded types. Iteration order across
// archetypes is unspecified (spec.md §4.1).
func (w *World) matchingArchetypes(required []ComponentType, f *queryFilter) []*archetype {
	var out []*archetype
	for _, a := range w.archetypes {
		if f.excludes(a) {
			continue
		}
		ok := true
		for _, t := range required {
			if !a.has(t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, a)
		}
	}
	return out
}

// Query1 iterates every entity whose archetype contains T1, archetype-batched
// for cache locality (spec.md §4.1). The returned function is a Go 1.23
// range-over-func iterator: `for e, c := range Query1[Position](w) { ... }`.
func Query1[T1 any](w *World, opts ...QueryOption) func(yield func(Entity, *T1) bool) {
	f := buildFilter(opts)
	t1 := typeFor[T1]()
	return func(yield func(Entity, *T1) bool) {
		for _, a := range w.matchingArchetypes([]ComponentType{t1}, &f) {
			col1 := a.columns[t1]
			for row, e := range a.entities {
				if !yield(e, col1.At(row).(*T1)) {
					return
				}
			}
		}
	}
}

// Query2 iterates every entity whose archetype contains both T1 and T2.
func Query2[T1, T2 any](w *World, opts ...QueryOption) func(yield func(Entity, *T1, *T2) bool) {
	f := buildFilter(opts)
	t1, t2 := typeFor[T1](), typeFor[T2]()
	return func(yield func(Entity, *T1, *T2) bool) {
		for _, a := range w.matchingArchetypes([]ComponentType{t1, t2}, &f) {
			col1, col2 := a.columns[t1], a.columns[t2]
			for row, e := range a.entities {
				if !yield(e, col1.At(row).(*T1), col2.At(row).(*T2)) {
					return
				}
			}
		}
	}
}

// Query3 iterates every entity whose archetype contains T1, T2, and T3.
func Query3[T1, T2, T3 any](w *World, opts ...QueryOption) func(yield func(Entity, *T1, *T2, *T3) bool) {
	f := buildFilter(opts)
	t1, t2, t3 := typeFor[T1](), typeFor[T2](), typeFor[T3]()
	return func(yield func(Entity, *T1, *T2, *T3) bool) {
		for _, a := range w.matchingArchetypes([]ComponentType{t1, t2, t3}, &f) {
			col1, col2, col3 := a.columns[t1], a.columns[t2], a.columns[t3]
			for row, e := range a.entities {
				if !yield(e, col1.At(row).(*T1), col2.At(row).(*T2), col3.At(row).(*T3)) {
					return
				}
			}
		}
	}
}

// Query4 iterates every entity whose archetype contains T1, T2, T3, and T4.
func Query4[T1, T2, T3, T4 any](w *World, opts ...QueryOption) func(yield func(Entity, *T1, *T2, *T3, *T4) bool) {
	f := buildFilter(opts)
	t1, t2, t3, t4 := typeFor[T1](), typeFor[T2](), typeFor[T3](), typeFor[T4]()
	return func(yield func(Entity, *T1, *T2, *T3, *T4) bool) {
		for _, a := range w.matchingArchetypes([]ComponentType{t1, t2, t3, t4}, &f) {
			col1, col2, col3, col4 := a.columns[t1], a.columns[t2], a.columns[t3], a.columns[t4]
			for row, e := range a.entities {
				if !yield(e, col1.At(row).(*T1), col2.At(row).(*T2), col3.At(row).(*T3), col4.At(row).(*T4)) {
					return
				}
			}
		}
	}
}

// Count returns the number of entities matching required/without without
// allocating per-row results — useful for run-gates and tests.
func (w *World) Count(required []ComponentType, opts ...QueryOption) int {
	f := buildFilter(opts)
	n := 0
	for _, a := range w.matchingArchetypes(required, &f) {
		n += a.rowCount()
	}
	return n
}
