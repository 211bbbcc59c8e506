package ecs

// Commands is a thin facade over a World and its Resources, scoped to one
// system invocation. Mutations are applied immediately — there is no
// deferred queue (spec.md §4.2). Systems take a *Commands rather than a
// *World directly so the scheduler can later intercept or trace mutation
// without changing every system's signature.
type Commands struct {
	World     *World
	Resources *Resources
}

// NewCommands builds a Commands facade over the given World/Resources pair.
func NewCommands(w *World, r *Resources) *Commands {
	return &Commands{World: w, Resources: r}
}

// Spawn creates a new entity and applies components (which may mix raw
// component values and Bundle values) in one archetype move.
func (c *Commands) Spawn(components ...any) (Entity, error) {
	return Spawn(c.World, components...)
}

// AddComponents merges components into e's existing archetype, replacing
// any of e's existing components whose type matches one of components.
func (c *Commands) AddComponents(e Entity, components ...any) error {
	return c.World.SetComponents(e, components...)
}

// Despawn frees e and its components.
func (c *Commands) Despawn(e Entity) error {
	return c.World.Free(e)
}

// RemoveComponent removes component type T from e via Commands, returning
// false if e had none (spec.md §4.2 "add/remove component").
func RemoveComponent[T any](c *Commands, e Entity) bool {
	return Remove[T](c.World, e)
}

// SetResourceC inserts or replaces the process-wide resource of type T.
func SetResourceC[T any](c *Commands, value T) {
	SetResource(c.Resources, value)
}

// GetResource returns the resource of type T, or (zero, false) if absent.
func GetResource[T any](c *Commands) (T, bool) {
	return Resource[T](c.Resources)
}

// Parent names the entity that owns e in the scene/ownership graph.
type Parent struct {
	Entity Entity
}

// Children lists the entities owned by e, in attach order.
type Children struct {
	Entities []Entity
}

// SetParent attaches child to parent, maintaining Parent(child) and
// Children(parent) reciprocally (spec.md §9 "cyclic parent/child graphs").
// If child already had a parent, it is detached from that parent's
// Children list first.
func (c *Commands) SetParent(child, parent Entity) error {
	if prev, ok := Get[Parent](c.World, child); ok {
		c.detachChild(prev.Entity, child)
	}

	if err := c.World.SetComponents(child, Parent{Entity: parent}); err != nil {
		return err
	}

	if kids, ok := Get[Children](c.World, parent); ok {
		kids.Entities = append(kids.Entities, child)
		return nil
	}
	return c.World.SetComponents(parent, Children{Entities: []Entity{child}})
}

// DetachParent removes child's Parent component and its entry in the
// former parent's Children list, if any.
func (c *Commands) DetachParent(child Entity) error {
	prev, ok := Get[Parent](c.World, child)
	if !ok {
		return nil
	}
	c.detachChild(prev.Entity, child)
	Remove[Parent](c.World, child)
	return nil
}

func (c *Commands) detachChild(parent, child Entity) {
	kids, ok := Get[Children](c.World, parent)
	if !ok {
		return
	}
	for i, e := range kids.Entities {
		if e == child {
			kids.Entities = append(kids.Entities[:i], kids.Entities[i+1:]...)
			break
		}
	}
}

// Query1C is a Commands-scoped convenience wrapper over the package-level
// Query1, so systems that only hold a *Commands can still build queries.
func Query1C[T1 any](c *Commands, opts ...QueryOption) func(yield func(Entity, *T1) bool) {
	return Query1[T1](c.World, opts...)
}

// Query2C is the two-component analogue of Query1C.
func Query2C[T1, T2 any](c *Commands, opts ...QueryOption) func(yield func(Entity, *T1, *T2) bool) {
	return Query2[T1, T2](c.World, opts...)
}

// Query3C is the three-component analogue of Query1C.
func Query3C[T1, T2, T3 any](c *Commands, opts ...QueryOption) func(yield func(Entity, *T1, *T2, *T3) bool) {
	return Query3[T1, T2, T3](c.World, opts...)
}

// Query4C is the four-component analogue of Query1C.
func Query4C[T1, T2, T3, T4 any](c *Commands, opts ...QueryOption) func(yield func(Entity, *T1, *T2, *T3, *T4) bool) {
	return Query4[T1, T2, T3, T4](c.World, opts...)
}
