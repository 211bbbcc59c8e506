package ecs

import "testing"

func newTestCommands() *Commands {
	return NewCommands(NewWorld(), NewResources())
}

func TestCommandsSpawnAndRemoveComponent(t *testing.T) {
	c := newTestCommands()
	e, err := c.Spawn(Position{X: 1}, Velocity{DX: 2})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if ok := RemoveComponent[Velocity](c, e); !ok {
		t.Fatalf("RemoveComponent(Velocity) = false, want true")
	}
	if Has[Velocity](c.World, e) {
		t.Errorf("Has(Velocity) after RemoveComponent = true, want false")
	}
}

func TestCommandsAddComponentsMergesIntoEntity(t *testing.T) {
	c := newTestCommands()
	e, _ := c.Spawn(Position{X: 1})
	if err := c.AddComponents(e, Velocity{DX: 5}); err != nil {
		t.Fatalf("AddComponents: %v", err)
	}
	if !Has[Position](c.World, e) || !Has[Velocity](c.World, e) {
		t.Errorf("entity missing expected components after AddComponents")
	}
}

func TestCommandsDespawnFreesEntity(t *testing.T) {
	c := newTestCommands()
	e, _ := c.Spawn(Position{})
	if err := c.Despawn(e); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if c.World.Alive(e) {
		t.Errorf("Alive() after Despawn = true, want false")
	}
}

func TestCommandsResourceRoundTrip(t *testing.T) {
	c := newTestCommands()
	SetResourceC(c, GravityConfig{G: 3})
	got, ok := GetResource[GravityConfig](c)
	if !ok || got.G != 3 {
		t.Errorf("GetResource() = %+v ok=%v, want {3} true", got, ok)
	}
}

func TestSetParentMaintainsReciprocalChildren(t *testing.T) {
	c := newTestCommands()
	parent, _ := c.Spawn(Position{})
	child, _ := c.Spawn(Position{})

	if err := c.SetParent(child, parent); err != nil {
		t.Fatalf("SetParent: %v", err)
	}

	p, ok := Get[Parent](c.World, child)
	if !ok || p.Entity != parent {
		t.Errorf("Get(Parent) on child = %+v ok=%v, want {%v} true", p, ok, parent)
	}
	kids, ok := Get[Children](c.World, parent)
	if !ok || len(kids.Entities) != 1 || kids.Entities[0] != child {
		t.Errorf("Get(Children) on parent = %+v ok=%v, want [%v] true", kids, ok, child)
	}
}

func TestSetParentReparentsAndDetachesFromPrevious(t *testing.T) {
	c := newTestCommands()
	oldParent, _ := c.Spawn(Position{})
	newParent, _ := c.Spawn(Position{})
	child, _ := c.Spawn(Position{})

	c.SetParent(child, oldParent)
	if err := c.SetParent(child, newParent); err != nil {
		t.Fatalf("SetParent (reparent): %v", err)
	}

	oldKids, _ := Get[Children](c.World, oldParent)
	if len(oldKids.Entities) != 0 {
		t.Errorf("old parent Children = %v, want empty after reparent", oldKids.Entities)
	}
	newKids, ok := Get[Children](c.World, newParent)
	if !ok || len(newKids.Entities) != 1 || newKids.Entities[0] != child {
		t.Errorf("new parent Children = %+v ok=%v, want [%v] true", newKids, ok, child)
	}
}

func TestDetachParentClearsBothSides(t *testing.T) {
	c := newTestCommands()
	parent, _ := c.Spawn(Position{})
	child, _ := c.Spawn(Position{})
	c.SetParent(child, parent)

	if err := c.DetachParent(child); err != nil {
		t.Fatalf("DetachParent: %v", err)
	}
	if Has[Parent](c.World, child) {
		t.Errorf("Has(Parent) after DetachParent = true, want false")
	}
	kids, _ := Get[Children](c.World, parent)
	if len(kids.Entities) != 0 {
		t.Errorf("parent Children after DetachParent = %v, want empty", kids.Entities)
	}
}

func TestQuery1CIteratesThroughFacade(t *testing.T) {
	c := newTestCommands()
	e, _ := c.Spawn(Position{X: 42})

	var seen Entity
	for entity, p := range Query1C[Position](c) {
		seen = entity
		if p.X != 42 {
			t.Errorf("Query1C row = %+v, want X=42", *p)
		}
	}
	if seen != e {
		t.Errorf("Query1C visited %v, want %v", seen, e)
	}
}
