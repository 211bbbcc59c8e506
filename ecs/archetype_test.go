package ecs

import "testing"

func TestKeyForIsOrderIndependent(t *testing.T) {
	k1 := keyFor(sortedTypes([]ComponentType{typeFor[Position](), typeFor[Velocity]()}))
	k2 := keyFor(sortedTypes([]ComponentType{typeFor[Velocity](), typeFor[Position]()}))
	if k1 != k2 {
		t.Errorf("keyFor differs by input order: %q vs %q", k1, k2)
	}
}

func TestSortedTypesDeduplicates(t *testing.T) {
	got := sortedTypes([]ComponentType{typeFor[Position](), typeFor[Position]()})
	if len(got) != 1 {
		t.Errorf("sortedTypes dedupe = %v, want 1 element", got)
	}
}

func TestArchetypeInsertFillsMissingWithZeroValue(t *testing.T) {
	types := sortedTypes([]ComponentType{typeFor[Position](), typeFor[Velocity]()})
	a := newArchetype(keyFor(types), types)

	row := a.insert(1, map[ComponentType]any{typeFor[Position](): Position{X: 5}})
	vel := a.columns[typeFor[Velocity]()].At(row).(*Velocity)
	if vel.DX != 0 || vel.DY != 0 {
		t.Errorf("Velocity not explicitly supplied = %+v, want zero value", *vel)
	}
}

func TestArchetypeRemoveSwapFixesUpLastRow(t *testing.T) {
	types := sortedTypes([]ComponentType{typeFor[Position]()})
	a := newArchetype(keyFor(types), types)
	a.insert(1, map[ComponentType]any{typeFor[Position](): Position{X: 1}})
	a.insert(2, map[ComponentType]any{typeFor[Position](): Position{X: 2}})
	a.insert(3, map[ComponentType]any{typeFor[Position](): Position{X: 3}})

	moved, didMove := a.removeSwap(0)
	if !didMove || moved != Entity(3) {
		t.Fatalf("removeSwap(0) = (%v, %v), want (3, true)", moved, didMove)
	}
	if a.rowCount() != 2 {
		t.Errorf("rowCount() = %d, want 2", a.rowCount())
	}
	p := a.columns[typeFor[Position]()].At(0).(*Position)
	if p.X != 3 {
		t.Errorf("row 0 after swap = %+v, want X=3", *p)
	}
}

func TestArchetypeRemoveSwapLastRowNoMove(t *testing.T) {
	types := sortedTypes([]ComponentType{typeFor[Position]()})
	a := newArchetype(keyFor(types), types)
	a.insert(1, map[ComponentType]any{typeFor[Position](): Position{X: 1}})

	_, didMove := a.removeSwap(0)
	if didMove {
		t.Errorf("removeSwap(sole row) didMove = true, want false")
	}
	if a.rowCount() != 0 {
		t.Errorf("rowCount() = %d, want 0", a.rowCount())
	}
}
