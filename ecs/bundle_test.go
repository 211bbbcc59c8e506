package ecs

import (
	"errors"
	"testing"
)

// spriteBundle groups the components always spawned together for a
// drawable sprite, mirroring spec.md §9's scene-node component set.
type spriteBundle struct {
	transform Position
	velocity  *Velocity // optional: nil means "not supplied"
}

func (b spriteBundle) Components() []any {
	out := []any{b.transform}
	if b.velocity != nil {
		out = append(out, *b.velocity)
	}
	return out
}

func (b spriteBundle) Required() []ComponentType {
	return []ComponentType{typeFor[Position]()}
}

func TestFlattenExpandsNestedBundle(t *testing.T) {
	got, err := Flatten(spriteBundle{transform: Position{X: 1}})
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Flatten() = %v, want 1 component", got)
	}
}

func TestFlattenRejectsDuplicateComponentType(t *testing.T) {
	_, err := Flatten(Position{X: 1}, Position{X: 2})
	if !errors.Is(err, ErrBundleDuplicateComponent) {
		t.Errorf("Flatten(dup) = %v, want ErrBundleDuplicateComponent", err)
	}
}

func TestFlattenBundleMissingRequiredComponent(t *testing.T) {
	_, err := Flatten(requireOnlyBundle{})
	if !errors.Is(err, ErrBundleMissingRequired) {
		t.Errorf("Flatten(missing required) = %v, want ErrBundleMissingRequired", err)
	}
}

// requireOnlyBundle declares Position required but never supplies it,
// exercising the BundleMissingRequired failure path.
type requireOnlyBundle struct{}

func (requireOnlyBundle) Components() []any         { return nil }
func (requireOnlyBundle) Required() []ComponentType { return []ComponentType{typeFor[Position]()} }

func TestSpawnAppliesFlattenedBundle(t *testing.T) {
	w := NewWorld()
	e, err := Spawn(w, spriteBundle{transform: Position{X: 7}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	pos, ok := Get[Position](w, e)
	if !ok || pos.X != 7 {
		t.Errorf("Get(Position) after Spawn = %+v ok=%v, want X=7", pos, ok)
	}
}

func TestSpawnWithNoComponentsCreatesBareEntity(t *testing.T) {
	w := NewWorld()
	e, err := Spawn(w)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if !w.Alive(e) {
		t.Errorf("Spawn() entity not alive")
	}
}
