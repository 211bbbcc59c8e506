package ecs

import "testing"

func TestTypeOfDereferencesPointer(t *testing.T) {
	if typeOf(Position{}) != typeOf(&Position{}) {
		t.Errorf("typeOf(Position{}) != typeOf(&Position{})")
	}
}

func TestComponentStorageAppendAndAt(t *testing.T) {
	s := newComponentStorage(typeFor[Position]())
	s.Append(Position{X: 1, Y: 2})
	s.Append(Position{X: 3, Y: 4})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	p := s.At(0).(*Position)
	if p.X != 1 || p.Y != 2 {
		t.Errorf("At(0) = %+v, want {1 2}", *p)
	}
}

func TestComponentStorageSet(t *testing.T) {
	s := newComponentStorage(typeFor[Position]())
	s.Append(Position{X: 1})
	s.Set(0, Position{X: 99})
	p := s.At(0).(*Position)
	if p.X != 99 {
		t.Errorf("At(0) after Set = %+v, want X=99", *p)
	}
}

func TestComponentStorageSwapRemoveMiddle(t *testing.T) {
	s := newComponentStorage(typeFor[Position]())
	s.Append(Position{X: 0})
	s.Append(Position{X: 1})
	s.Append(Position{X: 2})

	moved := s.SwapRemove(0)
	if !moved {
		t.Fatalf("SwapRemove(0) moved = false, want true")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() after SwapRemove = %d, want 2", s.Len())
	}
	if s.At(0).(*Position).X != 2 {
		t.Errorf("At(0) after SwapRemove(0) = %+v, want X=2 (last moved in)", *s.At(0).(*Position))
	}
}

func TestComponentStorageSwapRemoveLastDoesNotMove(t *testing.T) {
	s := newComponentStorage(typeFor[Position]())
	s.Append(Position{X: 0})
	s.Append(Position{X: 1})

	moved := s.SwapRemove(1)
	if moved {
		t.Errorf("SwapRemove(last) moved = true, want false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() after SwapRemove(last) = %d, want 1", s.Len())
	}
}
