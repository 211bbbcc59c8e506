package tilemap

import "testing"

func TestUVOrderForNoFlagsIsIdentity(t *testing.T) {
	order := UVOrderFor(42)
	want := [4]int{0, 1, 2, 3}
	if order != want {
		t.Errorf("UVOrderFor(42) = %v, want %v", order, want)
	}
}

func TestUVOrderForHorizontalFlip(t *testing.T) {
	order := UVOrderFor(FlipH | 7)
	want := [4]int{1, 0, 3, 2}
	if order != want {
		t.Errorf("UVOrderFor(H|7) = %v, want %v", order, want)
	}
}

func TestBaseGIDStripsFlagBits(t *testing.T) {
	gid := FlipH | FlipV | 99
	if got := BaseGID(gid); got != 99 {
		t.Errorf("BaseGID() = %d, want 99", got)
	}
}

func TestTileAdvanceCyclesFramesAndReportsChange(t *testing.T) {
	tile := &Tile{Frames: []AnimFrame{{GID: 1, Duration: 1}, {GID: 2, Duration: 1}}}
	if tile.currentGID() != 1 {
		t.Fatalf("currentGID() = %d, want 1 initially", tile.currentGID())
	}
	changed := tile.advance(1.0)
	if !changed {
		t.Error("advance(1.0) should report a frame change after exactly one full duration")
	}
	if tile.currentGID() != 2 {
		t.Errorf("currentGID() = %d, want 2 after advancing", tile.currentGID())
	}
}

func TestTileAdvanceNoChangeBelowFrameDuration(t *testing.T) {
	tile := &Tile{Frames: []AnimFrame{{GID: 1, Duration: 1}, {GID: 2, Duration: 1}}}
	if tile.advance(0.5) {
		t.Error("advance(0.5) should not change frame before the full duration elapses")
	}
}

func TestNonAnimatedTileNeverAdvances(t *testing.T) {
	tile := &Tile{GID: 5}
	if tile.advance(100) {
		t.Error("a tile with no Frames should never report a frame change")
	}
	if tile.currentGID() != 5 {
		t.Errorf("currentGID() = %d, want 5", tile.currentGID())
	}
}
