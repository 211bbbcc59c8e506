package tilemap

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/render"
)

func TestInstanceDataPacksWorldPositionAndSize(t *testing.T) {
	sb := &SubBatch{TilesetID: 0, tiles: []tileInstance{
		{col: 2, row: 3, tile: &Tile{GID: 1}},
	}}

	data := sb.InstanceData(0, 0, 16, 16, render.Identity)
	if len(data) != tileInstanceBytes {
		t.Fatalf("InstanceData len = %d, want %d", len(data), tileInstanceBytes)
	}

	wantWorldX, wantWorldY := 32.0, 48.0 // col*tileW, row*tileH
	if got := readF32(data, 0); got != float32(wantWorldX) {
		t.Errorf("worldX = %v, want %v", got, wantWorldX)
	}
	if got := readF32(data, 4); got != float32(wantWorldY) {
		t.Errorf("worldY = %v, want %v", got, wantWorldY)
	}
	if got := readF32(data, 8); got != 16 {
		t.Errorf("tileW = %v, want 16", got)
	}
	if got := readF32(data, 12); got != 16 {
		t.Errorf("tileH = %v, want 16", got)
	}
	if got := readF32(data, 32); got != 1 {
		t.Errorf("tintR = %v, want 1 (untinted default)", got)
	}
	if got := readF32(data, 44); got != 1 {
		t.Errorf("tintA = %v, want 1 (opaque default)", got)
	}
}

func TestInstanceDataRespectsChunkOriginAndWorldTransform(t *testing.T) {
	sb := &SubBatch{TilesetID: 0, tiles: []tileInstance{
		{col: 0, row: 0, tile: &Tile{GID: 1}},
	}}

	// Chunk (1,1) with ChunkSize tiles per side, plus a world translation.
	data := sb.InstanceData(ChunkSize, ChunkSize, 16, 16, render.Affine{1, 0, 0, 1, 100, 200})
	wantX := float32(ChunkSize)*16 + 100
	wantY := float32(ChunkSize)*16 + 200
	if got := readF32(data, 0); got != wantX {
		t.Errorf("worldX = %v, want %v", got, wantX)
	}
	if got := readF32(data, 4); got != wantY {
		t.Errorf("worldY = %v, want %v", got, wantY)
	}
}

func TestExpandQuadsProducesFourVerticesAndSixIndicesPerTile(t *testing.T) {
	sb := &SubBatch{TilesetID: 0, tiles: []tileInstance{
		{col: 0, row: 0, tile: &Tile{GID: 1}},
		{col: 1, row: 0, tile: &Tile{GID: 2}},
	}}
	data := sb.InstanceData(0, 0, 16, 16, render.Identity)

	verts, indices := expandQuads(data, nil, nil)
	if len(verts) != 2*4 {
		t.Errorf("len(verts) = %d, want 8", len(verts))
	}
	if len(indices) != 2*6 {
		t.Errorf("len(indices) = %d, want 12", len(indices))
	}
}

func TestDrawSubmitsOneDrawCallPerTilesetInVisibleChunks(t *testing.T) {
	m := New(16, 16, 4*ChunkSize, 4*ChunkSize)
	m.SetTile(0, 0, &Tile{GID: 1, TilesetID: 0})
	m.SetTile(1, 0, &Tile{GID: 2, TilesetID: 1})
	m.SetTile(2, 0, &Tile{GID: 3, TilesetID: 0})

	m.Render(render.AABB{MinX: -1e9, MinY: -1e9, MaxX: 1e9, MaxY: 1e9})

	target := ebiten.NewImage(64, 64)
	renderedTiles, drawCalls := m.Draw(target)

	if drawCalls != 2 {
		t.Errorf("drawCalls = %d, want 2 (one per distinct tileset)", drawCalls)
	}
	if renderedTiles != 3 {
		t.Errorf("renderedTiles = %d, want 3", renderedTiles)
	}
}
