package tilemap

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/render"
)

// Tilemap partitions a width×height grid of tiles into fixed ChunkSize
// chunks, rebuilding all of them on a single dirty flag (spec.md §4.8
// "chunk rebuild policy"). It implements render.TilemapPayload so it can
// be attached to a render.Node of type NodeTilemap.
type Tilemap struct {
	TileWidth, TileHeight float64
	Width, Height         int // in tiles

	chunks         map[[2]int]*Chunk
	dirty          bool
	worldTransform render.Affine
	lastVisible    []*Chunk

	vertScratch  []ebiten.Vertex
	indexScratch []uint32
}

// New returns an empty tilemap of the given tile size; width/height are in
// tiles (not chunks).
func New(tileWidth, tileHeight float64, width, height int) *Tilemap {
	return &Tilemap{
		TileWidth:      tileWidth,
		TileHeight:     tileHeight,
		Width:          width,
		Height:         height,
		chunks:         make(map[[2]int]*Chunk),
		dirty:          true,
		worldTransform: render.Identity,
	}
}

func chunkCoordFor(col, row int) (cx, cy, localCol, localRow int) {
	cx = floorDiv(col, ChunkSize)
	cy = floorDiv(row, ChunkSize)
	localCol = col - cx*ChunkSize
	localRow = row - cy*ChunkSize
	return
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// SetTile places a tile at (col, row), marking the whole tilemap dirty
// (spec.md §4.8 "Per-tile mutation sets the flag").
func (m *Tilemap) SetTile(col, row int, t *Tile) {
	cx, cy, localCol, localRow := chunkCoordFor(col, row)
	key := [2]int{cx, cy}
	chunk, ok := m.chunks[key]
	if !ok {
		chunk = newChunk(cx, cy)
		m.chunks[key] = chunk
	}
	chunk.SetTile(localCol, localRow, t)
	m.dirty = true
}

// MarkDirty forces a full chunk/sub-batch rebuild on the next Render call.
func (m *Tilemap) MarkDirty() { m.dirty = true }

// AdvanceAnimations steps every animated tile by dt seconds and marks the
// tilemap dirty if any tile's visible frame changed (spec.md §4.8
// "animated tiles update system... marks the containing tilemap dirty on
// frame change").
func (m *Tilemap) AdvanceAnimations(dt float64) {
	changed := false
	for _, chunk := range m.chunks {
		for _, t := range chunk.tiles {
			if t.advance(dt) {
				changed = true
			}
		}
	}
	if changed {
		m.dirty = true
	}
}

// OnWorldTransformChanged implements render.TilemapPayload: it stores the
// new world transform and marks the map dirty so chunk AABBs recompute
// next render (spec.md §4.8 "AABB recomputed whenever the tilemap's world
// transform changes").
func (m *Tilemap) OnWorldTransformChanged(worldTransform render.Affine) {
	m.worldTransform = worldTransform
	m.dirty = true
}

// rebuildAll rebuilds every chunk's sub-batches and AABB, then clears the
// dirty flag (spec.md §4.8 "then the flag is cleared").
func (m *Tilemap) rebuildAll() {
	for _, chunk := range m.chunks {
		chunk.rebuild()
		chunk.recomputeAABB(m.TileWidth, m.TileHeight, m.worldTransform)
	}
	m.dirty = false
}

// Render implements render.TilemapPayload: rebuilds chunks if dirty, then
// culls against viewAABB, caching the surviving chunks for VisibleChunks
// and Draw (spec.md §4.8 "render(view_aabb)"). The renderer calls Draw
// afterward to submit each surviving chunk's sub-batches.
func (m *Tilemap) Render(viewAABB render.AABB) {
	if m.dirty {
		m.rebuildAll()
	}
	m.lastVisible = m.lastVisible[:0]
	for _, chunk := range m.chunks {
		if chunk.Visible(viewAABB) {
			m.lastVisible = append(m.lastVisible, chunk)
		}
	}
}

// VisibleChunks returns the chunks that survived the most recent Render
// call's culling pass.
func (m *Tilemap) VisibleChunks() []*Chunk {
	return m.lastVisible
}

// Draw implements render.TilemapPayload: for every chunk that survived the
// last Render call's culling pass, it packs each sub-batch's tiles into the
// shared instance layout (SubBatch.InstanceData) and submits one
// DrawTriangles32 call per sub-batch, so each visible chunk costs one draw
// call per distinct tileset it uses (spec.md §8 scenario E); a tileset used
// by several visible chunks costs one call per chunk. renderedTiles is the total
// tile-instance count drawn; drawCalls is the number of sub-batches
// submitted.
func (m *Tilemap) Draw(target *ebiten.Image) (renderedTiles, drawCalls int) {
	for _, chunk := range m.lastVisible {
		originCol := chunk.CX * ChunkSize
		originRow := chunk.CY * ChunkSize
		for _, sb := range chunk.subBatches {
			if len(sb.tiles) == 0 {
				continue
			}
			data := sb.InstanceData(originCol, originRow, m.TileWidth, m.TileHeight, m.worldTransform)
			m.vertScratch, m.indexScratch = expandQuads(data, m.vertScratch[:0], m.indexScratch[:0])
			render.DrawTriangles32Batch(target, render.WhitePixel(), m.vertScratch, m.indexScratch, ebiten.BlendSourceOver)
			renderedTiles += len(sb.tiles)
			drawCalls++
		}
	}
	return renderedTiles, drawCalls
}
