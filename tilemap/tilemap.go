// Package tilemap implements chunked tilemap rendering: fixed-size square
// chunks, one sub-batch per distinct tileset used within a chunk, and
// AABB-based view culling (spec.md §4.8) — grounded on willow/tilemap.go's
// GID flip-flag convention and UV-order table.
package tilemap

import (
	"github.com/pdcamargo/atlas-engine/render"
)

// GID flag bits, same convention as the Tiled TMX format (willow/tilemap.go).
const (
	FlipH    uint32 = 1 << 31
	FlipV    uint32 = 1 << 30
	FlipD    uint32 = 1 << 29
	FlagMask uint32 = FlipH | FlipV | FlipD
)

// uvOrder maps the 3-bit flip-flag combination (flipH<<2 | flipV<<1 | flipD)
// to which source UV corner (TL=0, TR=1, BL=2, BR=3) goes to each
// destination vertex position, verbatim from willow/tilemap.go.
var uvOrder = [8][4]int{
	{0, 1, 2, 3}, // no flags
	{2, 0, 3, 1}, // D only
	{2, 3, 0, 1}, // V flip
	{3, 2, 1, 0}, // V+D
	{1, 0, 3, 2}, // H flip
	{0, 2, 1, 3}, // H+D
	{3, 2, 1, 0}, // H+V
	{1, 3, 0, 2}, // H+V+D
}

// UVOrderFor returns the corner-mapping row for the given GID flag bits.
func UVOrderFor(gid uint32) [4]int {
	flags := gid & FlagMask
	idx := 0
	if flags&FlipH != 0 {
		idx |= 4
	}
	if flags&FlipV != 0 {
		idx |= 2
	}
	if flags&FlipD != 0 {
		idx |= 1
	}
	return uvOrder[idx]
}

// BaseGID strips the flip-flag bits from a raw tile GID.
func BaseGID(gid uint32) uint32 { return gid &^ FlagMask }

// AnimFrame is one frame in a tile's animation sequence.
type AnimFrame struct {
	GID      uint32
	Duration float64 // seconds
}

// Tile is a single cell's GID plus, if animated, its frame sequence and
// current playback position.
type Tile struct {
	GID       uint32
	TilesetID int
	Frames    []AnimFrame // nil if not animated
	frameIdx  int
	elapsed   float64
}

func (t *Tile) animated() bool { return len(t.Frames) > 1 }

// currentGID returns the GID to render this tile with this frame.
func (t *Tile) currentGID() uint32 {
	if t.animated() {
		return t.Frames[t.frameIdx].GID
	}
	return t.GID
}

// advance steps the tile's animation by dt seconds. Returns true if the
// visible frame changed.
func (t *Tile) advance(dt float64) bool {
	if !t.animated() {
		return false
	}
	t.elapsed += dt
	changed := false
	for t.elapsed >= t.Frames[t.frameIdx].Duration {
		t.elapsed -= t.Frames[t.frameIdx].Duration
		t.frameIdx = (t.frameIdx + 1) % len(t.Frames)
		changed = true
	}
	return changed
}

// ChunkSize is the fixed square chunk dimension, in tiles.
const ChunkSize = 16

// SubBatch is one distinct-tileset slice of a chunk's tiles. It holds no
// buffer of its own: InstanceData packs its tiles on each call into the
// 48-byte layout shared with sprite batching (spec.md §4.8 "48-byte
// instance layout shared with sprite batching").
type SubBatch struct {
	TilesetID int
	tiles     []tileInstance
}

type tileInstance struct {
	col, row int
	tile     *Tile
}

// Chunk owns the sub-batches for one cx,cy chunk coordinate and the
// world-space AABB recomputed whenever the owning tilemap's world
// transform changes (spec.md §4.8).
type Chunk struct {
	CX, CY int
	AABB   render.AABB

	subBatches map[int]*SubBatch // tileset id -> sub-batch
	tiles      map[[2]int]*Tile  // local (col, row) -> tile
}

func newChunk(cx, cy int) *Chunk {
	return &Chunk{
		CX:         cx,
		CY:         cy,
		subBatches: make(map[int]*SubBatch),
		tiles:      make(map[[2]int]*Tile),
	}
}

// SetTile places (or replaces) a tile at local (col, row) within the chunk.
func (c *Chunk) SetTile(col, row int, t *Tile) {
	c.tiles[[2]int{col, row}] = t
}

// rebuild regroups every tile into its tileset's sub-batch. Called once
// per full tilemap rebuild (spec.md §4.8 "dirty flag... all chunks and
// their sub-batches are rebuilt next render").
func (c *Chunk) rebuild() {
	c.subBatches = make(map[int]*SubBatch)
	for coord, t := range c.tiles {
		sb, ok := c.subBatches[t.TilesetID]
		if !ok {
			sb = &SubBatch{TilesetID: t.TilesetID}
			c.subBatches[t.TilesetID] = sb
		}
		sb.tiles = append(sb.tiles, tileInstance{col: coord[0], row: coord[1], tile: t})
	}
}

// recomputeAABB updates c.AABB for the given tile pixel size and the
// tilemap's current world transform.
func (c *Chunk) recomputeAABB(tileW, tileH float64, worldTransform render.Affine) {
	originX := float64(c.CX * ChunkSize) * tileW
	originY := float64(c.CY * ChunkSize) * tileH
	w := float64(ChunkSize) * tileW
	h := float64(ChunkSize) * tileH
	local := render.Multiply(worldTransform, render.Affine{1, 0, 0, 1, originX, originY})
	c.AABB = render.WorldAABB(local, w, h)
}

// Visible reports whether c's AABB intersects viewAABB (spec.md §4.8
// "chunk is drawn iff its AABB intersects the view AABB").
func (c *Chunk) Visible(viewAABB render.AABB) bool {
	return c.AABB.Intersects(viewAABB)
}
