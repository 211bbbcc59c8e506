package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/gpu"
)

// instanceBytes is the packed per-sprite layout: worldPosX, worldPosY,
// sizeX, sizeY, frameX, frameY, frameW, frameH, tintR, tintG, tintB, tintA
// (12 × 4 bytes), spec.md §4.7.
const instanceBytes = 48

// maxInstances caps a batch's instance buffer at 65,536 instances
// (≈3.1 MB), spec.md §4.7.
const maxInstances = 65536

// fullReuploadThreshold: when the dirty fraction exceeds this, GetDirtyRanges
// returns the full-reupload sentinel instead of a range list (spec.md §4.7).
const fullReuploadThreshold = 0.8

// DirtyRange is a contiguous half-open instance index range [Start, End)
// that changed since the last upload.
type DirtyRange struct {
	Start, End int
}

// FullReupload is the sentinel DirtyRanges value meaning every instance
// must be re-serialized (spec.md §4.7 "or a sentinel meaning full
// re-upload required").
var FullReupload = []DirtyRange{{Start: -1, End: -1}}

func isFullReupload(ranges []DirtyRange) bool {
	return len(ranges) == 1 && ranges[0].Start == -1 && ranges[0].End == -1
}

// BatchKey identifies a batch by (material, texture): spec.md §4.7
// "A batch is identified by (material_id, texture_id)".
type BatchKey struct {
	MaterialID string
	TextureID  uint64
}

// Batch holds every Sprite sharing one BatchKey, tracks dirty instance
// ranges, and owns the GPU-backed instance buffer it uploads into
// (spec.md §4.7).
type Batch struct {
	Key BatchKey

	sprites   []*Sprite
	index     map[*Sprite]int // sprite -> row, for O(1) has/remove
	dirty     map[int]bool    // rows touched since last upload
	firstLoad bool

	buffer *gpu.Buffer
}

// NewBatch returns an empty batch for key.
func NewBatch(key BatchKey) *Batch {
	return &Batch{
		Key:       key,
		index:     make(map[*Sprite]int),
		dirty:     make(map[int]bool),
		firstLoad: true,
	}
}

// HasSprite reports whether s is a member of this batch.
func (b *Batch) HasSprite(s *Sprite) bool {
	_, ok := b.index[s]
	return ok
}

// AddSprite appends s to the batch, marking its row dirty. A sprite must
// not belong to more than one batch; callers enforce this via the
// material+texture partitioning (spec.md §4.7 invariant).
func (b *Batch) AddSprite(s *Sprite) {
	if b.HasSprite(s) {
		return
	}
	row := len(b.sprites)
	b.sprites = append(b.sprites, s)
	b.index[s] = row
	b.dirty[row] = true
}

// RemoveSprite removes s via swap-with-last, marking the row that now
// holds the moved sprite (if any) dirty, since its instance data changed
// position in the buffer.
func (b *Batch) RemoveSprite(s *Sprite) {
	row, ok := b.index[s]
	if !ok {
		return
	}
	last := len(b.sprites) - 1
	if row != last {
		moved := b.sprites[last]
		b.sprites[row] = moved
		b.index[moved] = row
		b.dirty[row] = true
	}
	b.sprites = b.sprites[:last]
	delete(b.index, s)
	delete(b.dirty, last)
}

// Clear empties the batch.
func (b *Batch) Clear() {
	b.sprites = nil
	b.index = make(map[*Sprite]int)
	b.dirty = make(map[int]bool)
}

// Len returns the number of sprites currently in the batch.
func (b *Batch) Len() int { return len(b.sprites) }

// UpdateInstanceData packs sprites into the 48-byte instance layout, using
// worldOf to resolve each sprite's current world position; the positions
// written are world-space, and camera is not read. Only dirty rows (or all rows, on full reupload) are
// re-serialized into out; out must be at least Len()*instanceBytes long.
func (b *Batch) UpdateInstanceData(camera *Camera, worldOf func(*Sprite) (x, y float64), out []byte) {
	ranges := b.GetDirtyRanges()
	write := func(row int) {
		s := b.sprites[row]
		wx, wy := worldOf(s)
		off := row * instanceBytes
		putF32(out[off:], float32(wx))
		putF32(out[off+4:], float32(wy))
		putF32(out[off+8:], float32(s.Width))
		putF32(out[off+12:], float32(s.Height))
		putF32(out[off+16:], float32(s.FrameX))
		putF32(out[off+20:], float32(s.FrameY))
		putF32(out[off+24:], float32(s.FrameW))
		putF32(out[off+28:], float32(s.FrameH))
		putF32(out[off+32:], float32(s.TintR))
		putF32(out[off+36:], float32(s.TintG))
		putF32(out[off+40:], float32(s.TintB))
		putF32(out[off+44:], float32(s.TintA))
	}
	if isFullReupload(ranges) {
		for row := range b.sprites {
			write(row)
		}
		return
	}
	for _, r := range ranges {
		for row := r.Start; row < r.End; row++ {
			write(row)
		}
	}
}

func putF32(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

// GetDirtyRanges returns the contiguous dirty index ranges since the last
// upload, or FullReupload when the dirty fraction exceeds 80% or this is
// the first upload (spec.md §4.7).
func (b *Batch) GetDirtyRanges() []DirtyRange {
	if b.firstLoad {
		return FullReupload
	}
	if len(b.dirty) == 0 {
		return nil
	}
	if len(b.sprites) > 0 && float64(len(b.dirty))/float64(len(b.sprites)) > fullReuploadThreshold {
		return FullReupload
	}

	rows := make([]int, 0, len(b.dirty))
	for row := range b.dirty {
		rows = append(rows, row)
	}
	insertionSort(rows)

	var ranges []DirtyRange
	for _, row := range rows {
		if n := len(ranges); n > 0 && ranges[n-1].End == row {
			ranges[n-1].End = row + 1
			continue
		}
		ranges = append(ranges, DirtyRange{Start: row, End: row + 1})
	}
	return ranges
}

func insertionSort(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// MarkUploaded clears the dirty set after the caller has uploaded the
// ranges GetDirtyRanges last reported.
func (b *Batch) MarkUploaded() {
	b.dirty = make(map[int]bool)
	b.firstLoad = false
}

// GetOrCreateInstanceBuffer returns the batch's GPU instance buffer,
// growing it monotonically (doubling) when Len() exceeds its current
// capacity, capped at maxInstances. Returns the buffer and whether it was
// reissued this call (spec.md §4.7 "a unique buffer id is issued").
func (b *Batch) GetOrCreateInstanceBuffer(device *gpu.Device) (buf *gpu.Buffer, reissued bool, err error) {
	needed := len(b.sprites)
	if needed > maxInstances {
		needed = maxInstances
	}
	neededBytes := needed * instanceBytes
	if neededBytes == 0 {
		neededBytes = instanceBytes
	}

	if b.buffer == nil {
		buf, err := device.NewBuffer(neededBytes, gpu.BufferStorage)
		if err != nil {
			return nil, false, err
		}
		b.buffer = buf
		return b.buffer, true, nil
	}
	if b.buffer.Len() < neededBytes {
		target := b.buffer.Len()
		for target < neededBytes {
			target *= 2
		}
		if target > maxInstances*instanceBytes {
			target = maxInstances * instanceBytes
		}
		if b.buffer.Grow(target) {
			b.buffer.Reissue()
			return b.buffer, true, nil
		}
	}
	return b.buffer, false, nil
}

// DrawTriangles32Batch submits the batch's current vertex/index arrays
// (already expanded to one quad per sprite by the caller) against page in
// one coalesced draw call, adapted from willow's
// submitBatchesCoalesced/flushSpriteBatch (spec.md §4.9's "packed instance
// buffer" made concrete as triangle submission).
func DrawTriangles32Batch(target, page *ebiten.Image, verts []ebiten.Vertex, indices []uint32, blend ebiten.Blend) {
	if len(verts) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{Blend: blend}
	target.DrawTriangles32(verts, indices, page, op)
}

// AppendSpriteQuad appends 4 vertices and 6 indices for one sprite at
// world transform t, adapted from willow's appendSpriteQuad. Premultiplied
// color with the zero-color sentinel (all-zero RGBA means "opaque white",
// matching willow's atlas placeholder convention).
func AppendSpriteQuad(verts []ebiten.Vertex, indices []uint32, s *Sprite, t Affine) ([]ebiten.Vertex, []uint32) {
	a, b, c, d, tx, ty := float32(t[0]), float32(t[1]), float32(t[2]), float32(t[3]), float32(t[4]), float32(t[5])
	w, h := float32(s.Width), float32(s.Height)

	x0, y0 := float32(0), float32(0)
	x1, y1 := w, float32(0)
	x2, y2 := float32(0), h
	x3, y3 := w, h

	fx, fy, fw, fh := float32(s.FrameX), float32(s.FrameY), float32(s.FrameW), float32(s.FrameH)

	cr, cg, cb, ca := float32(s.TintR), float32(s.TintG), float32(s.TintB), float32(s.TintA)
	if ca == 0 && cr == 0 && cg == 0 && cb == 0 {
		cr, cg, cb, ca = 1, 1, 1, 1
	} else {
		cr, cg, cb = cr*ca, cg*ca, cb*ca
	}

	base := uint32(len(verts))
	verts = append(verts,
		ebiten.Vertex{DstX: a*x0 + c*y0 + tx, DstY: b*x0 + d*y0 + ty, SrcX: fx, SrcY: fy, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: a*x1 + c*y1 + tx, DstY: b*x1 + d*y1 + ty, SrcX: fx + fw, SrcY: fy, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: a*x2 + c*y2 + tx, DstY: b*x2 + d*y2 + ty, SrcX: fx, SrcY: fy + fh, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: a*x3 + c*y3 + tx, DstY: b*x3 + d*y3 + ty, SrcX: fx + fw, SrcY: fy + fh, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
	)
	indices = append(indices, base+0, base+1, base+2, base+1, base+3, base+2)
	return verts, indices
}
