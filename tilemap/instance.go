package tilemap

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/render"
)

// tileInstanceBytes is the per-tile packed layout shared with sprite
// batching: worldX, worldY, tileW, tileH, frameX, frameY, frameW, frameH,
// tintR, tintG, tintB, tintA (12 × 4 bytes), spec.md §4.8/§6.
const tileInstanceBytes = 48

// InstanceData packs sb's tile instances into the 48-byte layout, in
// sb.tiles order. chunkOriginCol/Row is the chunk's absolute tile-space
// origin (chunk coordinate × ChunkSize); worldTransform places each tile's
// local position into world space (spec.md §4.8 "tile-coordinate packing
// [worldX, worldY, tileW, tileH, frameX,Y,W,H, tintR,G,B,A]").
func (sb *SubBatch) InstanceData(chunkOriginCol, chunkOriginRow int, tileW, tileH float64, worldTransform render.Affine) []byte {
	out := make([]byte, len(sb.tiles)*tileInstanceBytes)
	for i, inst := range sb.tiles {
		localX := float64(chunkOriginCol+inst.col) * tileW
		localY := float64(chunkOriginRow+inst.row) * tileH
		wx, wy := render.TransformPoint(worldTransform, localX, localY)

		off := i * tileInstanceBytes
		putF32(out[off:], float32(wx))
		putF32(out[off+4:], float32(wy))
		putF32(out[off+8:], float32(tileW))
		putF32(out[off+12:], float32(tileH))
		putF32(out[off+16:], 0) // frameX: tileset UV lookup is out of scope here
		putF32(out[off+20:], 0) // frameY
		putF32(out[off+24:], float32(tileW)) // frameW
		putF32(out[off+28:], float32(tileH)) // frameH
		putF32(out[off+32:], 1) // tintR
		putF32(out[off+36:], 1) // tintG
		putF32(out[off+40:], 1) // tintB
		putF32(out[off+44:], 1) // tintA
	}
	return out
}

func putF32(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func readF32(src []byte, offset int) float32 {
	bits := uint32(src[offset]) | uint32(src[offset+1])<<8 | uint32(src[offset+2])<<16 | uint32(src[offset+3])<<24
	return math.Float32frombits(bits)
}

// expandQuads decodes a sub-batch's packed instance bytes back into
// vertex/index pairs, one quad per tile, the same way the GPU's vertex
// stage would expand an instance buffer (spec.md §6's packing is meant to
// be read back bit-exact by that stage).
func expandQuads(data []byte, verts []ebiten.Vertex, indices []uint32) ([]ebiten.Vertex, []uint32) {
	for off := 0; off+tileInstanceBytes <= len(data); off += tileInstanceBytes {
		wx, wy := readF32(data, off), readF32(data, off+4)
		w, h := readF32(data, off+8), readF32(data, off+12)
		fx, fy := readF32(data, off+16), readF32(data, off+20)
		fw, fh := readF32(data, off+24), readF32(data, off+28)
		tr, tg, tb, ta := readF32(data, off+32), readF32(data, off+36), readF32(data, off+40), readF32(data, off+44)
		cr, cg, cb := tr*ta, tg*ta, tb*ta

		base := uint32(len(verts))
		verts = append(verts,
			ebiten.Vertex{DstX: wx, DstY: wy, SrcX: fx, SrcY: fy, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ta},
			ebiten.Vertex{DstX: wx + w, DstY: wy, SrcX: fx + fw, SrcY: fy, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ta},
			ebiten.Vertex{DstX: wx, DstY: wy + h, SrcX: fx, SrcY: fy + fh, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ta},
			ebiten.Vertex{DstX: wx + w, DstY: wy + h, SrcX: fx + fw, SrcY: fy + fh, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ta},
		)
		indices = append(indices, base, base+1, base+2, base+1, base+3, base+2)
	}
	return verts, indices
}
