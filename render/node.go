package render

import "github.com/hajimehoshi/ebiten/v2"

// NodeType tags which payload a Node carries, letting render-phase systems
// traverse the scene with a type switch instead of separate parallel trees
// (spec.md §9 "Scene traversal via downcasts").
type NodeType int

const (
	NodeContainer NodeType = iota
	NodeSprite
	NodePrimitive
	NodeTilemap
	NodeParticleEmitter
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether a and b overlap, including touching edges.
func (a AABB) Intersects(b AABB) bool {
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX && a.MinY <= b.MaxY && a.MaxY >= b.MinY
}

// Sprite is the NodeSprite payload: a single textured quad belonging to a
// sprite batch, keyed by (MaterialID, TextureID) per spec.md §4.7.
type Sprite struct {
	MaterialID string
	TextureID  uint64
	Width      float64
	Height     float64
	FrameX, FrameY, FrameW, FrameH float64
	TintR, TintG, TintB, TintA     float64
}

// Primitive is the NodePrimitive payload: an untextured filled shape,
// outside of sprite batching. The Renderer's scene walk does not draw
// primitive nodes.
type Primitive struct {
	Kind  string // "rect", "circle", "line"
	Width float64
	Height float64
	TintR, TintG, TintB, TintA float64
}

// Node is one entry in the scene graph: a transform plus an optional typed
// payload and children. The root of a scene is a NodeContainer with no
// payload.
type Node struct {
	Type NodeType

	// Local transform properties (spec.md §4.9 step 1, render/transform.go).
	X, Y                     float64
	ScaleX, ScaleY           float64
	Rotation                 float64
	SkewX, SkewY             float64
	PivotX, PivotY           float64
	Alpha                    float64
	Visible                  bool

	Sprite    *Sprite
	Primitive *Primitive
	Tilemap   TilemapPayload
	Emitter   *EmitterNode

	Parent   *Node
	Children []*Node

	worldTransform Affine
	worldAlpha     float64
	transformDirty bool
}

// NewNode returns a Node with identity transform, full alpha, and visible
// set, ready to be attached as a child or used as a scene root.
func NewNode(t NodeType) *Node {
	return &Node{
		Type:           t,
		ScaleX:         1,
		ScaleY:         1,
		Alpha:          1,
		Visible:        true,
		worldTransform: Identity,
		worldAlpha:     1,
		transformDirty: true,
	}
}

// AddChild appends child to n's children, marking child dirty so its world
// transform recomputes on the next UpdateWorldTransforms pass.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	child.transformDirty = true
	n.Children = append(n.Children, child)
}

// RemoveChild detaches child from n, if present.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// MarkDirty flags n's local transform as changed; the next
// UpdateWorldTransforms pass recomputes n and every descendant.
func (n *Node) MarkDirty() { n.transformDirty = true }

// WorldTransform returns n's most recently computed world affine transform.
func (n *Node) WorldTransform() Affine { return n.worldTransform }

// WorldAlpha returns n's most recently computed cumulative alpha.
func (n *Node) WorldAlpha() float64 { return n.worldAlpha }

// EmitterNode is the NodeParticleEmitter payload; see particles.Config for
// the GPU-driven simulation it drives. Payload is the live emitter itself
// (a *particles.Emitter), attached here rather than typed directly so
// render does not depend on package particles (same import-cycle
// avoidance as TilemapPayload).
type EmitterNode struct {
	ConfigID string
	Active   bool
	Payload  EmitterPayload
}

// EmitterPayload is the interface a NodeParticleEmitter's Emitter.Payload
// must satisfy so the scene walk can draw its currently alive particles
// without importing package particles.
type EmitterPayload interface {
	// Draw submits the emitter's alive particles against target, using
	// worldTransform (the owning Node's world transform composed with the
	// camera's view matrix) to place particles simulated in local space.
	Draw(target *ebiten.Image, worldTransform Affine)
}

// TilemapPayload is the interface a NodeTilemap's Tilemap field must
// satisfy. It is defined here (rather than importing package tilemap
// directly) so render does not depend on tilemap while tilemap depends on
// render's Node/AABB/Affine vocabulary (spec.md §4.8, §4.9 step 4 "walks
// the scene: tilemaps, primitives, particle emitters").
type TilemapPayload interface {
	// Render culls the tilemap's chunks against viewAABB, caching the
	// surviving set for the following Draw call.
	Render(viewAABB AABB)
	// Draw submits one draw call per sub-batch across the chunks that
	// survived the last Render call, returning the tile-instance count
	// drawn and the number of draw calls submitted.
	Draw(target *ebiten.Image) (renderedTiles, drawCalls int)
	// OnWorldTransformChanged is called after the owning Node's world
	// transform is recomputed, so chunk AABBs can be refreshed.
	OnWorldTransformChanged(worldTransform Affine)
}
