package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/gpu"
	"github.com/sirupsen/logrus"
)

// ClearColor is the RGBA clear color for the main render pass.
type ClearColor struct {
	R, G, B, A float32
}

// Renderer orchestrates one frame: transform update, batch reconciliation,
// render-target decision, scene walk, effect chain, and submission
// (spec.md §4.9).
type Renderer struct {
	log    *logrus.Entry
	device *gpu.Device
	chain  *Chain
	clear  ClearColor

	batches map[BatchKey]*Batch

	sceneTexture *ebiten.Image
	scratchA     *ebiten.Image
	scratchB     *ebiten.Image

	vertScratch []ebiten.Vertex
	indexScratch []uint32
}

// NewRenderer constructs a renderer bound to device, with the given
// post-process chain (may be empty) and clear color.
func NewRenderer(log *logrus.Entry, device *gpu.Device, chain *Chain, clear ClearColor) *Renderer {
	if chain == nil {
		chain = NewChain()
	}
	return &Renderer{
		log:     log,
		device:  device,
		chain:   chain,
		clear:   clear,
		batches: make(map[BatchKey]*Batch),
	}
}

// batchFor returns (creating if needed) the batch for key.
func (r *Renderer) batchFor(key BatchKey) *Batch {
	b, ok := r.batches[key]
	if !ok {
		b = NewBatch(key)
		r.batches[key] = b
	}
	return b
}

// reconcile walks the scene collecting every NodeSprite, ensuring each
// appears in exactly the batch matching its (material, texture) and
// nowhere else, marking batches dirty only on add/remove (spec.md §4.9
// step 2).
func (r *Renderer) reconcile(root *Node) map[*Sprite]BatchKey {
	wanted := make(map[*Sprite]BatchKey)
	walkSprites(root, wanted)

	present := make(map[*Sprite]bool)
	for key, b := range r.batches {
		for _, s := range b.sprites {
			if wanted[s] != key {
				b.RemoveSprite(s)
			} else {
				present[s] = true
			}
		}
	}
	for s, key := range wanted {
		if !present[s] {
			r.batchFor(key).AddSprite(s)
		}
	}
	return wanted
}

func walkSprites(n *Node, out map[*Sprite]BatchKey) {
	if n.Type == NodeSprite && n.Sprite != nil && n.Visible {
		out[n.Sprite] = BatchKey{MaterialID: n.Sprite.MaterialID, TextureID: n.Sprite.TextureID}
	}
	for _, c := range n.Children {
		walkSprites(c, out)
	}
}

// ensureScratch (re)allocates the offscreen textures used for the
// post-process ping-pong chain at the given surface size.
func (r *Renderer) ensureScratch(width, height int) {
	needsAlloc := r.sceneTexture == nil || r.sceneTexture.Bounds().Dx() != width || r.sceneTexture.Bounds().Dy() != height
	if !needsAlloc {
		return
	}
	r.sceneTexture = ebiten.NewImage(width, height)
	r.scratchA = ebiten.NewImage(width, height)
	r.scratchB = ebiten.NewImage(width, height)
}

// Render runs one full frame against surface (spec.md §4.9 steps 1-7).
// Tilemaps and particle emitters are drawn by walking the scene directly;
// sprites are drawn via the reconciled batches. Primitive nodes are not
// drawn.
func (r *Renderer) Render(surface *ebiten.Image, root *Node, camera *Camera) error {
	// Step 1: update transforms top-down.
	UpdateWorldTransforms(root)

	// Step 2: reconcile batches.
	r.reconcile(root)

	nodeOf := make(map[*Sprite]*Node)
	collectSpriteNodes(root, nodeOf)

	// Step 3: decide render target.
	width, height := surface.Bounds().Dx(), surface.Bounds().Dy()
	usePostFX := r.chain.Enabled()
	var target *ebiten.Image
	if usePostFX {
		r.ensureScratch(width, height)
		target = r.sceneTexture
	} else {
		target = surface
	}

	// Step 4: clear and walk the scene (tilemaps, particle emitters).
	target.Fill(colorFloat(r.clear))
	r.walkNonSprite(root, target, camera)

	// Step 5: pre-effects, batched sprites, post-effects.
	pre := r.chain.PreEffects()
	for _, e := range pre {
		if err := e.Apply(r.device, target, target); err != nil {
			return fmt.Errorf("render: pre-effect %s: %w", e.Name(), err)
		}
	}

	r.drawBatches(target, camera, nodeOf)

	// Step 6: end main pass; ping-pong post-effects to the surface.
	if usePostFX {
		post := r.chain.PostEffects()
		if err := RunPostChain(r.device, post, target, surface, r.scratchA, r.scratchB); err != nil {
			return fmt.Errorf("render: post chain: %w", err)
		}
	}

	// Step 7: release pooled scratch arrays.
	r.vertScratch = r.vertScratch[:0]
	r.indexScratch = r.indexScratch[:0]
	return nil
}

func collectSpriteNodes(n *Node, out map[*Sprite]*Node) {
	if n.Type == NodeSprite && n.Sprite != nil {
		out[n.Sprite] = n
	}
	for _, c := range n.Children {
		collectSpriteNodes(c, out)
	}
}

func (r *Renderer) walkNonSprite(n *Node, target *ebiten.Image, camera *Camera) {
	switch n.Type {
	case NodeTilemap:
		if n.Tilemap != nil {
			n.Tilemap.Render(camera.VisibleBounds())
			n.Tilemap.Draw(target)
		}
	case NodePrimitive:
		// Primitive nodes are not rasterized; nothing is drawn for them.
	case NodeParticleEmitter:
		if n.Emitter != nil && n.Emitter.Active && n.Emitter.Payload != nil {
			worldTransform := Multiply(camera.ViewMatrix(), n.WorldTransform())
			n.Emitter.Payload.Draw(target, worldTransform)
		}
	}
	for _, c := range n.Children {
		r.walkNonSprite(c, target, camera)
	}
}

// drawBatches expands each batch's visible sprites into the shared
// vertex/index scratch slices and submits one DrawTriangles32 call per
// batch, adapted from willow's submitBatchesCoalesced/flushSpriteBatch.
// Every batch draws against the shared white pixel; a sprite's TextureID is
// not resolved to a texture page.
func (r *Renderer) drawBatches(target *ebiten.Image, camera *Camera, nodeOf map[*Sprite]*Node) {
	view := camera.ViewMatrix()
	for _, b := range r.batches {
		r.vertScratch = r.vertScratch[:0]
		r.indexScratch = r.indexScratch[:0]
		var page *ebiten.Image
		for _, s := range b.sprites {
			n := nodeOf[s]
			if n == nil || !n.Visible {
				continue
			}
			worldTransform := Multiply(view, n.WorldTransform())
			r.vertScratch, r.indexScratch = AppendSpriteQuad(r.vertScratch, r.indexScratch, s, worldTransform)
		}
		if page == nil {
			page = whitePixel()
		}
		DrawTriangles32Batch(target, page, r.vertScratch, r.indexScratch, ebiten.BlendSourceOver)
	}
}

var whitePixelImage *ebiten.Image

func whitePixel() *ebiten.Image {
	return WhitePixel()
}

// WhitePixel returns a shared 1x1 opaque-white image, the default texture
// page for draw calls with no real texture bound (solid-color sprites,
// particles with no TextureID wired to an atlas page).
func WhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(colorFloat(ClearColor{R: 1, G: 1, B: 1, A: 1}))
	}
	return whitePixelImage
}

func colorFloat(c ClearColor) colorRGBA {
	return colorRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// colorRGBA implements ebiten's color.Color-like Fill argument via the
// standard library color.NRGBA64-compatible interface used by
// *ebiten.Image.Fill in recent Ebitengine releases; kept local to avoid
// importing image/color just for this.
type colorRGBA struct{ R, G, B, A float32 }

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R * 0xffff)
	g = uint32(c.G * 0xffff)
	b = uint32(c.B * 0xffff)
	a = uint32(c.A * 0xffff)
	return
}
