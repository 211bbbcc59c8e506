package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/gpu"
)

// Effect is a post-process pass applied to the scene texture. Effects with
// Order() < 0 run as pre-effects (before sprites are composited); Order()
// >= 0 run as post-effects in the ping-pong chain (spec.md §4.9 step 5-6).
type Effect interface {
	Name() string
	Order() int
	Enabled() bool
	Apply(device *gpu.Device, src, dst *ebiten.Image) error
}

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

const pixelPerfectOutlineShaderSrc = `//kage:unit pixels
package main

var OutlineColor vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		return c
	}
	if imageSrc0At(src + vec2(1, 0)).a > 0 ||
		imageSrc0At(src + vec2(-1, 0)).a > 0 ||
		imageSrc0At(src + vec2(0, 1)).a > 0 ||
		imageSrc0At(src + vec2(0, -1)).a > 0 {
		return OutlineColor
	}
	return vec4(0)
}
`

// ColorMatrixEffect applies a 4x5 color matrix, grounded on
// willow/filter.go's colorMatrixShaderSrc.
type ColorMatrixEffect struct {
	OrderValue int
	EnabledFlag bool
	Matrix     [20]float32
}

func (e *ColorMatrixEffect) Name() string  { return "color_matrix" }
func (e *ColorMatrixEffect) Order() int    { return e.OrderValue }
func (e *ColorMatrixEffect) Enabled() bool { return e.EnabledFlag }

func (e *ColorMatrixEffect) Apply(device *gpu.Device, src, dst *ebiten.Image) error {
	shader, err := device.Shaders().GetOrCompile("color_matrix", []byte(colorMatrixShaderSrc))
	if err != nil {
		return err
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{"Matrix": e.Matrix[:]}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	dst.DrawRectShader(w, h, shader, op)
	return nil
}

// PixelPerfectOutlineEffect draws a solid outline one pixel outside every
// opaque edge, grounded on willow/filter.go's pixelPerfectOutlineShaderSrc.
type PixelPerfectOutlineEffect struct {
	OrderValue  int
	EnabledFlag bool
	ColorR, ColorG, ColorB, ColorA float32
}

func (e *PixelPerfectOutlineEffect) Name() string  { return "pixel_perfect_outline" }
func (e *PixelPerfectOutlineEffect) Order() int    { return e.OrderValue }
func (e *PixelPerfectOutlineEffect) Enabled() bool { return e.EnabledFlag }

func (e *PixelPerfectOutlineEffect) Apply(device *gpu.Device, src, dst *ebiten.Image) error {
	shader, err := device.Shaders().GetOrCompile("pixel_perfect_outline", []byte(pixelPerfectOutlineShaderSrc))
	if err != nil {
		return err
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{
		"OutlineColor": []float32{e.ColorR, e.ColorG, e.ColorB, e.ColorA},
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	dst.DrawRectShader(w, h, shader, op)
	return nil
}

// Chain runs a sorted sequence of effects, split into pre-effects
// (Order() < 0) and post-effects (Order() >= 0), per spec.md §4.9 step 5-6.
type Chain struct {
	effects []Effect
}

// NewChain returns an effect chain; effects is sorted by Order ascending.
func NewChain(effects ...Effect) *Chain {
	sorted := append([]Effect(nil), effects...)
	insertionSortEffects(sorted)
	return &Chain{effects: sorted}
}

func insertionSortEffects(a []Effect) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j].Order() > v.Order() {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// PreEffects returns enabled effects with Order() < 0.
func (c *Chain) PreEffects() []Effect {
	var out []Effect
	for _, e := range c.effects {
		if e.Order() < 0 && e.Enabled() {
			out = append(out, e)
		}
	}
	return out
}

// PostEffects returns enabled effects with Order() >= 0, ascending.
func (c *Chain) PostEffects() []Effect {
	var out []Effect
	for _, e := range c.effects {
		if e.Order() >= 0 && e.Enabled() {
			out = append(out, e)
		}
	}
	return out
}

// Enabled reports whether any effect in the chain is enabled; the renderer
// uses this to decide whether to render into an offscreen sceneTexture at
// all (spec.md §4.9 step 3).
func (c *Chain) Enabled() bool {
	for _, e := range c.effects {
		if e.Enabled() {
			return true
		}
	}
	return false
}

// RunPostChain ping-pongs src through post-effects in order, writing the
// final result to surface (spec.md §4.9 step 6: "the last effect targets
// the surface").
func RunPostChain(device *gpu.Device, effects []Effect, src, surface *ebiten.Image, scratchA, scratchB *ebiten.Image) error {
	if len(effects) == 0 {
		surface.DrawImage(src, nil)
		return nil
	}
	ping, pong := scratchA, scratchB
	current := src
	for i, e := range effects {
		var target *ebiten.Image
		if i == len(effects)-1 {
			target = surface
		} else if current == ping {
			target = pong
		} else {
			target = ping
		}
		if err := e.Apply(device, current, target); err != nil {
			return err
		}
		current = target
	}
	return nil
}
