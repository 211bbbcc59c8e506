package render

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera tracks position, zoom, and rotation over a viewport, and exposes
// the visible-bounds AABB that tilemap culling and batch/renderer frustum
// decisions need (spec.md §4.7 "update_instance_data(camera)", §4.8 view
// culling) — grounded on willow/camera.go, which the distilled spec assumes
// exists but never itself defines.
type Camera struct {
	X, Y             float64
	Zoom             float64
	Rotation         float64
	ViewportW, ViewportH float64

	scrollTweenX *gween.Tween
	scrollTweenY *gween.Tween
	zoomTween    *gween.Tween
}

// NewCamera returns a camera centered at the origin with zoom 1 over the
// given viewport size.
func NewCamera(viewportW, viewportH float64) *Camera {
	return &Camera{
		Zoom:      1,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// ScrollTo tweens the camera's position to (x, y) over duration seconds
// using the given easing curve.
func (c *Camera) ScrollTo(x, y float64, duration float32, easing ease.TweenFunc) {
	c.scrollTweenX = gween.New(float32(c.X), float32(x), duration, easing)
	c.scrollTweenY = gween.New(float32(c.Y), float32(y), duration, easing)
}

// ZoomTo tweens the camera's zoom level to z over duration seconds.
func (c *Camera) ZoomTo(z float64, duration float32, easing ease.TweenFunc) {
	c.zoomTween = gween.New(float32(c.Zoom), float32(z), duration, easing)
}

// Update advances any in-flight scroll/zoom tweens by dt seconds. Call once
// per tick, typically from a PreRender system.
func (c *Camera) Update(dt float64) {
	if c.scrollTweenX != nil {
		x, done := c.scrollTweenX.Update(float32(dt))
		c.X = float64(x)
		if done {
			c.scrollTweenX = nil
		}
	}
	if c.scrollTweenY != nil {
		y, done := c.scrollTweenY.Update(float32(dt))
		c.Y = float64(y)
		if done {
			c.scrollTweenY = nil
		}
	}
	if c.zoomTween != nil {
		z, done := c.zoomTween.Update(float32(dt))
		c.Zoom = float64(z)
		if done {
			c.zoomTween = nil
		}
	}
}

// ViewMatrix returns the affine transform mapping world space to screen
// space: translate by -position, rotate, scale by zoom, translate to the
// viewport center.
func (c *Camera) ViewMatrix() Affine {
	sin, cos := math.Sincos(c.Rotation)
	z := c.Zoom
	a, b := cos*z, sin*z
	cc, d := -sin*z, cos*z
	tx := c.ViewportW/2 - (a*c.X + cc*c.Y)
	ty := c.ViewportH/2 - (b*c.X + d*c.Y)
	return Affine{a, b, cc, d, tx, ty}
}

// WorldToScreen projects a world-space point to screen space.
func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	return TransformPoint(c.ViewMatrix(), x, y)
}

// ScreenToWorld projects a screen-space point back to world space.
func (c *Camera) ScreenToWorld(x, y float64) (float64, float64) {
	return TransformPoint(Invert(c.ViewMatrix()), x, y)
}

// VisibleBounds returns the world-space AABB currently visible through the
// camera's viewport, used by tilemap chunk culling (spec.md §4.8) and by
// the renderer's batch frustum decisions.
func (c *Camera) VisibleBounds() AABB {
	corners := [4][2]float64{{0, 0}, {c.ViewportW, 0}, {0, c.ViewportH}, {c.ViewportW, c.ViewportH}}
	inv := Invert(c.ViewMatrix())
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		wx, wy := TransformPoint(inv, p[0], p[1])
		minX, minY = math.Min(minX, wx), math.Min(minY, wy)
		maxX, maxY = math.Max(maxX, wx), math.Max(maxY, wy)
	}
	return AABB{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}
