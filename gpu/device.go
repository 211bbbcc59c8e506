// Package gpu wraps Ebitengine as the GPU device surrogate: it is the sole
// factory for buffers, textures, shader modules, and pipelines, and it owns
// the caches that key off those objects' identities (spec.md §4.6, §4.9).
package gpu

import (
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// ErrDeviceLost is returned by the Device's factory methods (NewTexture,
// NewTextureFromImage, NewBuffer) once Invalidate has run.
var ErrDeviceLost = errors.New("gpu: device lost")

// ColorFormat names the device's chosen surface color format. Ebitengine's
// surface is always premultiplied-alpha RGBA8; the device records that
// choice explicitly rather than leaving it implicit (spec.md §4.6
// "premultiplied alpha").
type ColorFormat int

const (
	ColorFormatRGBA8Premultiplied ColorFormat = iota
)

// Device is created once per App and outlives every GPU object it serves;
// destroying it (Invalidate) invalidates every resource allocated through
// it (spec.md §4.6).
type Device struct {
	log *logrus.Entry

	mu      sync.Mutex
	lost    bool
	surface ColorFormat
	gen     uint64 // bumped on Invalidate; buffers/textures stamp their gen at creation

	shaders   *ShaderCache
	pipelines *PipelineCache
	bindGroup *BindGroupCache
}

// New acquires a device. Ebitengine has no explicit adapter-selection step;
// "acquiring the adapter and device" is the process's single implicit GL/
// Metal/D3D context, so New just records the chosen surface format and
// constructs the lazy caches (spec.md §4.6).
func New(log *logrus.Entry) *Device {
	d := &Device{
		log:     log,
		surface: ColorFormatRGBA8Premultiplied,
	}
	d.shaders = newShaderCache()
	d.pipelines = newPipelineCache()
	d.bindGroup = newBindGroupCache(256)
	return d
}

// SurfaceFormat returns the configured presentation surface color format.
func (d *Device) SurfaceFormat() ColorFormat { return d.surface }

// Generation returns the device's current generation counter, bumped every
// time Invalidate runs. Callers can stamp resources with the generation at
// creation time and compare later to detect a lost device cheaply.
func (d *Device) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Lost reports whether Invalidate has been called.
func (d *Device) Lost() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost
}

// Invalidate marks the device lost: every Buffer/Texture/pipeline allocated
// through it becomes unusable, and every cache is cleared. Safe to call more
// than once.
func (d *Device) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lost = true
	d.gen++
	d.shaders.clear()
	d.pipelines.clear()
	d.bindGroup.clear()
	if d.log != nil {
		d.log.WithField("generation", d.gen).Warn("gpu device invalidated")
	}
}

// NewTexture creates a texture-backed *ebiten.Image of the given size. The
// device is the sole factory for textures (spec.md §4.6).
func (d *Device) NewTexture(width, height int) (*Texture, error) {
	if d.Lost() {
		return nil, ErrDeviceLost
	}
	return &Texture{
		Image: ebiten.NewImage(width, height),
		id:    nextResourceID(),
		gen:   d.Generation(),
	}, nil
}

// NewTextureFromImage wraps an already-decoded image as a device texture.
func (d *Device) NewTextureFromImage(img image.Image) (*Texture, error) {
	if d.Lost() {
		return nil, ErrDeviceLost
	}
	return &Texture{
		Image: ebiten.NewImageFromImage(img),
		id:    nextResourceID(),
		gen:   d.Generation(),
	}, nil
}

// NewBuffer allocates a Buffer of byteLen capacity (spec.md §4.7
// "get_or_create_instance_buffer", §4.10 uniform/storage/staging buffers).
func (d *Device) NewBuffer(byteLen int, kind BufferKind) (*Buffer, error) {
	if d.Lost() {
		return nil, ErrDeviceLost
	}
	return newBuffer(nextResourceID(), d.Generation(), byteLen, kind), nil
}

// Shaders returns the device's shader-module cache.
func (d *Device) Shaders() *ShaderCache { return d.shaders }

// Pipelines returns the device's pipeline cache.
func (d *Device) Pipelines() *PipelineCache { return d.pipelines }

// BindGroups returns the device's bind-group LRU cache.
func (d *Device) BindGroups() *BindGroupCache { return d.bindGroup }

// Texture is a device-owned image resource.
type Texture struct {
	Image *ebiten.Image
	id    uint64
	gen   uint64
}

// ID returns the texture's identity, stable for its lifetime; used as a
// cache key (spec.md §4.9 "texture-view cache keyed by texture id").
func (t *Texture) ID() uint64 { return t.id }

var resourceIDCounter struct {
	mu   sync.Mutex
	next uint64
}

func nextResourceID() uint64 {
	resourceIDCounter.mu.Lock()
	defer resourceIDCounter.mu.Unlock()
	resourceIDCounter.next++
	return resourceIDCounter.next
}
