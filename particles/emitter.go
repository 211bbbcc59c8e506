// Package particles implements GPU-driven particle emitters: unlike
// willow's CPU-simulated ParticleEmitter (particle.go), simulation here
// runs as a compute pass over storage buffers, and presentation reuses
// render.Batch/AppendSpriteQuad the same primitives sprites draw through —
// a deliberate reinterpretation the spec calls for explicitly ("GPU-driven
// update+emit+render pipelines").
package particles

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pdcamargo/atlas-engine/compute"
	"github.com/pdcamargo/atlas-engine/gpu"
	"github.com/pdcamargo/atlas-engine/render"
)

// Range is an inclusive [Min, Max] range sampled uniformly.
type Range struct {
	Min, Max float64
}

// Random draws a uniform sample from r.
func (r Range) Random() float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// Vec2 is a plain 2D vector.
type Vec2 struct{ X, Y float64 }

// Color is a straight (non-premultiplied) RGBA tint.
type Color struct{ R, G, B, A float64 }

// Config controls how particles are spawned and evolve, grounded on
// willow/particle.go's EmitterConfig but driving a GPU compute pass
// instead of per-frame CPU simulation.
type Config struct {
	MaxParticles int
	EmitRate     float64 // particles spawned per second
	Lifetime     Range
	Speed        Range
	Angle        Range
	StartScale   Range
	EndScale     Range
	StartAlpha   Range
	EndAlpha     Range
	Gravity      Vec2
	StartColor   Color
	EndColor     Color
	MaterialID   string
	TextureID    uint64
	// WorldSpace, when true, means a particle's simulated position is
	// already in world coordinates and is drawn without composing the
	// owning node's world transform; false (the default) simulates in the
	// node's local space.
	WorldSpace bool
}

// particleStride is the per-particle storage-buffer record size: x, y, vx,
// vy, life, maxLife, startScale, endScale, startAlpha, endAlpha (10 × 4
// bytes), matching the instance-layout convention render.Batch uses
// (spec.md §4.7's 48-byte sprite instance record is the sibling format).
const particleStride = 40

// paramsBytes is the advance pass's uniform record: dt, gravityX, gravityY
// (float32 each), aliveCount (uint32).
const paramsBytes = 16

// particleAdvance is the ShaderType bound to advanceParticles, the
// per-particle gravity-integration and lifetime-decrement pass run every
// Update.
const particleAdvance compute.ShaderType = "particle_advance"

const advanceShaderSrc = `//kage:unit pixels
package main
// Kage compute source for the particle advance pass; the transform that
// actually runs on Execute is advanceParticles (see compute.Transform),
// since this workspace models a GPU buffer as plain bytes rather than
// dispatching real Kage compute code.
func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return color
}
`

// advanceParticles is the compute.Transform registered for
// particleAdvance: it integrates gravity into velocity, velocity into
// position, and decrements each live particle's remaining lifetime, over
// the first aliveCount records (spec.md §4.10 "execute... yields the
// expected result", applied here to particle simulation rather than a
// generic buffer transform).
func advanceParticles(bound map[string][]byte) {
	params := bound["params"]
	particles := bound["particles"]
	if params == nil || particles == nil {
		return
	}

	dt := readF32At(params, 0)
	gravityX := readF32At(params, 4)
	gravityY := readF32At(params, 8)
	aliveCount := int(binary.LittleEndian.Uint32(params[12:16]))

	for i := 0; i < aliveCount; i++ {
		off := i * particleStride
		if off+particleStride > len(particles) {
			break
		}
		rec := particles[off : off+particleStride]

		x := readF32At(rec, 0)
		y := readF32At(rec, 4)
		vx := readF32At(rec, 8)
		vy := readF32At(rec, 12)
		life := readF32At(rec, 16)

		vx += gravityX * dt
		vy += gravityY * dt
		x += vx * dt
		y += vy * dt
		life -= dt

		putF32At(rec, 0, x)
		putF32At(rec, 4, y)
		putF32At(rec, 8, vx)
		putF32At(rec, 12, vy)
		putF32At(rec, 16, life)
	}
}

// Emitter owns a GPU-driven particle pool: a compute.WorkerInstance that
// advances particle state every frame, and a render.Batch plus parallel
// sprite/position slices that present the alive particles as quads.
type Emitter struct {
	config Config
	worker *compute.WorkerInstance
	batch  *render.Batch

	active     bool
	spawnAccum float64
	aliveCount int

	sprites   []*render.Sprite
	positions []Vec2

	vertScratch  []ebiten.Vertex
	indexScratch []uint32
}

// New builds an Emitter's compute worker (one staging buffer sized for
// MaxParticles particles, one uniform params buffer, one advance pass) and
// its presentation batch.
func New(device *gpu.Device, cfg Config) (*Emitter, error) {
	builder := compute.NewBuilder(device).
		RegisterShader(particleAdvance, []byte(advanceShaderSrc)).
		RegisterTransform(particleAdvance, advanceParticles).
		AddStaging("particles", cfg.MaxParticles*particleStride).
		AddUniform("params", paramsBytes).
		AddPass(particleAdvance, [3]int{workgroupsFor(cfg.MaxParticles), 1, 1}, "params", "particles")

	worker, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return &Emitter{
		config: cfg,
		worker: worker,
		batch:  render.NewBatch(render.BatchKey{MaterialID: cfg.MaterialID, TextureID: cfg.TextureID}),
	}, nil
}

func workgroupsFor(maxParticles int) int {
	const threadsPerGroup = 64
	return (maxParticles + threadsPerGroup - 1) / threadsPerGroup
}

// Start begins spawning at config.EmitRate.
func (e *Emitter) Start() { e.active = true }

// Stop halts spawning; already-alive particles continue simulating until
// they expire.
func (e *Emitter) Stop() { e.active = false }

// Active reports whether the emitter is currently spawning.
func (e *Emitter) Active() bool { return e.active }

// AliveCount returns the emitter's most recently known alive-particle
// count (updated by Update).
func (e *Emitter) AliveCount() int { return e.aliveCount }

// Batch returns the emitter's presentation batch (read-only inspection;
// Draw is the normal submission path).
func (e *Emitter) Batch() *render.Batch { return e.batch }

// Update accumulates spawn credit, writes newly spawned particles into the
// storage buffer, runs the GPU advance pass for dt seconds, then reads the
// advanced state back, expiring particles whose lifetime ran out and
// refreshing every surviving particle's presentation sprite.
func (e *Emitter) Update(dt float64) error {
	if e.active && e.config.EmitRate > 0 {
		e.spawnAccum += e.config.EmitRate * dt
		for e.spawnAccum >= 1 && e.aliveCount < e.config.MaxParticles {
			e.spawnAccum--
			e.spawnOne()
		}
	}
	if e.aliveCount == 0 {
		return nil
	}
	if err := e.writeParams(dt); err != nil {
		return err
	}
	if err := e.worker.Execute(); err != nil {
		return err
	}
	return e.syncAfterAdvance()
}

func (e *Emitter) writeParams(dt float64) error {
	params := make([]byte, paramsBytes)
	putF32At(params, 0, dt)
	putF32At(params, 4, e.config.Gravity.X)
	putF32At(params, 8, e.config.Gravity.Y)
	binary.LittleEndian.PutUint32(params[12:16], uint32(e.aliveCount))
	return e.worker.Write("params", params)
}

// syncAfterAdvance reads the particle buffer back, expiring any particle
// whose life ran negative (swap-with-last compaction, mirroring
// render.Batch.RemoveSprite and the ecs package's archetype-row removal),
// and refreshing the sprite/position of every particle that survives.
func (e *Emitter) syncAfterAdvance() error {
	raw, err := e.worker.Read("particles")
	if err != nil {
		return err
	}

	i := 0
	for i < e.aliveCount {
		off := i * particleStride
		rec := raw[off : off+particleStride]
		if readF32At(rec, 16) < 0 {
			e.expireAt(i, raw)
			continue // a new record just moved into i; re-examine it
		}
		e.updateSprite(i, rec)
		i++
	}

	return e.worker.Write("particles", raw)
}

// expireAt removes the particle at buffer index i: drops its sprite from
// the batch, then swaps the last-alive particle's record/sprite/position
// into i so the buffer and the parallel slices stay aligned.
func (e *Emitter) expireAt(i int, raw []byte) {
	last := e.aliveCount - 1
	e.batch.RemoveSprite(e.sprites[i])
	if i != last {
		copy(raw[i*particleStride:(i+1)*particleStride], raw[last*particleStride:(last+1)*particleStride])
		e.sprites[i] = e.sprites[last]
		e.positions[i] = e.positions[last]
	}
	e.sprites = e.sprites[:last]
	e.positions = e.positions[:last]
	e.aliveCount--
}

// updateSprite refreshes particle i's position and interpolated
// scale/alpha/color from its advanced record, t = elapsed/maxLife.
func (e *Emitter) updateSprite(i int, rec []byte) {
	x := readF32At(rec, 0)
	y := readF32At(rec, 4)
	life := readF32At(rec, 16)
	maxLife := readF32At(rec, 20)
	startScale := readF32At(rec, 24)
	endScale := readF32At(rec, 28)
	startAlpha := readF32At(rec, 32)
	endAlpha := readF32At(rec, 36)

	t := 0.0
	if maxLife > 0 {
		t = 1 - life/maxLife
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}

	e.positions[i] = Vec2{X: x, Y: y}

	s := e.sprites[i]
	scale := lerp(startScale, endScale, t)
	s.Width, s.Height = scale, scale
	s.FrameW, s.FrameH = scale, scale
	s.TintR = lerp(e.config.StartColor.R, e.config.EndColor.R, t)
	s.TintG = lerp(e.config.StartColor.G, e.config.EndColor.G, t)
	s.TintB = lerp(e.config.StartColor.B, e.config.EndColor.B, t)
	s.TintA = lerp(startAlpha, endAlpha, t)
}

func (e *Emitter) spawnOne() {
	speed := e.config.Speed.Random()
	angle := e.config.Angle.Random()
	vx := speed * math.Cos(angle)
	vy := speed * math.Sin(angle)
	life := e.config.Lifetime.Random()
	startScale := e.config.StartScale.Random()
	endScale := e.config.EndScale.Random()
	startAlpha := e.config.StartAlpha.Random()
	endAlpha := e.config.EndAlpha.Random()

	record := make([]byte, particleStride)
	putF32At(record, 0, 0) // x
	putF32At(record, 4, 0) // y
	putF32At(record, 8, vx)
	putF32At(record, 12, vy)
	putF32At(record, 16, life)    // life
	putF32At(record, 20, life)    // maxLife
	putF32At(record, 24, startScale)
	putF32At(record, 28, endScale)
	putF32At(record, 32, startAlpha)
	putF32At(record, 36, endAlpha)

	offset := e.aliveCount * particleStride
	_ = e.worker.WriteSlice("particles", record, offset)

	sprite := &render.Sprite{
		MaterialID: e.config.MaterialID,
		TextureID:  e.config.TextureID,
		Width:      startScale,
		Height:     startScale,
		FrameW:     startScale,
		FrameH:     startScale,
		TintR:      e.config.StartColor.R,
		TintG:      e.config.StartColor.G,
		TintB:      e.config.StartColor.B,
		TintA:      startAlpha,
	}
	e.sprites = append(e.sprites, sprite)
	e.positions = append(e.positions, Vec2{X: 0, Y: 0})
	e.batch.AddSprite(sprite)
	e.aliveCount++
}

// Draw implements render.EmitterPayload: it expands every alive
// particle's sprite into a quad at its simulated position and submits
// them in one coalesced draw call (spec.md §4.9's scene walk "tilemaps,
// primitives, particle emitters").
func (e *Emitter) Draw(target *ebiten.Image, worldTransform render.Affine) {
	e.vertScratch = e.vertScratch[:0]
	e.indexScratch = e.indexScratch[:0]
	for i, s := range e.sprites {
		local := render.Affine{1, 0, 0, 1, e.positions[i].X, e.positions[i].Y}
		t := local
		if !e.config.WorldSpace {
			t = render.Multiply(worldTransform, local)
		}
		e.vertScratch, e.indexScratch = render.AppendSpriteQuad(e.vertScratch, e.indexScratch, s, t)
	}
	render.DrawTriangles32Batch(target, render.WhitePixel(), e.vertScratch, e.indexScratch, ebiten.BlendSourceOver)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Destroy releases the emitter's GPU resources.
func (e *Emitter) Destroy() {
	e.worker.Destroy()
	e.batch.Clear()
}
