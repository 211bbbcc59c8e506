// Package compute implements the declarative compute-worker builder and
// runtime (spec.md §4.10): uniform/storage/staging buffer declarations,
// passes bound to a Kage compute shader, and execute/read/write against
// the device's buffer factory.
package compute

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/pdcamargo/atlas-engine/gpu"
)

// ErrBufferNotDeclared is returned when add_pass references a binding
// name that was never declared via AddUniform/AddStorage/AddStaging.
var ErrBufferNotDeclared = errors.New("compute: binding references an undeclared buffer")

// ErrBufferNotReadable mirrors gpu.ErrBufferNotReadable under this
// package's own error identity, since WorkerInstance.Read is the surface
// spec.md §4.10 names this failure against.
var ErrBufferNotReadable = gpu.ErrBufferNotReadable

// ShaderType names which compute program a pass runs.
type ShaderType string

// Double is the compute shader spec.md §8 Property F names: it doubles
// every float32 packed into its single bound buffer, in place.
const Double ShaderType = "double"

// Transform is the CPU-side stand-in for a compiled compute shader's
// effect on its bound buffers. This workspace models a GPU buffer as a
// plain []byte (gpu.Buffer), so a pass's actual data transformation is
// expressed as a Transform rather than as dispatched Kage compute code;
// RegisterShader still supplies and compiles the Kage source for the
// shader-module cache, but it is the Transform that a pass's Execute
// actually runs. bound maps each of the pass's binding names to that
// buffer's live device-side bytes (gpu.Buffer.DeviceBytes); a Transform
// mutates them directly.
type Transform func(bound map[string][]byte)

// DoubleFloat32 is the Transform registered against ShaderType Double: it
// doubles every little-endian float32 in every bound buffer.
func DoubleFloat32(bound map[string][]byte) {
	for _, data := range bound {
		for i := 0; i+4 <= len(data); i += 4 {
			v := math.Float32frombits(binary.LittleEndian.Uint32(data[i : i+4]))
			binary.LittleEndian.PutUint32(data[i:i+4], math.Float32bits(v*2))
		}
	}
}

// Pass binds a compiled shader to workgroup counts and an ordered list of
// buffer bindings (spec.md §4.10 "add_pass").
type Pass struct {
	Shader     ShaderType
	Workgroups [3]int
	Bindings   []string
	src        []byte
	transform  Transform
}

// Builder declaratively assembles buffers and passes before Build produces
// a runnable WorkerInstance (spec.md §4.10 "Declarative build").
type Builder struct {
	device     *gpu.Device
	buffers    map[string]gpu.BufferKind
	order      []string
	sizes      map[string]int
	passes     []Pass
	shaderSrc  map[ShaderType][]byte
	transforms map[ShaderType]Transform
	oneShot    bool
}

// NewBuilder starts a compute-worker build bound to device. Double is
// pre-registered against DoubleFloat32 so scenario F's pipeline works out
// of the box; callers may override it with their own RegisterTransform.
func NewBuilder(device *gpu.Device) *Builder {
	return &Builder{
		device:     device,
		buffers:    make(map[string]gpu.BufferKind),
		sizes:      make(map[string]int),
		shaderSrc:  make(map[ShaderType][]byte),
		transforms: map[ShaderType]Transform{Double: DoubleFloat32},
	}
}

// AddUniform declares a small read-only buffer, 16-byte aligned
// (spec.md §4.10).
func (b *Builder) AddUniform(name string, byteLen int) *Builder {
	return b.declare(name, byteLen, gpu.BufferUniform)
}

// AddStorage declares a GPU-only read/write buffer.
func (b *Builder) AddStorage(name string, byteLen int) *Builder {
	return b.declare(name, byteLen, gpu.BufferStorage)
}

// AddStaging declares a read/write buffer with a paired CPU-mappable
// readback buffer.
func (b *Builder) AddStaging(name string, byteLen int) *Builder {
	return b.declare(name, byteLen, gpu.BufferStaging)
}

func (b *Builder) declare(name string, byteLen int, kind gpu.BufferKind) *Builder {
	if _, exists := b.buffers[name]; !exists {
		b.order = append(b.order, name)
	}
	b.buffers[name] = kind
	b.sizes[name] = byteLen
	return b
}

// RegisterShader supplies the Kage source for a ShaderType. Build compiles
// it for each pass that uses it, through the device's shader cache, so a
// given source is compiled at most once per device.
func (b *Builder) RegisterShader(t ShaderType, src []byte) *Builder {
	b.shaderSrc[t] = src
	return b
}

// RegisterTransform overrides (or supplies, for a caller-defined
// ShaderType) the Transform a pass of that shader type runs on Execute.
func (b *Builder) RegisterTransform(t ShaderType, fn Transform) *Builder {
	b.transforms[t] = fn
	return b
}

// AddPass declares a compute pass. Bindings must reference already
// declared buffers, in binding-index order; otherwise Build fails with
// ErrBufferNotDeclared. The shader source and transform registered for
// shader (via RegisterShader/RegisterTransform) are resolved at Build
// time, so registration order relative to AddPass doesn't matter.
func (b *Builder) AddPass(shader ShaderType, workgroups [3]int, bindings ...string) *Builder {
	b.passes = append(b.passes, Pass{Shader: shader, Workgroups: workgroups, Bindings: bindings})
	return b
}

// OneShot marks the worker as not auto-executed every frame.
func (b *Builder) OneShot() *Builder {
	b.oneShot = true
	return b
}

// Build validates every pass's bindings and allocates the declared
// buffers, returning a runnable WorkerInstance.
func (b *Builder) Build() (*WorkerInstance, error) {
	passes := make([]Pass, len(b.passes))
	copy(passes, b.passes)
	for i := range passes {
		for _, name := range passes[i].Bindings {
			if _, ok := b.buffers[name]; !ok {
				return nil, fmt.Errorf("compute: pass %s binding %q: %w", passes[i].Shader, name, ErrBufferNotDeclared)
			}
		}
		passes[i].src = b.shaderSrc[passes[i].Shader]
		passes[i].transform = b.transforms[passes[i].Shader]
	}

	w := &WorkerInstance{
		device:  b.device,
		buffers: make(map[string]*gpu.Buffer),
		kinds:   b.buffers,
		passes:  passes,
		oneShot: b.oneShot,
	}
	for _, name := range b.order {
		buf, err := b.device.NewBuffer(b.sizes[name], b.buffers[name])
		if err != nil {
			return nil, fmt.Errorf("compute: allocating buffer %q: %w", name, err)
		}
		w.buffers[name] = buf
	}
	for i, p := range w.passes {
		if p.src == nil {
			continue
		}
		key := fmt.Sprintf("compute:%s", p.Shader)
		if _, err := b.device.Shaders().GetOrCompile(key, p.src); err != nil {
			return nil, fmt.Errorf("compute: compiling pass %d shader %s: %w", i, p.Shader, err)
		}
	}
	return w, nil
}
