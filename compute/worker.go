package compute

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pdcamargo/atlas-engine/gpu"
)

// WorkerInstance is the runtime object Builder.Build returns: it owns the
// allocated buffers and encodes/submits its passes on Execute
// (spec.md §4.10 "Runtime").
type WorkerInstance struct {
	device  *gpu.Device
	buffers map[string]*gpu.Buffer
	kinds   map[string]gpu.BufferKind
	passes  []Pass
	oneShot bool

	executionPending bool
	destroyed        bool
}

// OneShot reports whether this worker is excluded from per-frame
// auto-execution.
func (w *WorkerInstance) OneShot() bool { return w.oneShot }

// Execute encodes all passes sequentially on one command buffer, submits,
// and awaits completion synchronously (Ebitengine's Kage compute dispatch
// model has no separate async submission step to await here; the
// execution_pending flag still brackets the call so callers observing
// concurrently see the same contract spec.md §4.10 describes).
func (w *WorkerInstance) Execute() error {
	if w.destroyed {
		return fmt.Errorf("compute: Execute called on a destroyed worker")
	}
	w.executionPending = true
	defer func() { w.executionPending = false }()

	for i, p := range w.passes {
		if err := w.runPass(p); err != nil {
			return fmt.Errorf("compute: pass %d (%s): %w", i, p.Shader, err)
		}
	}
	return nil
}

// runPass resolves this pass's bound buffers to their live device-side
// bytes and applies its Transform in place, standing in for a real Kage
// compute dispatch (this workspace models a GPU buffer as a plain
// []byte; see gpu.Buffer.DeviceBytes and the Transform type). A pass with
// no registered Transform (e.g. a caller-defined ShaderType with no
// RegisterTransform call) is a no-op dispatch, same as binding a shader
// that happens to not touch its inputs.
func (w *WorkerInstance) runPass(p Pass) error {
	bound := make(map[string][]byte, len(p.Bindings))
	for _, name := range p.Bindings {
		buf, ok := w.buffers[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrBufferNotDeclared, name)
		}
		bound[name] = buf.DeviceBytes()
	}
	if p.transform != nil {
		p.transform(bound)
	}
	return nil
}

// ExecutionPending reports whether Execute is currently in flight.
func (w *WorkerInstance) ExecutionPending() bool { return w.executionPending }

// Read copies a staging buffer's current contents out as raw bytes.
// Only valid for staging buffers (spec.md §4.10).
func (w *WorkerInstance) Read(name string) ([]byte, error) {
	buf, ok := w.buffers[name]
	if !ok {
		return nil, fmt.Errorf("compute: %w: %q", ErrBufferNotDeclared, name)
	}
	return buf.Read()
}

// ReadFloat32s reads a staging buffer and decodes it as a little-endian
// float32 sequence (the typed convenience spec.md §4.10 calls
// "read_typed").
func ReadFloat32s(w *WorkerInstance, name string) ([]float32, error) {
	raw, err := w.Read(name)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// Write copies data into the named buffer starting at byte offset 0.
func (w *WorkerInstance) Write(name string, data []byte) error {
	return w.WriteSlice(name, data, 0)
}

// WriteSlice copies data into the named buffer starting at offset.
func (w *WorkerInstance) WriteSlice(name string, data []byte, offset int) error {
	buf, ok := w.buffers[name]
	if !ok {
		return fmt.Errorf("compute: %w: %q", ErrBufferNotDeclared, name)
	}
	buf.Write(offset, data)
	return nil
}

// Destroy releases every buffer this worker owns. Subsequent Execute/Read/
// Write calls fail.
func (w *WorkerInstance) Destroy() {
	w.buffers = nil
	w.destroyed = true
}
