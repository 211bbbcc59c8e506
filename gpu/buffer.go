package gpu

import "errors"

// ErrBufferNotReadable is returned by Buffer.Read when the buffer is not a
// staging buffer (spec.md §4.10 "BufferNotReadable").
var ErrBufferNotReadable = errors.New("gpu: buffer is not readable; only staging buffers support read")

// BufferKind distinguishes the access patterns spec.md §4.10 names.
type BufferKind int

const (
	// BufferUniform is a small read-only buffer (16-byte alignment).
	BufferUniform BufferKind = iota
	// BufferStorage is a GPU-only read/write buffer.
	BufferStorage
	// BufferStaging is read/write plus a paired CPU-mappable readback copy.
	BufferStaging
)

const uniformAlignment = 16

// Buffer is a device-owned byte buffer. It backs both sprite/tilemap
// instance data (spec.md §4.7) and compute-worker uniform/storage/staging
// buffers (spec.md §4.10).
type Buffer struct {
	id   uint64
	gen  uint64
	kind BufferKind
	data []byte
}

func newBuffer(id, gen uint64, byteLen int, kind BufferKind) *Buffer {
	if kind == BufferUniform && byteLen%uniformAlignment != 0 {
		byteLen += uniformAlignment - (byteLen % uniformAlignment)
	}
	return &Buffer{id: id, gen: gen, kind: kind, data: make([]byte, byteLen)}
}

// ID is the buffer's identity; bind groups are keyed off of it
// (spec.md §4.7 "a unique buffer id is issued" on regrowth, §4.9
// "textureId_bufferId").
func (b *Buffer) ID() uint64 { return b.id }

// Len returns the buffer's current byte capacity.
func (b *Buffer) Len() int { return len(b.data) }

// Kind reports the buffer's declared access pattern.
func (b *Buffer) Kind() BufferKind { return b.kind }

// Write copies data into the buffer starting at byte offset.
func (b *Buffer) Write(offset int, data []byte) {
	copy(b.data[offset:], data)
}

// Read returns a copy of the buffer's full contents. Only staging buffers
// may be read (spec.md §4.10).
func (b *Buffer) Read() ([]byte, error) {
	if b.kind != BufferStaging {
		return nil, ErrBufferNotReadable
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// DeviceBytes returns the buffer's live, mutable backing slice, regardless
// of kind. This is the device-side view a compute pass's shader runs
// against while executing (this workspace models GPU buffer storage as
// plain bytes); it is distinct from Read, which gates CPU-side readback to
// staging buffers only. Callers that mutate the returned slice mutate the
// buffer itself.
func (b *Buffer) DeviceBytes() []byte {
	return b.data
}

// Grow reallocates the buffer to at least byteLen, preserving the prefix of
// existing data. Returns true if the underlying allocation changed (and
// thus the buffer's id should be treated as reissued by the caller, per
// spec.md §4.7's "unique buffer id is issued" on regrowth).
func (b *Buffer) Grow(byteLen int) bool {
	if byteLen <= len(b.data) {
		return false
	}
	next := make([]byte, byteLen)
	copy(next, b.data)
	b.data = next
	return true
}

// Reissue assigns the buffer a fresh identity, used by callers after Grow
// reports a reallocation so dependent bind groups invalidate naturally.
func (b *Buffer) Reissue() {
	b.id = nextResourceID()
}
