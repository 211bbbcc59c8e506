package gpu

import "testing"

func TestNewBufferUniformRoundsUpToAlignment(t *testing.T) {
	b := newBuffer(1, 0, 10, BufferUniform)
	if b.Len() != 16 {
		t.Errorf("Len() = %d, want 16", b.Len())
	}
}

func TestBufferReadFailsForNonStaging(t *testing.T) {
	b := newBuffer(1, 0, 16, BufferStorage)
	if _, err := b.Read(); err != ErrBufferNotReadable {
		t.Errorf("Read() err = %v, want ErrBufferNotReadable", err)
	}
}

func TestBufferWriteThenReadStaging(t *testing.T) {
	b := newBuffer(1, 0, 4, BufferStaging)
	b.Write(0, []byte{1, 2, 3, 4})
	got, err := b.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Read()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBufferGrowPreservesPrefixAndReportsReallocation(t *testing.T) {
	b := newBuffer(1, 0, 4, BufferStaging)
	b.Write(0, []byte{9, 9, 9, 9})

	grew := b.Grow(8)
	if !grew {
		t.Fatal("Grow(8) = false, want true")
	}
	if b.Len() != 8 {
		t.Errorf("Len() after grow = %d, want 8", b.Len())
	}
	got, _ := b.Read()
	for i := 0; i < 4; i++ {
		if got[i] != 9 {
			t.Errorf("byte %d = %d, want 9 (preserved prefix)", i, got[i])
		}
	}
}

func TestBufferGrowToSmallerOrEqualIsNoop(t *testing.T) {
	b := newBuffer(1, 0, 8, BufferStaging)
	if b.Grow(4) {
		t.Error("Grow(4) on an 8-byte buffer reported reallocation, want false")
	}
	if b.Len() != 8 {
		t.Errorf("Len() = %d, want unchanged 8", b.Len())
	}
}

func TestBufferReissueChangesID(t *testing.T) {
	b := newBuffer(1, 0, 4, BufferStorage)
	before := b.ID()
	b.Reissue()
	if b.ID() == before {
		t.Error("Reissue() did not change the buffer id")
	}
}
