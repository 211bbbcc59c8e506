package compute

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/pdcamargo/atlas-engine/gpu"
)

func newTestDevice() *gpu.Device {
	return gpu.New(nil)
}

func TestBuildFailsForUndeclaredBinding(t *testing.T) {
	b := NewBuilder(newTestDevice())
	b.AddStorage("positions", 64)
	b.AddPass("advance", [3]int{1, 1, 1}, "positions", "velocities")

	_, err := b.Build()
	if !errors.Is(err, ErrBufferNotDeclared) {
		t.Errorf("Build() err = %v, want ErrBufferNotDeclared", err)
	}
}

func TestBuildSucceedsWhenAllBindingsDeclared(t *testing.T) {
	b := NewBuilder(newTestDevice())
	b.AddUniform("params", 16)
	b.AddStorage("positions", 64)
	b.AddPass("advance", [3]int{1, 1, 1}, "params", "positions")

	w, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if w == nil {
		t.Fatal("Build() returned a nil worker")
	}
}

func TestExecuteRunsWithoutErrorForValidPasses(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).
		AddStorage("data", 32).
		AddPass("noop", [3]int{1, 1, 1}, "data").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := w.Execute(); err != nil {
		t.Errorf("Execute: %v", err)
	}
	if w.ExecutionPending() {
		t.Error("ExecutionPending() should be false once Execute returns")
	}
}

func TestReadFailsForNonStagingBuffer(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).
		AddStorage("data", 32).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := w.Read("data"); !errors.Is(err, ErrBufferNotReadable) {
		t.Errorf("Read() err = %v, want ErrBufferNotReadable", err)
	}
}

func TestWriteThenReadRoundTripOnStagingBuffer(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).
		AddStaging("out", 16).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := w.Write("out", []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := w.Read("out")
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

func TestWriteToUndeclaredBufferFails(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).AddStorage("data", 32).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := w.Write("missing", []byte{1}); !errors.Is(err, ErrBufferNotDeclared) {
		t.Errorf("Write() err = %v, want ErrBufferNotDeclared", err)
	}
}

func TestDestroyPreventsFurtherExecute(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).AddStorage("data", 32).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	w.Destroy()
	if err := w.Execute(); err == nil {
		t.Error("Execute should fail after Destroy")
	}
}

// TestDoublePassDoublesStagingBufferAcrossExecutions exercises spec.md §8
// scenario F: addStaging("data",[1..8]) -> addPass(Double,[1,1,1],["data"]);
// execute once yields [2,4,...,16], execute again yields [4,8,...,32].
func TestDoublePassDoublesStagingBufferAcrossExecutions(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).
		AddStaging("data", 8*4).
		AddPass(Double, [3]int{1, 1, 1}, "data").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	initial := make([]byte, 32)
	for i := 0; i < 8; i++ {
		putFloat32(initial, i*4, float32(i+1))
	}
	if err := w.Write("data", initial); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := w.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, err := ReadFloat32s(w, "data")
	if err != nil {
		t.Fatalf("ReadFloat32s: %v", err)
	}
	want := []float32{2, 4, 6, 8, 10, 12, 14, 16}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after first Execute, [%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if err := w.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, err = ReadFloat32s(w, "data")
	if err != nil {
		t.Fatalf("ReadFloat32s: %v", err)
	}
	want = []float32{4, 8, 12, 16, 20, 24, 28, 32}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after second Execute, [%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func putFloat32(dst []byte, offset int, v float32) {
	bits := math.Float32bits(v)
	binary.LittleEndian.PutUint32(dst[offset:], bits)
}

func TestOneShotFlagIsRecorded(t *testing.T) {
	w, err := NewBuilder(newTestDevice()).AddStorage("data", 8).OneShot().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !w.OneShot() {
		t.Error("OneShot() = false, want true")
	}
}
