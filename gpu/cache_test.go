package gpu

import "testing"

func TestBindGroupCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newBindGroupCache(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("\"a\" should have been evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %v, %v; want 2, true", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %v, %v; want 3, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestBindGroupCacheGetPromotesToMostRecentlyUsed(t *testing.T) {
	c := newBindGroupCache(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // promote a; b is now LRU
	c.Put("c", 3) // evicts "b"

	if _, ok := c.Get("b"); ok {
		t.Error("\"b\" should have been evicted after \"a\" was promoted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("\"a\" should still be present")
	}
}

func TestDeviceInvalidateClearsCachesAndBumpsGeneration(t *testing.T) {
	d := New(nil)
	d.BindGroups().Put("k", "v")
	d.Invalidate()

	if !d.Lost() {
		t.Error("Lost() = false after Invalidate")
	}
	if d.BindGroups().Len() != 0 {
		t.Error("bind group cache not cleared after Invalidate")
	}
	if d.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", d.Generation())
	}
}

func TestDeviceNewBufferFailsAfterInvalidate(t *testing.T) {
	d := New(nil)
	d.Invalidate()
	if _, err := d.NewBuffer(16, BufferStorage); err != ErrDeviceLost {
		t.Errorf("NewBuffer err = %v, want ErrDeviceLost", err)
	}
}
