package render

import "testing"

func TestNewBatchFirstUploadIsFullReupload(t *testing.T) {
	b := NewBatch(BatchKey{MaterialID: "sprite", TextureID: 1})
	b.AddSprite(&Sprite{})
	ranges := b.GetDirtyRanges()
	if !isFullReupload(ranges) {
		t.Errorf("GetDirtyRanges() = %v, want FullReupload on first upload", ranges)
	}
}

func TestMarkUploadedThenSingleAddProducesOneRange(t *testing.T) {
	b := NewBatch(BatchKey{})
	for i := 0; i < 5; i++ {
		b.AddSprite(&Sprite{})
	}
	b.MarkUploaded()

	extra := &Sprite{}
	b.AddSprite(extra)
	ranges := b.GetDirtyRanges()
	want := []DirtyRange{{Start: 5, End: 6}}
	if len(ranges) != 1 || ranges[0] != want[0] {
		t.Errorf("GetDirtyRanges() = %v, want %v", ranges, want)
	}
}

func TestDirtyFractionAbove80PercentForcesFullReupload(t *testing.T) {
	b := NewBatch(BatchKey{})
	sprites := make([]*Sprite, 10)
	for i := range sprites {
		sprites[i] = &Sprite{}
		b.AddSprite(sprites[i])
	}
	b.MarkUploaded()

	for i := 0; i < 9; i++ { // rows 0-8 get moved sprites, row 9 is re-added: 10/10 dirty > 80%
		b.RemoveSprite(sprites[i])
		b.AddSprite(&Sprite{})
	}
	ranges := b.GetDirtyRanges()
	if !isFullReupload(ranges) {
		t.Errorf("GetDirtyRanges() = %v, want FullReupload above 80%% dirty", ranges)
	}
}

func TestRemoveSpriteSwapsWithLastAndMarksMovedRowDirty(t *testing.T) {
	b := NewBatch(BatchKey{})
	s1, s2, s3 := &Sprite{}, &Sprite{}, &Sprite{}
	b.AddSprite(s1)
	b.AddSprite(s2)
	b.AddSprite(s3)
	b.MarkUploaded()

	b.RemoveSprite(s1) // s3 (last) swaps into row 0

	if b.HasSprite(s1) {
		t.Error("HasSprite(s1) = true after RemoveSprite")
	}
	if !b.HasSprite(s3) {
		t.Error("HasSprite(s3) = false, should still be a member")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	ranges := b.GetDirtyRanges()
	if isFullReupload(ranges) {
		t.Fatal("expected a partial range, not full reupload")
	}
	found := false
	for _, r := range ranges {
		if r.Start == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("GetDirtyRanges() = %v, want row 0 (where s3 moved) marked dirty", ranges)
	}
}

func TestHasSpriteFalseForNeverAdded(t *testing.T) {
	b := NewBatch(BatchKey{})
	if b.HasSprite(&Sprite{}) {
		t.Error("HasSprite on an unknown sprite = true, want false")
	}
}

func TestClearEmptiesBatch(t *testing.T) {
	b := NewBatch(BatchKey{})
	b.AddSprite(&Sprite{})
	b.AddSprite(&Sprite{})
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", b.Len())
	}
}

func TestGetOrCreateInstanceBufferGrowsAndReissuesID(t *testing.T) {
	device := newTestDevice()
	b := NewBatch(BatchKey{})
	for i := 0; i < 2; i++ {
		b.AddSprite(&Sprite{})
	}

	buf1, reissued1, err := b.GetOrCreateInstanceBuffer(device)
	if err != nil {
		t.Fatalf("GetOrCreateInstanceBuffer: %v", err)
	}
	if !reissued1 {
		t.Error("first call should report reissued = true (buffer created)")
	}
	firstID := buf1.ID()

	// Grow past the current capacity.
	for i := 0; i < 1000; i++ {
		b.AddSprite(&Sprite{})
	}
	buf2, reissued2, err := b.GetOrCreateInstanceBuffer(device)
	if err != nil {
		t.Fatalf("GetOrCreateInstanceBuffer: %v", err)
	}
	if !reissued2 {
		t.Error("growth should reissue the buffer id")
	}
	if buf2.ID() == firstID {
		t.Error("buffer id unchanged after growth")
	}
}
