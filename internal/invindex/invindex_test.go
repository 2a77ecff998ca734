package invindex

import "testing"

func TestBuildFirstOccurrenceWins(t *testing.T) {
	stream := []uint32{10, 20, 10, 30, 20}
	idx := Build(stream)

	if got := idx[10]; got != 0 {
		t.Errorf("idx[10] = %d, want 0 (first occurrence)", got)
	}
	if got := idx[20]; got != 1 {
		t.Errorf("idx[20] = %d, want 1 (first occurrence)", got)
	}
	if got := idx[30]; got != 3 {
		t.Errorf("idx[30] = %d, want 3", got)
	}
	if len(idx) != 3 {
		t.Errorf("len(idx) = %d, want 3 distinct values", len(idx))
	}
}

func TestBuildEmptyStream(t *testing.T) {
	idx := Build(nil)
	if len(idx) != 0 {
		t.Errorf("expected empty index for empty stream, got %d entries", len(idx))
	}
}
