package introselect

import (
	"testing"

	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/timerange"
)

func TestLongestNoRangesReturnsDefaults(t *testing.T) {
	lhsID, rhsID := uuid.New(), uuid.New()
	lhsIntro, rhsIntro := Longest(lhsID, nil, rhsID, nil)
	if lhsIntro.Valid() || rhsIntro.Valid() {
		t.Fatal("expected default (invalid) intros when no ranges are given")
	}
}

func TestLongestPicksLongestAndSnapsStart(t *testing.T) {
	lhsID, rhsID := uuid.New(), uuid.New()
	lhsRanges := []timerange.TimeRange{
		{Start: 3, End: 20},  // duration 17, start snaps to 0
		{Start: 50, End: 60}, // duration 10
	}
	rhsRanges := []timerange.TimeRange{
		{Start: 40, End: 45},
		{Start: 100, End: 130}, // duration 30, longest
	}

	lhsIntro, rhsIntro := Longest(lhsID, lhsRanges, rhsID, rhsRanges)

	if lhsIntro.Start != 0 {
		t.Errorf("lhs.Start = %v, want 0 (snapped from 3)", lhsIntro.Start)
	}
	if lhsIntro.End != 20 {
		t.Errorf("lhs.End = %v, want 20", lhsIntro.End)
	}
	if rhsIntro.Start != 100 || rhsIntro.End != 130 {
		t.Errorf("rhs = %+v, want [100, 130]", rhsIntro)
	}
}

func TestLongestIndependentSortCanDivergeShifts(t *testing.T) {
	// Regression test for the documented Open Question: the longest LHS and
	// longest RHS range need not come from the same shift.
	lhsID, rhsID := uuid.New(), uuid.New()
	lhsRanges := []timerange.TimeRange{
		{Start: 0, End: 50}, // shift A: longest on the LHS side
		{Start: 0, End: 10}, // shift B
	}
	rhsRanges := []timerange.TimeRange{
		{Start: 0, End: 5},  // shift A's RHS counterpart: short
		{Start: 0, End: 40}, // shift B's RHS counterpart: longest on the RHS side
	}

	lhsIntro, rhsIntro := Longest(lhsID, lhsRanges, rhsID, rhsRanges)
	if lhsIntro.End != 50 {
		t.Errorf("lhs.End = %v, want 50 (from shift A)", lhsIntro.End)
	}
	if rhsIntro.End != 40 {
		t.Errorf("rhs.End = %v, want 40 (from shift B, a different shift)", rhsIntro.End)
	}
}
