// Package introselect implements the longest-range selector (spec §4.5):
// given the parallel range lists produced by pairmatch.Compare for one pair
// of episodes, pick the longest candidate on each side and wrap the results
// as Intro records.
package introselect

import (
	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/timerange"
)

// Longest sorts lhsRanges and rhsRanges independently by descending
// duration and returns the first of each as an Intro.
//
// The two lists are sorted independently, not as a joined pair: if
// different shifts produced the longest LHS range and the longest RHS
// range, the two returned Intros may originate from different shifts. This
// mirrors the reference implementation's behavior exactly (spec §9 Open
// Questions) rather than the arguably-more-correct joint-pair selection.
func Longest(lhsID uuid.UUID, lhsRanges []timerange.TimeRange, rhsID uuid.UUID, rhsRanges []timerange.TimeRange) (intro.Intro, intro.Intro) {
	if len(lhsRanges) == 0 || len(rhsRanges) == 0 {
		return intro.Default(lhsID), intro.Default(rhsID)
	}

	lhsSorted := append([]timerange.TimeRange(nil), lhsRanges...)
	rhsSorted := append([]timerange.TimeRange(nil), rhsRanges...)
	timerange.SortByDurationDesc(lhsSorted)
	timerange.SortByDurationDesc(rhsSorted)

	lhsIntro := intro.Intro{EpisodeID: lhsID, Start: lhsSorted[0].Start, End: lhsSorted[0].End}.SnapStart()
	rhsIntro := intro.Intro{EpisodeID: rhsID, Start: rhsSorted[0].Start, End: rhsSorted[0].End}.SnapStart()

	return lhsIntro, rhsIntro
}
