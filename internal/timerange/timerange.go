// Package timerange implements the TimeRange value type and the
// longest-contiguous-run search used by the pair comparator.
package timerange

import (
	"math"
	"sort"
)

// TimeRange is a half-open [Start, End) span measured in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (t TimeRange) Duration() float64 {
	return t.End - t.Start
}

// Intersects reports whether t and other overlap as open intervals.
func (t TimeRange) Intersects(other TimeRange) bool {
	return t.Start < other.End && other.Start < t.End
}

// SortByDurationDesc sorts ranges longest-first in place.
func SortByDurationDesc(ranges []TimeRange) {
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].Duration() > ranges[j].Duration()
	})
}

// FindContiguous walks a sorted-ascending list of timestamps and returns the
// longest run where no two consecutive timestamps are farther apart than
// maxTimeSkip. The caller is expected to have appended a +Inf sentinel so the
// final run closes; FindContiguous does this itself if the caller didn't,
// since the sentinel technique is an implementation detail of the walk, not
// something every caller should have to remember.
func FindContiguous(times []float64, maxTimeSkip float64) (TimeRange, bool) {
	if len(times) < 2 {
		return TimeRange{}, false
	}

	// Work on a copy with the sentinel appended so the final run always closes.
	padded := make([]float64, len(times)+1)
	copy(padded, times)
	padded[len(times)] = math.Inf(1)

	var best TimeRange
	haveBest := false

	runStart := padded[0]
	runEnd := padded[0]

	for _, t := range padded[1:] {
		if t-runEnd <= maxTimeSkip {
			runEnd = t
			continue
		}
		run := TimeRange{Start: runStart, End: runEnd}
		if !haveBest || run.Duration() > best.Duration() {
			best = run
			haveBest = true
		}
		runStart = t
		runEnd = t
	}

	return best, haveBest
}
