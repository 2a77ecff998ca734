// Package silence implements the silence-based end-boundary adjuster
// (spec §4.7): it shortens an intro's end to the start of the nearest
// qualifying silent region so that the auto-skip boundary lands on natural
// audio silence instead of clipping dialogue.
package silence

import (
	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/timerange"
)

// windowBeforeEnd is the width of the "window of interest" scanned for a
// qualifying silence immediately preceding introEnd (spec §4.7).
const windowBeforeEnd = 15

// Adjust walks silences (expected in ascending-start order from the audio
// tool) and overwrites in.End with the start of the first silence that:
//   - intersects [in.End-15, in.End],
//   - has duration >= minDuration,
//   - starts at or after in.Start.
//
// If no silence qualifies, in is returned unchanged.
func Adjust(in intro.Intro, silences []timerange.TimeRange, minDuration float64) intro.Intro {
	if !in.Valid() {
		return in
	}

	window := timerange.TimeRange{Start: in.End - windowBeforeEnd, End: in.End}

	for _, s := range silences {
		if s.Duration() < minDuration {
			continue
		}
		if s.Start < in.Start {
			continue
		}
		if !s.Intersects(window) {
			continue
		}
		in.End = s.Start
		return in
	}

	return in
}
