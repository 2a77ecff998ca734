// Package pairmatch implements the pair comparator (spec §4.4): candidate
// shift discovery over two inverted indexes, per-shift XOR scanning against
// a Hamming-distance threshold, and the end-trim heuristic applied to
// accepted contiguous ranges.
package pairmatch

import (
	"github.com/introscan/introscan/internal/bitutil"
	"github.com/introscan/introscan/internal/invindex"
	"github.com/introscan/introscan/internal/timerange"
)

// SamplesToSeconds is the fixed fingerprint sample rate (spec §3).
const SamplesToSeconds = 0.128

// AnalysisParams bundles the tunable analysis knobs as an immutable value,
// per spec §9's directive to pass params explicitly rather than keep them as
// process-global mutable state.
type AnalysisParams struct {
	MaximumFingerprintPointDifferences int
	InvertedIndexShift                 int
	MaximumTimeSkip                    float64
	MinimumIntroDuration               float64
	MaximumIntroDuration               float64
}

// DefaultParams matches the spec §6 configuration defaults.
func DefaultParams() AnalysisParams {
	return AnalysisParams{
		MaximumFingerprintPointDifferences: 6,
		InvertedIndexShift:                 2,
		MaximumTimeSkip:                    3.5,
		MinimumIntroDuration:               15,
		MaximumIntroDuration:               1e9, // effectively unbounded unless configured
	}
}

// Compare enumerates candidate shifts between lhs and rhs, XOR-scans each
// shift, and returns parallel lists of accepted TimeRange pairs: ranges[i] in
// lhsRanges corresponds to ranges[i] in rhsRanges.
func Compare(lhs, rhs []uint32, params AnalysisParams) (lhsRanges, rhsRanges []timerange.TimeRange) {
	if len(lhs) == 0 || len(rhs) == 0 {
		return nil, nil
	}

	lhsIdx := invindex.Build(lhs)
	rhsIdx := invindex.Build(rhs)

	shifts := candidateShifts(lhsIdx, rhsIdx, params.InvertedIndexShift)

	for shift := range shifts {
		lhsRange, rhsRange, ok := scanShift(lhs, rhs, shift, params)
		if !ok {
			continue
		}
		lhsRanges = append(lhsRanges, lhsRange)
		rhsRanges = append(rhsRanges, rhsRange)
	}

	return lhsRanges, rhsRanges
}

// candidateShifts builds the deduplicated set of integer shifts worth
// scanning: for every value in the LHS index, probe the RHS index across a
// small neighborhood of the value itself (spec §4.4 step 1).
func candidateShifts(lhsIdx, rhsIdx invindex.Index, shiftRadius int) map[int]struct{} {
	shifts := make(map[int]struct{})
	for v, lhsOffset := range lhsIdx {
		base := int64(v)
		for d := -int64(shiftRadius); d <= int64(shiftRadius); d++ {
			probe := base + d
			if probe < 0 || probe > int64(^uint32(0)) {
				continue
			}
			rhsOffset, ok := rhsIdx[uint32(probe)]
			if !ok {
				continue
			}
			delta := int(int64(rhsOffset) - int64(lhsOffset))
			shifts[delta] = struct{}{}
		}
	}
	return shifts
}

// scanShift performs the XOR scan at one shift and, if it yields a
// sufficiently long contiguous run, applies the end-trim heuristic.
func scanShift(lhs, rhs []uint32, shift int, params AnalysisParams) (timerange.TimeRange, timerange.TimeRange, bool) {
	leftOffset := 0
	rightOffset := 0
	if shift < 0 {
		leftOffset = -shift
	} else if shift > 0 {
		rightOffset = shift
	}

	upper := minInt(len(lhs), len(rhs)) - absInt(shift)
	if upper <= 0 {
		return timerange.TimeRange{}, timerange.TimeRange{}, false
	}

	var lhsTimes, rhsTimes []float64
	for i := 0; i < upper; i++ {
		li := i + leftOffset
		ri := i + rightOffset
		diff := lhs[li] ^ rhs[ri]
		if bitutil.Popcount(diff) > params.MaximumFingerprintPointDifferences {
			continue
		}
		lhsTimes = append(lhsTimes, float64(li)*SamplesToSeconds)
		rhsTimes = append(rhsTimes, float64(ri)*SamplesToSeconds)
	}

	lhsRun, lhsOK := timerange.FindContiguous(lhsTimes, params.MaximumTimeSkip)
	if !lhsOK || lhsRun.Duration() < params.MinimumIntroDuration {
		return timerange.TimeRange{}, timerange.TimeRange{}, false
	}
	rhsRun, rhsOK := timerange.FindContiguous(rhsTimes, params.MaximumTimeSkip)
	if !rhsOK {
		// Built in lockstep with lhsTimes; absence here means the inputs
		// were inconsistent, treat as no match rather than panic.
		return timerange.TimeRange{}, timerange.TimeRange{}, false
	}

	trim := endTrim(lhsRun.Duration(), params.MaximumTimeSkip)
	lhsRun.End -= trim
	rhsRun.End -= trim

	return lhsRun, rhsRun, true
}

// endTrim implements the end-trim heuristic: FindContiguous extends a run up
// to a gap, so the true boundary lies slightly before the extended end.
func endTrim(duration, maxTimeSkip float64) float64 {
	switch {
	case duration >= 90:
		return 2 * maxTimeSkip
	case duration >= 30:
		return maxTimeSkip
	default:
		return 0
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
