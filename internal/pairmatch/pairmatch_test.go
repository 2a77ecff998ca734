package pairmatch

import (
	"math/rand"
	"testing"

	"github.com/introscan/introscan/internal/timerange"
)

func TestCompareIdenticalStreams(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	stream := make([]uint32, 1000)
	for i := range stream {
		stream[i] = r.Uint32()
	}

	params := DefaultParams()
	lhsRanges, rhsRanges := Compare(stream, stream, params)

	best := bestPair(lhsRanges, rhsRanges)
	if best == nil {
		t.Fatal("expected at least one matching shift for identical streams")
	}

	wantEnd := 999 * SamplesToSeconds
	trim := endTrim(wantEnd, params.MaximumTimeSkip)
	wantEnd -= trim

	if best.lhs.Start != 0 {
		t.Errorf("lhs.Start = %v, want 0", best.lhs.Start)
	}
	if !almostEqual(best.lhs.End, wantEnd) {
		t.Errorf("lhs.End = %v, want ~%v", best.lhs.End, wantEnd)
	}
	if best.lhs != best.rhs {
		t.Errorf("self-comparison should produce identical lhs/rhs ranges: %+v vs %+v", best.lhs, best.rhs)
	}
}

func TestCompareDisjointStreamsYieldNoLongMatch(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	lhs := make([]uint32, 500)
	rhs := make([]uint32, 500)
	for i := range lhs {
		lhs[i] = r.Uint32()
	}
	for i := range rhs {
		rhs[i] = r.Uint32() | 0x1 // distinct pool, collisions astronomically unlikely
	}

	lhsRanges, _ := Compare(lhs, rhs, DefaultParams())
	for _, rg := range lhsRanges {
		if rg.Duration() >= DefaultParams().MinimumIntroDuration {
			t.Fatalf("expected no long contiguous match between disjoint streams, got %+v", rg)
		}
	}
}

func TestCompareSharedOpeningInsideLongerStreams(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	lhs := randomStream(r, 2000)
	rhs := randomStream(r, 2000)

	shared := randomStream(r, 235) // 235 * 0.128 = 30.08s
	copy(lhs[100:], shared)
	copy(rhs[300:], shared)

	params := DefaultParams()
	lhsRanges, rhsRanges := Compare(lhs, rhs, params)

	best := bestPair(lhsRanges, rhsRanges)
	if best == nil {
		t.Fatal("expected a shared-opening match to be recovered")
	}

	wantLhsStart := 100 * SamplesToSeconds
	wantRhsStart := 300 * SamplesToSeconds
	if !almostEqual(best.lhs.Start, wantLhsStart) {
		t.Errorf("lhs.Start = %v, want ~%v", best.lhs.Start, wantLhsStart)
	}
	if !almostEqual(best.rhs.Start, wantRhsStart) {
		t.Errorf("rhs.Start = %v, want ~%v", best.rhs.Start, wantRhsStart)
	}
}

func TestCompareShortOpeningAtStartSnapsNoTrim(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	shared := randomStream(r, 122) // ~15.6s
	lhs := append(append([]uint32{}, shared...), randomStream(r, 400)...)
	rhs := append(append([]uint32{}, shared...), randomStream(r, 400)...)

	params := DefaultParams()
	lhsRanges, rhsRanges := Compare(lhs, rhs, params)

	best := bestPair(lhsRanges, rhsRanges)
	if best == nil {
		t.Fatal("expected a match for the shared opening")
	}
	if best.lhs.Start != 0 {
		t.Errorf("lhs.Start = %v, want 0", best.lhs.Start)
	}
	// duration < 30s, so no end-trim should have been applied.
	wantEnd := 121 * SamplesToSeconds
	if !almostEqual(best.lhs.End, wantEnd) {
		t.Errorf("lhs.End = %v, want ~%v (no trim under 30s)", best.lhs.End, wantEnd)
	}
}

func TestCompareBitNoiseWithinThresholdStillMatches(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	lhs := randomStream(r, 500)
	rhs := append([]uint32{}, lhs...)

	// Flip 5 bits in each of a 30s shared window (>=235 elements) on rhs.
	for i := 50; i < 50+235; i++ {
		rhs[i] = flipBits(rhs[i], 5, r)
	}

	params := DefaultParams()
	lhsRanges, _ := Compare(lhs, rhs, params)
	if len(lhsRanges) == 0 {
		t.Fatal("expected contiguity to tolerate <=6 bit differences per element")
	}
}

func TestCompareBitNoiseAboveThresholdYieldsDefault(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	lhs := randomStream(r, 500)
	// Only the 30s window is shared; outside it rhs is unrelated, so the
	// noisy window is the only place a match could come from.
	rhs := randomStream(r, 500)
	copy(rhs[50:50+235], lhs[50:50+235])

	for i := 50; i < 50+235; i++ {
		rhs[i] = flipBits(rhs[i], 7, r)
	}

	params := DefaultParams()
	lhsRanges, _ := Compare(lhs, rhs, params)
	for _, rg := range lhsRanges {
		if rg.Duration() >= params.MinimumIntroDuration {
			t.Fatalf("expected no surviving match once differences exceed the threshold, got %+v", rg)
		}
	}
}

func TestCompareEmptyStreamsYieldNoRanges(t *testing.T) {
	lhsRanges, rhsRanges := Compare(nil, []uint32{1, 2, 3}, DefaultParams())
	if lhsRanges != nil || rhsRanges != nil {
		t.Fatalf("expected no ranges for an empty stream, got %v / %v", lhsRanges, rhsRanges)
	}
}

// ──────────────────── helpers ────────────────────

type pair struct {
	lhs timerange.TimeRange
	rhs timerange.TimeRange
}

func bestPair(lhsRanges, rhsRanges []timerange.TimeRange) *pair {
	var best *pair
	for i := range lhsRanges {
		if best == nil || lhsRanges[i].Duration() > best.lhs.Duration() {
			best = &pair{lhs: lhsRanges[i], rhs: rhsRanges[i]}
		}
	}
	return best
}

func randomStream(r *rand.Rand, n int) []uint32 {
	s := make([]uint32, n)
	for i := range s {
		s[i] = r.Uint32()
	}
	return s
}

func flipBits(v uint32, count int, r *rand.Rand) uint32 {
	used := make(map[int]bool, count)
	for len(used) < count {
		pos := r.Intn(32)
		if used[pos] {
			continue
		}
		used[pos] = true
		v ^= uint32(1) << uint(pos)
	}
	return v
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
