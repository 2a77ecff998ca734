package season

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/episode"
	"github.com/introscan/introscan/internal/intro"
	"github.com/introscan/introscan/internal/pairmatch"
	"github.com/introscan/introscan/internal/timerange"
)

// fakeTool serves pre-computed fingerprints and silences from memory so
// tests never shell out to ffmpeg.
type fakeTool struct {
	fingerprints map[string][]uint32
	silences     map[string][]timerange.TimeRange
	failPaths    map[string]bool
}

func newFakeTool() *fakeTool {
	return &fakeTool{
		fingerprints: make(map[string][]uint32),
		silences:     make(map[string][]timerange.TimeRange),
		failPaths:    make(map[string]bool),
	}
}

func (f *fakeTool) Fingerprint(ctx context.Context, filePath string) ([]uint32, error) {
	if f.failPaths[filePath] {
		return nil, &fingerprintErrStub{filePath}
	}
	return f.fingerprints[filePath], nil
}

func (f *fakeTool) DetectSilence(ctx context.Context, filePath string, durationSeconds float64) ([]timerange.TimeRange, error) {
	return f.silences[filePath], nil
}

type fingerprintErrStub struct{ path string }

func (e *fingerprintErrStub) Error() string { return "fingerprint error: " + e.path }

func newConfig() Config {
	return Config{
		Params:                      pairmatch.DefaultParams(),
		SilenceDetectionMinDuration: 0.33,
		AnalyzeSeasonZero:           false,
	}
}

func newAnalyzer(tool *fakeTool) *Analyzer {
	return &Analyzer{
		Tool:   tool,
		Store:  intro.NewStore(),
		Config: newConfig(),
	}
}

func TestAnalyzeSeasonSingleEpisodeNoAnalysis(t *testing.T) {
	tool := newFakeTool()
	a := newAnalyzer(tool)
	ep := episode.Episode{ID: uuid.New(), FilePath: "/ep1.mkv"}

	processed, err := a.AnalyzeSeason(context.Background(), "Show", 1, []episode.Episode{ep})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	if _, ok := a.Store.Get(ep.ID); ok {
		t.Fatal("single-episode season must not produce a stored intro")
	}
}

func TestAnalyzeSeasonZeroSkippedByDefault(t *testing.T) {
	tool := newFakeTool()
	a := newAnalyzer(tool)
	episodes := []episode.Episode{{ID: uuid.New()}, {ID: uuid.New()}}

	processed, err := a.AnalyzeSeason(context.Background(), "Show", 0, episodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 0 {
		t.Fatalf("processed = %d, want 0 for skipped season zero", processed)
	}
}

func TestAnalyzeSeasonZeroAnalyzedWhenEnabled(t *testing.T) {
	tool := newFakeTool()
	r := rand.New(rand.NewSource(42))
	shared := randomStream(r, 235) // 30.08s shared opening

	ep1 := episode.Episode{ID: uuid.New(), FilePath: "/s0e1.mkv"}
	ep2 := episode.Episode{ID: uuid.New(), FilePath: "/s0e2.mkv"}
	tool.fingerprints[ep1.FilePath] = append(shared, randomStream(r, 200)...)
	tool.fingerprints[ep2.FilePath] = append(append([]uint32{}, shared...), randomStream(r, 200)...)

	a := newAnalyzer(tool)
	a.Config.AnalyzeSeasonZero = true

	processed, err := a.AnalyzeSeason(context.Background(), "Show", 0, []episode.Episode{ep1, ep2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
	if _, ok := a.Store.Get(ep1.ID); !ok {
		t.Fatal("expected an intro to be stored once season zero analysis is enabled")
	}
}

func TestAnalyzeSeasonFindsSharedIntroAndMerges(t *testing.T) {
	tool := newFakeTool()
	r := rand.New(rand.NewSource(7))
	shared := randomStream(r, 500) // ~64s shared opening, triggers the >=30s trim

	episodes := make([]episode.Episode, 3)
	for i := range episodes {
		ep := episode.Episode{ID: uuid.New(), FilePath: pathFor(i)}
		episodes[i] = ep
		tool.fingerprints[ep.FilePath] = append(append([]uint32{}, shared...), randomStream(r, 300)...)
	}

	a := newAnalyzer(tool)
	processed, err := a.AnalyzeSeason(context.Background(), "Show", 1, episodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != len(episodes) {
		t.Fatalf("processed = %d, want %d", processed, len(episodes))
	}

	for _, ep := range episodes {
		in, ok := a.Store.Get(ep.ID)
		if !ok {
			t.Fatalf("expected a stored intro for %s", ep.ID)
		}
		if !in.Valid() {
			t.Fatalf("stored intro for %s is not valid: %+v", ep.ID, in)
		}
		if in.Start != 0 {
			t.Errorf("Start = %v, want 0 (shared opening starts at t=0)", in.Start)
		}
	}
}

func TestAnalyzeSeasonEmptyFingerprintsYieldDefaults(t *testing.T) {
	tool := newFakeTool()
	episodes := []episode.Episode{
		{ID: uuid.New(), FilePath: "/a.mkv"},
		{ID: uuid.New(), FilePath: "/b.mkv"},
	}
	// no fingerprints registered: both resolve to nil/empty streams

	a := newAnalyzer(tool)
	processed, err := a.AnalyzeSeason(context.Background(), "Show", 1, episodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
	for _, ep := range episodes {
		if _, ok := a.Store.Get(ep.ID); ok {
			t.Fatalf("expected no stored intro for %s with empty fingerprints", ep.ID)
		}
	}
}

func TestAnalyzeSeasonFingerprintErrorSubstitutesEmptyStream(t *testing.T) {
	tool := newFakeTool()
	episodes := []episode.Episode{
		{ID: uuid.New(), FilePath: "/broken.mkv"},
		{ID: uuid.New(), FilePath: "/ok.mkv"},
	}
	tool.failPaths["/broken.mkv"] = true
	tool.fingerprints["/ok.mkv"] = randomStream(rand.New(rand.NewSource(1)), 500)

	a := newAnalyzer(tool)
	processed, err := a.AnalyzeSeason(context.Background(), "Show", 1, episodes)
	if err != nil {
		t.Fatalf("expected per-episode fingerprint errors to be absorbed, got %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
}

func TestAnalyzeSeasonCancellationReturnsSeasonSizeWithoutError(t *testing.T) {
	tool := newFakeTool()
	episodes := []episode.Episode{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAnalyzer(tool)
	processed, err := a.AnalyzeSeason(ctx, "Show", 1, episodes)
	if err != nil {
		t.Fatalf("cancellation must not surface as an error: %v", err)
	}
	if processed != len(episodes) {
		t.Fatalf("processed = %d, want %d", processed, len(episodes))
	}
}

func pathFor(i int) string {
	return "/ep" + string(rune('a'+i)) + ".mkv"
}

func randomStream(r *rand.Rand, n int) []uint32 {
	s := make([]uint32, n)
	for i := range s {
		s[i] = r.Uint32()
	}
	return s
}
