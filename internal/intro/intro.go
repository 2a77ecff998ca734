// Package intro defines the per-episode Intro result, the per-season working
// set, and the process-wide intro store shared across season runs (spec §3).
package intro

import (
	"sync"

	"github.com/google/uuid"
)

// Intro is a single episode's detected opening-credits window.
type Intro struct {
	EpisodeID uuid.UUID
	Start     float64
	End       float64
}

// Duration returns End - Start.
func (i Intro) Duration() float64 {
	return i.End - i.Start
}

// Valid reports whether this is a real (non-default) intro.
func (i Intro) Valid() bool {
	return i.End > i.Start
}

// Default returns the zero-value intro for episodeID, meaning "no intro
// found" (spec §3: a default intro has both Start and End at zero).
func Default(episodeID uuid.UUID) Intro {
	return Intro{EpisodeID: episodeID}
}

// snapThreshold is the boundary below which a detected start is snapped to 0
// (spec §3/§4.5): true starts within the first few seconds are assumed to be
// the genuine beginning of the intro, not a detection artifact.
const snapThreshold = 5

// SnapStart zeroes Start when it falls within snapThreshold seconds of 0.
func (i Intro) SnapStart() Intro {
	if i.Start <= snapThreshold {
		i.Start = 0
	}
	return i
}

// SeasonIntros is the per-episode best intro found so far within one season
// run. It is local to a single Analyzer.AnalyzeSeason call.
type SeasonIntros map[uuid.UUID]Intro

// Update stores next for episodeID iff it is absent or strictly longer than
// the stored entry. Returns true if the store changed.
func (s SeasonIntros) Update(episodeID uuid.UUID, next Intro) bool {
	current, ok := s[episodeID]
	if !ok || next.Duration() > current.Duration() {
		s[episodeID] = next
		return true
	}
	return false
}

// Store is the process-wide, mutex-guarded map of the latest known intro per
// episode, shared across season runs. Writes are serialized through a single
// mutex so that the merge-and-persist critical section (spec §5) never tears.
type Store struct {
	mu     sync.Mutex
	intros map[uuid.UUID]Intro
}

// NewStore creates an empty global intro store.
func NewStore() *Store {
	return &Store{intros: make(map[uuid.UUID]Intro)}
}

// Merge applies season's intros into the store and, while still holding the
// lock, invokes persist so the canonical store and its backing persistence
// never observe a torn write (spec §5).
func (st *Store) Merge(season SeasonIntros, persist func(map[uuid.UUID]Intro) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, in := range season {
		st.intros[id] = in
	}

	if persist == nil {
		return nil
	}
	return persist(st.intros)
}

// Get returns the currently stored intro for episodeID, if any.
func (st *Store) Get(episodeID uuid.UUID) (Intro, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	in, ok := st.intros[episodeID]
	return in, ok
}

// Snapshot returns a copy of the entire store. Intended for persistence and
// EDL emission, both of which must not race the next Merge.
func (st *Store) Snapshot() map[uuid.UUID]Intro {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[uuid.UUID]Intro, len(st.intros))
	for k, v := range st.intros {
		out[k] = v
	}
	return out
}
