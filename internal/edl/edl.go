// Package edl emits MPlayer-style EDL files consumed by players to drive
// the client-side auto-skip (spec §6 EdlManager).
package edl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/episode"
	"github.com/introscan/introscan/internal/intro"
)

// Action selects what updateEDLFiles should do once a season yields
// changes (spec §6 "edlAction").
type Action string

const (
	ActionNone  Action = "none"
	ActionWrite Action = "write"
)

// Manager writes one .edl file per episode alongside its media file. It
// remembers the episode each .edl path belongs to so a filesystem watcher
// can ask it to regenerate a single manually-edited or deleted file, and it
// remembers the last intro it wrote per episode so repeat calls only touch
// disk when a season actually yielded a change.
type Manager struct {
	Action Action

	// RegenerateAll, when true, forces the next UpdateEDLFiles call to
	// rewrite every valid intro's .edl file regardless of whether it
	// changed, then clears itself. Only the episodes passed to that one call
	// are force-rewritten; the flag is not held until every season has been
	// analyzed, so later calls go back to the change check.
	RegenerateAll bool

	mu      sync.Mutex
	byPath  map[string]uuid.UUID
	written map[uuid.UUID]intro.Intro
}

// UpdateEDLFiles writes an EDL file for each episode whose stored intro is
// valid and has changed since the last write (or for every valid intro, if
// RegenerateAll is set). If Action is ActionNone, this is a no-op, matching
// spec §6 ("when not None, trigger EDL emission after a season yields
// changes").
func (m *Manager) UpdateEDLFiles(episodes []episode.Episode, intros map[string]intro.Intro) error {
	if m.Action == ActionNone || m.Action == "" {
		return nil
	}

	m.mu.Lock()
	force := m.RegenerateAll
	m.mu.Unlock()

	for _, ep := range episodes {
		in, ok := intros[ep.ID.String()]
		if !ok || !in.Valid() {
			continue
		}

		m.mu.Lock()
		prev, known := m.written[ep.ID]
		m.mu.Unlock()
		if known && prev == in && !force {
			continue
		}

		if err := writeEDL(ep.FilePath, in); err != nil {
			return fmt.Errorf("write edl for %s: %w", ep.FilePath, err)
		}
		m.mu.Lock()
		if m.byPath == nil {
			m.byPath = make(map[string]uuid.UUID)
		}
		if m.written == nil {
			m.written = make(map[uuid.UUID]intro.Intro)
		}
		m.byPath[edlPathFor(ep.FilePath)] = ep.ID
		m.written[ep.ID] = in
		m.mu.Unlock()
	}

	if force {
		m.mu.Lock()
		m.RegenerateAll = false
		m.mu.Unlock()
	}
	return nil
}

// Regenerate rewrites the .edl file at path from store, if it belongs to a
// known episode and that episode has a valid intro. Called by the
// filesystem watcher when a tracked .edl file is edited or removed out of
// band.
func (m *Manager) Regenerate(path string, store *intro.Store) error {
	m.mu.Lock()
	episodeID, ok := m.byPath[path]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	in, ok := store.Get(episodeID)
	if !ok || !in.Valid() {
		return nil
	}

	mediaPath := strings.TrimSuffix(path, ".edl")
	line := fmt.Sprintf("%.2f\t%.2f\t0\n", in.Start, in.End)
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("regenerate edl for %s: %w", mediaPath, err)
	}
	return nil
}

func writeEDL(mediaPath string, in intro.Intro) error {
	edlPath := edlPathFor(mediaPath)
	line := fmt.Sprintf("%.2f\t%.2f\t0\n", in.Start, in.End)
	return os.WriteFile(edlPath, []byte(line), 0o644)
}

// edlPathFor replaces the media file's extension with .edl, the convention
// MPlayer-compatible players expect.
func edlPathFor(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + ".edl"
}
