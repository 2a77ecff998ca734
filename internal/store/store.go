// Package store implements the PersistentStore collaborator (spec §6):
// durable storage for detected intros, grounded on CineVault's
// repository.SegmentRepository upsert-on-conflict pattern.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/introscan/introscan/internal/intro"
)

// IntroStore persists the process-wide intro map to Postgres.
type IntroStore struct {
	db *sql.DB
}

// New creates an IntroStore backed by db.
func New(db *sql.DB) *IntroStore {
	return &IntroStore{db: db}
}

// EnsureSchema creates the backing table if it does not already exist.
func (s *IntroStore) EnsureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS episode_intros (
		episode_id UUID PRIMARY KEY,
		intro_start DOUBLE PRECISION NOT NULL,
		intro_end DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveAll upserts every intro in all, matching spec §6's
// "PersistentStore.saveTimestamps()" collaborator call. Intended to be
// called from inside intro.Store.Merge's lock so the write can never tear
// against a concurrent season merge.
func (s *IntroStore) SaveAll(all map[uuid.UUID]intro.Intro) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO episode_intros (episode_id, intro_start, intro_end)
		VALUES ($1, $2, $3)
		ON CONFLICT (episode_id) DO UPDATE SET
			intro_start = EXCLUDED.intro_start,
			intro_end = EXCLUDED.intro_end,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for id, in := range all {
		if _, err := stmt.Exec(id, in.Start, in.End); err != nil {
			return fmt.Errorf("upsert intro %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// GetAll loads every stored intro, used to seed intro.Store at startup.
func (s *IntroStore) GetAll() (map[uuid.UUID]intro.Intro, error) {
	rows, err := s.db.Query(`SELECT episode_id, intro_start, intro_end FROM episode_intros`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	all := make(map[uuid.UUID]intro.Intro)
	for rows.Next() {
		var id uuid.UUID
		var in intro.Intro
		if err := rows.Scan(&id, &in.Start, &in.End); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		in.EpisodeID = id
		all[id] = in
	}
	return all, rows.Err()
}
