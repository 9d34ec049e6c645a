// Package draft is the local ephemeral side of the persistence
// gateway: a single-slot store for the in-progress workout, mirrored
// on every session mutation so a restart can resume where it left off.
package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/meltforce/irontrack/internal/models"
)

// Store holds at most one active-workout draft per user in a local
// SQLite file. Concurrent writers are last-writer-wins on the slot.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the draft database at dir/drafts.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating draft dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "drafts.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening draft db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS active_workout (
		user_id    INTEGER PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating draft table: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the user's active-workout draft, or nil when there is
// none. Absence is not an error.
func (s *Store) Get(ctx context.Context, userID int) (*models.Workout, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM active_workout WHERE user_id = ?`, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}

	var w models.Workout
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &w, nil
}

// Put writes the full workout snapshot into the user's slot,
// overwriting any previous draft.
func (s *Store) Put(ctx context.Context, userID int, w *models.Workout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO active_workout (user_id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE
			SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, userID, string(data))
	if err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	return nil
}

// Clear removes the user's draft. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context, userID int) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM active_workout WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
