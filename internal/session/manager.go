package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meltforce/irontrack/internal/models"
)

// Manager hands out one editor per user for the HTTP layer, keeping
// the live workout in memory between requests. The mutex guards only
// the registry; each editor serializes its own operations, so two
// requests against the same session never interleave mid-mutation.
type Manager struct {
	mu      sync.Mutex
	drafts  DraftStore
	log     *slog.Logger
	opts    []Option
	editors map[int]*Editor
}

// NewManager creates a Manager over the given draft store.
func NewManager(drafts DraftStore, log *slog.Logger, opts ...Option) *Manager {
	return &Manager{
		drafts:  drafts,
		log:     log,
		opts:    opts,
		editors: make(map[int]*Editor),
	}
}

// Current returns the user's session editor, resuming a persisted
// draft if one exists. Returns nil when there is no active workout.
func (m *Manager) Current(ctx context.Context, userID int) (*Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.editors[userID]; ok {
		return e, nil
	}
	e, err := Resume(ctx, userID, m.drafts, m.log, m.opts...)
	if err != nil || e == nil {
		return nil, err
	}
	m.editors[userID] = e
	return e, nil
}

// StartOrResume returns the user's session editor, creating a fresh
// workout when no draft exists.
func (m *Manager) StartOrResume(ctx context.Context, userID int) (*Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.editors[userID]; ok {
		return e, nil
	}
	e, err := Start(ctx, userID, m.drafts, m.log, m.opts...)
	if err != nil {
		return nil, err
	}
	m.editors[userID] = e
	return e, nil
}

// Finish finalizes the user's session and drops the editor.
func (m *Manager) Finish(ctx context.Context, userID int, sink WorkoutSink) (*models.Workout, error) {
	e, err := m.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNoActiveSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	w, err := e.Finish(ctx, sink)
	if err != nil {
		return nil, err
	}
	delete(m.editors, userID)
	return w, nil
}

// Discard abandons the user's session and drops the editor. Discarding
// when no session exists is a no-op.
func (m *Manager) Discard(ctx context.Context, userID int) error {
	e, err := m.Current(ctx, userID)
	if err != nil {
		return err
	}
	if e == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := e.Discard(ctx); err != nil {
		return err
	}
	delete(m.editors, userID)
	return nil
}
