// Package session implements the active-workout editor: one in-memory
// workout mutated through a fixed operation set, with every mutation
// mirrored synchronously into the local draft store so a restart can
// resume the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/irontrack/internal/models"
)

var (
	ErrExerciseNotFound = errors.New("exercise instance not found")
	ErrSetNotFound      = errors.New("set not found")
	ErrEmptyWorkout     = errors.New("workout has no exercises")
	ErrAlreadyFinished  = errors.New("workout already finished")
	ErrNoActiveSession  = errors.New("no active session")
)

// DraftStore is the local ephemeral side of the persistence gateway.
type DraftStore interface {
	Get(ctx context.Context, userID int) (*models.Workout, error)
	Put(ctx context.Context, userID int, w *models.Workout) error
	Clear(ctx context.Context, userID int) error
}

// WorkoutSink receives finalized workouts for durable storage.
type WorkoutSink interface {
	InsertCompletedWorkout(ctx context.Context, userID int, w models.Workout) (bool, error)
}

// Editor owns exactly one active workout for one user. Every operation
// takes the editor's mutex, so concurrent requests against the same
// session serialize; a second process sharing the draft file still
// degrades to last-writer-wins on the slot.
type Editor struct {
	userID int
	drafts DraftStore
	log    *slog.Logger
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	workout *models.Workout
}

// Option adjusts editor construction, used by tests to pin the clock
// and id sequence.
type Option func(*Editor)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithIDGenerator replaces the id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Editor) { e.newID = newID }
}

func newEditor(userID int, drafts DraftStore, log *slog.Logger, opts []Option) *Editor {
	e := &Editor{
		userID: userID,
		drafts: drafts,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resume returns an editor for the user's persisted draft, or nil when
// no active workout exists.
func Resume(ctx context.Context, userID int, drafts DraftStore, log *slog.Logger, opts ...Option) (*Editor, error) {
	e := newEditor(userID, drafts, log, opts)
	w, err := drafts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}
	if w == nil || w.Status != models.StatusActive {
		return nil, nil
	}
	e.workout = w
	return e, nil
}

// Start returns an editor for the user's persisted draft, creating a
// fresh active workout when none exists. A new workout is persisted
// immediately so a crash right after creation is still resumable.
func Start(ctx context.Context, userID int, drafts DraftStore, log *slog.Logger, opts ...Option) (*Editor, error) {
	if e, err := Resume(ctx, userID, drafts, log, opts...); err != nil || e != nil {
		return e, err
	}

	e := newEditor(userID, drafts, log, opts)
	now := e.now()
	e.workout = &models.Workout{
		ID:        e.newID(),
		Name:      workoutName(now),
		StartTime: now,
		Exercises: []models.WorkoutExercise{},
		Status:    models.StatusActive,
	}
	e.save(ctx)
	return e, nil
}

// workoutName picks a display name from the local time of day.
func workoutName(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return "Morning Workout"
	case hour < 17:
		return "Afternoon Workout"
	default:
		return "Evening Workout"
	}
}

// Workout returns a deep copy of the current workout. Mutations go
// through the editor's operations; the snapshot never changes under
// the caller.
func (e *Editor) Workout() *models.Workout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workout.Clone()
}

// Elapsed returns how long the session has been running. Time is
// derived from the start timestamp, never stored as a counter, so a
// resumed session reports the true elapsed time.
func (e *Editor) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now().Sub(e.workout.StartTime)
}

// AddExercise appends a snapshot of the catalog exercise with one
// seeded, unperformed set.
func (e *Editor) AddExercise(ctx context.Context, ex models.Exercise) models.WorkoutExercise {
	e.mu.Lock()
	defer e.mu.Unlock()

	instance := models.NewWorkoutExercise(e.newID(), ex, e.newID())
	e.workout.Exercises = append(e.workout.Exercises, instance)
	e.save(ctx)
	return instance
}

// AddSet appends a set to the named exercise instance. The new set
// seeds weight and reps from the exercise's last set when one exists,
// and always starts incomplete.
func (e *Editor) AddSet(ctx context.Context, instanceID string) (models.WorkoutSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex := e.workout.ExerciseByID(instanceID)
	if ex == nil {
		return models.WorkoutSet{}, ErrExerciseNotFound
	}

	set := models.WorkoutSet{ID: e.newID()}
	if n := len(ex.Sets); n > 0 {
		set.Weight = ex.Sets[n-1].Weight
		set.Reps = ex.Sets[n-1].Reps
	}
	ex.Sets = append(ex.Sets, set)
	e.save(ctx)
	return set, nil
}

// SetUpdate is a tagged mutation of one set field.
type SetUpdate struct {
	kind   updateKind
	weight float64
	reps   int
}

type updateKind int

const (
	updateWeight updateKind = iota
	updateReps
)

// SetWeight updates a set's weight. Negative values clamp to zero.
func SetWeight(v float64) SetUpdate {
	return SetUpdate{kind: updateWeight, weight: max(v, 0)}
}

// SetReps updates a set's rep count. Negative values clamp to zero.
func SetReps(n int) SetUpdate {
	return SetUpdate{kind: updateReps, reps: max(n, 0)}
}

// UpdateSet applies the tagged updates to the matching set and returns
// the updated set. Unknown exercise or set ids are a no-op, not an
// error; the bool reports whether the updates applied.
func (e *Editor) UpdateSet(ctx context.Context, instanceID, setID string, updates ...SetUpdate) (models.WorkoutSet, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex := e.workout.ExerciseByID(instanceID)
	if ex == nil {
		return models.WorkoutSet{}, false
	}
	set := ex.SetByID(setID)
	if set == nil {
		return models.WorkoutSet{}, false
	}

	for _, u := range updates {
		switch u.kind {
		case updateWeight:
			set.Weight = u.weight
		case updateReps:
			set.Reps = u.reps
		}
	}
	e.save(ctx)
	return *set, true
}

// ToggleSet flips a set's completed flag in place.
func (e *Editor) ToggleSet(ctx context.Context, instanceID, setID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex := e.workout.ExerciseByID(instanceID)
	if ex == nil {
		return false, ErrExerciseNotFound
	}
	set := ex.SetByID(setID)
	if set == nil {
		return false, ErrSetNotFound
	}

	set.Completed = !set.Completed
	e.save(ctx)
	return set.Completed, nil
}

// RemoveSet deletes a set by id. Removing an exercise's last set leaves
// the exercise in place with zero sets.
func (e *Editor) RemoveSet(ctx context.Context, instanceID, setID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex := e.workout.ExerciseByID(instanceID)
	if ex == nil {
		return ErrExerciseNotFound
	}
	for i := range ex.Sets {
		if ex.Sets[i].ID == setID {
			ex.Sets = append(ex.Sets[:i], ex.Sets[i+1:]...)
			e.save(ctx)
			return nil
		}
	}
	return ErrSetNotFound
}

// RemoveExercise deletes an exercise instance and its sets.
func (e *Editor) RemoveExercise(ctx context.Context, instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.workout.Exercises {
		if e.workout.Exercises[i].ID == instanceID {
			e.workout.Exercises = append(e.workout.Exercises[:i], e.workout.Exercises[i+1:]...)
			e.save(ctx)
			return nil
		}
	}
	return ErrExerciseNotFound
}

// Finish finalizes the workout: computes the frozen volume over
// completed sets, stamps the end time, flips the status (irreversibly)
// and hands the record to durable storage before clearing the draft.
// The durable write is never swallowed; a failed draft clear is logged
// since the next terminal write supersedes the stale slot.
func (e *Editor) Finish(ctx context.Context, sink WorkoutSink) (*models.Workout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.workout.Status != models.StatusActive {
		return nil, ErrAlreadyFinished
	}
	if len(e.workout.Exercises) == 0 {
		return nil, ErrEmptyWorkout
	}

	end := e.now()
	completed := *e.workout
	completed.Volume = completed.TotalVolume()
	completed.EndTime = &end
	completed.Status = models.StatusCompleted

	if _, err := sink.InsertCompletedWorkout(ctx, e.userID, completed); err != nil {
		return nil, fmt.Errorf("storing completed workout: %w", err)
	}

	e.workout = &completed
	if err := e.drafts.Clear(ctx, e.userID); err != nil {
		e.log.Warn("clearing draft after finish failed", "user", e.userID, "error", err)
	}
	return &completed, nil
}

// Discard abandons the active workout without writing durable history.
// The caller is responsible for confirming with the user first; the
// loss is irreversible.
func (e *Editor) Discard(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.drafts.Clear(ctx, e.userID); err != nil {
		return fmt.Errorf("discarding draft: %w", err)
	}
	return nil
}

// save mirrors the full workout snapshot into the draft store. Losing
// one autosave is recoverable on the next mutation, so failures are
// logged rather than returned.
func (e *Editor) save(ctx context.Context) {
	if err := e.drafts.Put(ctx, e.userID, e.workout); err != nil {
		e.log.Warn("draft autosave failed", "user", e.userID, "error", err)
	}
}
