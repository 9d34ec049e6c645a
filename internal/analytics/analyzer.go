package analytics

import (
	"context"
	"time"

	"github.com/meltforce/irontrack/internal/models"
)

// Repo is the slice of the persistence gateway the analyzer reads from.
// *storage.DB satisfies it.
type Repo interface {
	ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error)
	ExerciseHistory(ctx context.Context, userID int, exerciseID string) ([]models.PerformedExercise, error)
	LastPerformances(ctx context.Context, userID int, exerciseIDs []string) (map[string]models.WorkoutExercise, error)
}

// Analyzer computes derived views over a user's workout history. It
// holds no state of its own; every call is a fresh read.
type Analyzer struct {
	repo Repo
	now  func() time.Time
}

// AnalyzerOption adjusts analyzer construction.
type AnalyzerOption func(*Analyzer)

// WithClock replaces the wall clock used for windowed views.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an Analyzer over the given repository.
func NewAnalyzer(repo Repo, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MuscleDistribution returns completed-set counts per muscle group,
// descending.
func (a *Analyzer) MuscleDistribution(ctx context.Context, userID int) ([]MuscleCount, error) {
	workouts, err := a.repo.ListWorkouts(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return MuscleDistribution(workouts), nil
}

// WeeklyVolume returns per-day volume for the trailing 7 calendar days.
func (a *Analyzer) WeeklyVolume(ctx context.Context, userID int) ([]DayVolume, error) {
	workouts, err := a.repo.ListWorkouts(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return WeeklyVolume(workouts, a.now()), nil
}

// ExerciseSeries returns one exercise's progression, oldest first.
func (a *Analyzer) ExerciseSeries(ctx context.Context, userID int, exerciseID string) ([]SeriesPoint, error) {
	history, err := a.repo.ExerciseHistory(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	return ExerciseSeries(history), nil
}

// LastPerformances resolves each exercise id to its most recent
// recorded performance. Ids with no history are absent from the
// result; an empty id set returns an empty map without a storage
// round trip. Duplicate ids are collapsed before the batched lookup.
func (a *Analyzer) LastPerformances(ctx context.Context, userID int, exerciseIDs []string) (map[string]models.WorkoutExercise, error) {
	if len(exerciseIDs) == 0 {
		return map[string]models.WorkoutExercise{}, nil
	}

	seen := make(map[string]bool, len(exerciseIDs))
	unique := make([]string, 0, len(exerciseIDs))
	for _, id := range exerciseIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return map[string]models.WorkoutExercise{}, nil
	}

	return a.repo.LastPerformances(ctx, userID, unique)
}

// LastPerformance resolves a single exercise id through the batched
// lookup, so singleton and batch semantics agree by construction.
// Returns nil when the exercise has no history.
func (a *Analyzer) LastPerformance(ctx context.Context, userID int, exerciseID string) (*models.WorkoutExercise, error) {
	result, err := a.LastPerformances(ctx, userID, []string{exerciseID})
	if err != nil {
		return nil, err
	}
	if ex, ok := result[exerciseID]; ok {
		return &ex, nil
	}
	return nil, nil
}
