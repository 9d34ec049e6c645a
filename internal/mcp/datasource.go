package mcp

import (
	"context"

	"github.com/meltforce/irontrack/internal/analytics"
	"github.com/meltforce/irontrack/internal/models"
	"github.com/meltforce/irontrack/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Local (storage plus
// analytics) and HTTPClient (remote via REST API) both satisfy this
// interface.
type DataSource interface {
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error)
	LastPerformances(ctx context.Context, userID int, exerciseIDs []string) (map[string]models.WorkoutExercise, error)
	MuscleDistribution(ctx context.Context, userID int) ([]analytics.MuscleCount, error)
	WeeklyVolume(ctx context.Context, userID int) ([]analytics.DayVolume, error)
	ExerciseSeries(ctx context.Context, userID int, exerciseID string) ([]analytics.SeriesPoint, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Local backs DataSource with the storage layer directly, delegating
// aggregations to the analyzer.
type Local struct {
	db *storage.DB
	an *analytics.Analyzer
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource over the given database.
func NewLocal(db *storage.DB) *Local {
	return &Local{db: db, an: analytics.NewAnalyzer(db)}
}

func (l *Local) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	return l.db.ListExercises(ctx, userID)
}

func (l *Local) ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	return l.db.ListWorkouts(ctx, userID, limit)
}

func (l *Local) LastPerformances(ctx context.Context, userID int, exerciseIDs []string) (map[string]models.WorkoutExercise, error) {
	return l.an.LastPerformances(ctx, userID, exerciseIDs)
}

func (l *Local) MuscleDistribution(ctx context.Context, userID int) ([]analytics.MuscleCount, error) {
	return l.an.MuscleDistribution(ctx, userID)
}

func (l *Local) WeeklyVolume(ctx context.Context, userID int) ([]analytics.DayVolume, error) {
	return l.an.WeeklyVolume(ctx, userID)
}

func (l *Local) ExerciseSeries(ctx context.Context, userID int, exerciseID string) ([]analytics.SeriesPoint, error) {
	return l.an.ExerciseSeries(ctx, userID, exerciseID)
}

func (l *Local) GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error) {
	return l.db.GetDataStats(ctx, userID)
}
