package analytics

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/meltforce/irontrack/internal/models"
)

// fakeRepo is an in-memory Repo recording how it is called.
type fakeRepo struct {
	workouts     []models.Workout
	history      []models.PerformedExercise
	performances map[string]models.WorkoutExercise

	lastPerfCalls int
	lastPerfIDs   []string
}

func (f *fakeRepo) ListWorkouts(_ context.Context, _, _ int) ([]models.Workout, error) {
	return f.workouts, nil
}

func (f *fakeRepo) ExerciseHistory(_ context.Context, _ int, _ string) ([]models.PerformedExercise, error) {
	return f.history, nil
}

func (f *fakeRepo) LastPerformances(_ context.Context, _ int, ids []string) (map[string]models.WorkoutExercise, error) {
	f.lastPerfCalls++
	f.lastPerfIDs = ids

	result := make(map[string]models.WorkoutExercise)
	for _, id := range ids {
		if ex, ok := f.performances[id]; ok {
			result[id] = ex
		}
	}
	return result, nil
}

// TestLastPerformancesEmptySet verifies an empty id set resolves to an
// empty map with no storage round trip.
func TestLastPerformancesEmptySet(t *testing.T) {
	repo := &fakeRepo{}
	a := NewAnalyzer(repo)

	got, err := a.LastPerformances(t.Context(), 1, nil)
	if err != nil {
		t.Fatalf("LastPerformances: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("result = %+v, want empty", got)
	}
	if repo.lastPerfCalls != 0 {
		t.Errorf("storage calls = %d, want 0 for empty id set", repo.lastPerfCalls)
	}
}

// TestLastPerformancesAbsentID verifies ids with no history are simply
// absent from the result, and that the lookup is one batched call.
func TestLastPerformancesAbsentID(t *testing.T) {
	repo := &fakeRepo{performances: map[string]models.WorkoutExercise{
		"id1": {ID: "we_1", ExerciseID: "id1"},
	}}
	a := NewAnalyzer(repo)

	got, err := a.LastPerformances(t.Context(), 1, []string{"id1", "id2"})
	if err != nil {
		t.Fatalf("LastPerformances: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("result = %+v, want only id1", got)
	}
	if _, ok := got["id1"]; !ok {
		t.Error("id1 missing from result")
	}
	if repo.lastPerfCalls != 1 {
		t.Errorf("storage calls = %d, want 1 (batched)", repo.lastPerfCalls)
	}
}

// TestLastPerformancesDedupes verifies duplicate and blank ids collapse
// before the batched lookup.
func TestLastPerformancesDedupes(t *testing.T) {
	repo := &fakeRepo{}
	a := NewAnalyzer(repo)

	if _, err := a.LastPerformances(t.Context(), 1, []string{"id1", "id1", "", "id2"}); err != nil {
		t.Fatalf("LastPerformances: %v", err)
	}
	if want := []string{"id1", "id2"}; !reflect.DeepEqual(repo.lastPerfIDs, want) {
		t.Errorf("queried ids = %v, want %v", repo.lastPerfIDs, want)
	}
}

// TestLastPerformanceSingletonAgreesWithBatch verifies the single-id
// call returns exactly what the batch returns for that id.
func TestLastPerformanceSingletonAgreesWithBatch(t *testing.T) {
	repo := &fakeRepo{performances: map[string]models.WorkoutExercise{
		"id1": {ID: "we_1", ExerciseID: "id1", Name: "Barbell Bench Press"},
	}}
	a := NewAnalyzer(repo)
	ctx := t.Context()

	single, err := a.LastPerformance(ctx, 1, "id1")
	if err != nil {
		t.Fatalf("LastPerformance: %v", err)
	}
	batch, err := a.LastPerformances(ctx, 1, []string{"id1"})
	if err != nil {
		t.Fatalf("LastPerformances: %v", err)
	}
	if single == nil || !reflect.DeepEqual(*single, batch["id1"]) {
		t.Errorf("singleton = %+v, batch = %+v; want equal", single, batch["id1"])
	}

	missing, err := a.LastPerformance(ctx, 1, "id9")
	if err != nil {
		t.Fatalf("LastPerformance(id9): %v", err)
	}
	if missing != nil {
		t.Errorf("LastPerformance for unknown id = %+v, want nil", missing)
	}
}

// TestAnalyzerWeeklyVolumeUsesClock verifies the injected clock anchors
// the trailing window.
func TestAnalyzerWeeklyVolumeUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	repo := &fakeRepo{workouts: []models.Workout{{
		StartTime: now.Add(-time.Hour),
		Exercises: []models.WorkoutExercise{{
			Sets: []models.WorkoutSet{{Weight: 50, Reps: 2, Completed: true}},
		}},
	}}}
	a := NewAnalyzer(repo, WithClock(func() time.Time { return now }))

	got, err := a.WeeklyVolume(t.Context(), 1)
	if err != nil {
		t.Fatalf("WeeklyVolume: %v", err)
	}
	if got[6].Volume != 100 {
		t.Errorf("today's bucket = %.1f, want 100", got[6].Volume)
	}
}
