package storage

import (
	"testing"
	"time"

	"github.com/meltforce/irontrack/internal/models"
)

// TestFirstInstance verifies the tie-break when a workout references
// the same catalog exercise more than once: the first instance in the
// exercise list wins.
func TestFirstInstance(t *testing.T) {
	exercises := []models.WorkoutExercise{
		{ID: "we_1", ExerciseID: "ex_2"},
		{ID: "we_2", ExerciseID: "ex_1"},
		{ID: "we_3", ExerciseID: "ex_1"},
	}

	got := firstInstance(exercises, "ex_1")
	if got == nil {
		t.Fatal("firstInstance(ex_1) = nil")
	}
	if got.ID != "we_2" {
		t.Errorf("firstInstance(ex_1).ID = %q, want we_2", got.ID)
	}

	if firstInstance(exercises, "ex_9") != nil {
		t.Error("firstInstance(ex_9) != nil, want nil for unknown exercise")
	}
	if firstInstance(nil, "ex_1") != nil {
		t.Error("firstInstance(nil, ex_1) != nil")
	}
}

// TestInsertCompletedWorkoutRejectsActive verifies the terminal-write
// guard: only completed workouts with an end time are accepted. The
// check runs before any database access, so a nil pool is fine.
func TestInsertCompletedWorkoutRejectsActive(t *testing.T) {
	db := &DB{}
	end := time.Now()

	tests := []struct {
		name string
		w    models.Workout
	}{
		{"active status", models.Workout{Status: models.StatusActive, EndTime: &end}},
		{"missing end time", models.Workout{Status: models.StatusCompleted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.InsertCompletedWorkout(t.Context(), 1, tt.w); err != ErrNotCompleted {
				t.Errorf("InsertCompletedWorkout = %v, want ErrNotCompleted", err)
			}
		})
	}
}

// TestInsertCompletedWorkoutRejectsBadID verifies a non-UUID workout id
// is rejected before reaching the database.
func TestInsertCompletedWorkoutRejectsBadID(t *testing.T) {
	db := &DB{}
	end := time.Now()
	w := models.Workout{ID: "not-a-uuid", Status: models.StatusCompleted, EndTime: &end}

	if _, err := db.InsertCompletedWorkout(t.Context(), 1, w); err == nil {
		t.Error("InsertCompletedWorkout with invalid id = nil error")
	}
}
