package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/irontrack/internal/models"
)

// ErrNotCompleted is returned when a workout that is not in the
// completed state is offered for durable storage.
var ErrNotCompleted = fmt.Errorf("workout is not completed")

// DefaultWorkoutLimit caps history listings when the caller passes no limit.
const DefaultWorkoutLimit = 50

// InsertCompletedWorkout stores a finalized workout. The write is
// terminal: only completed workouts are accepted, and rows are never
// updated afterward. Returns true if inserted, false if duplicate.
func (db *DB) InsertCompletedWorkout(ctx context.Context, userID int, w models.Workout) (bool, error) {
	if w.Status != models.StatusCompleted || w.EndTime == nil {
		return false, ErrNotCompleted
	}

	id, err := uuid.Parse(w.ID)
	if err != nil {
		return false, fmt.Errorf("parsing workout id: %w", err)
	}

	exercisesJSON, err := json.Marshal(w.Exercises)
	if err != nil {
		return false, fmt.Errorf("marshaling exercises: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, start_time, end_time, volume, status, exercises)
		 VALUES ($1, $2, $3, $4, $5, $6, 'completed', $7)
		 ON CONFLICT DO NOTHING`,
		id, userID, w.Name, w.StartTime, *w.EndTime, w.Volume, exercisesJSON)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListWorkouts returns the user's completed workouts, newest first,
// capped at limit (DefaultWorkoutLimit when limit <= 0).
func (db *DB) ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	if limit <= 0 {
		limit = DefaultWorkoutLimit
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, start_time, end_time, volume, exercises
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY start_time DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var (
			id            uuid.UUID
			w             models.Workout
			endTime       time.Time
			exercisesJSON []byte
		)
		if err := rows.Scan(&id, &w.Name, &w.StartTime, &endTime, &w.Volume, &exercisesJSON); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.ID = id.String()
		w.EndTime = &endTime
		w.Status = models.StatusCompleted
		if err := json.Unmarshal(exercisesJSON, &w.Exercises); err != nil {
			return nil, fmt.Errorf("unmarshaling exercises for workout %s: %w", w.ID, err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// LastPerformances returns, for each requested exercise id, that
// exercise's recorded sets from the user's most recent workout
// containing it. Ids with no history are absent from the result. The
// lookup is a single batched query regardless of how many ids are
// requested; an empty id set returns an empty map without touching the
// database.
func (db *DB) LastPerformances(ctx context.Context, userID int, exerciseIDs []string) (map[string]models.WorkoutExercise, error) {
	result := make(map[string]models.WorkoutExercise)
	if len(exerciseIDs) == 0 {
		return result, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (elem->>'exerciseId')
		        elem->>'exerciseId', w.exercises, w.start_time
		 FROM workouts w
		 CROSS JOIN LATERAL jsonb_array_elements(w.exercises) elem
		 WHERE w.user_id = $1 AND elem->>'exerciseId' = ANY($2)
		 ORDER BY elem->>'exerciseId', w.start_time DESC`,
		userID, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("querying last performances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			exerciseID    string
			exercisesJSON []byte
			startTime     time.Time
		)
		if err := rows.Scan(&exerciseID, &exercisesJSON, &startTime); err != nil {
			return nil, fmt.Errorf("scanning last performance: %w", err)
		}

		var exercises []models.WorkoutExercise
		if err := json.Unmarshal(exercisesJSON, &exercises); err != nil {
			return nil, fmt.Errorf("unmarshaling exercises: %w", err)
		}
		// The workout may reference the exercise more than once; the
		// first instance in its exercise list wins.
		if found := firstInstance(exercises, exerciseID); found != nil {
			result[exerciseID] = *found
		}
	}
	return result, rows.Err()
}

// ExerciseHistory returns every completed workout's performance of one
// exercise, oldest first. The filter runs in the database via JSONB
// containment rather than scanning full history client-side.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, exerciseID string) ([]models.PerformedExercise, error) {
	filter, err := json.Marshal([]map[string]string{{"exerciseId": exerciseID}})
	if err != nil {
		return nil, fmt.Errorf("marshaling history filter: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercises, start_time
		 FROM workouts
		 WHERE user_id = $1 AND exercises @> $2::jsonb
		 ORDER BY start_time ASC`,
		userID, filter)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var result []models.PerformedExercise
	for rows.Next() {
		var (
			exercisesJSON []byte
			startTime     time.Time
		)
		if err := rows.Scan(&exercisesJSON, &startTime); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}

		var exercises []models.WorkoutExercise
		if err := json.Unmarshal(exercisesJSON, &exercises); err != nil {
			return nil, fmt.Errorf("unmarshaling exercises: %w", err)
		}
		if found := firstInstance(exercises, exerciseID); found != nil {
			result = append(result, models.PerformedExercise{
				StartTime: startTime,
				Exercise:  *found,
			})
		}
	}
	return result, rows.Err()
}

// firstInstance returns the first workout-exercise instance referencing
// the given catalog exercise, or nil.
func firstInstance(exercises []models.WorkoutExercise, exerciseID string) *models.WorkoutExercise {
	for i := range exercises {
		if exercises[i].ExerciseID == exerciseID {
			return &exercises[i]
		}
	}
	return nil
}
