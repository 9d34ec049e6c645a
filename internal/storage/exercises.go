package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/irontrack/internal/models"
)

// ListExercises returns the built-in catalog plus the user's custom
// exercises, custom entries last in creation order.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	exercises := models.SeedExercises()

	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, muscle, equipment
		 FROM custom_exercises
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying custom exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Muscle, &ex.Equipment); err != nil {
			return nil, fmt.Errorf("scanning custom exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// CreateExercise inserts a user-defined catalog exercise. Returns true
// if inserted, false if the id already exists.
func (db *DB) CreateExercise(ctx context.Context, userID int, ex models.Exercise) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO custom_exercises (id, user_id, name, muscle, equipment)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		ex.ID, userID, ex.Name, ex.Muscle, ex.Equipment)
	if err != nil {
		return false, fmt.Errorf("inserting custom exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
