package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored workouts.
type DataStats struct {
	TotalWorkouts    int64            `json:"total_workouts"`
	TotalCustom      int64            `json:"total_custom_exercises"`
	TotalVolume      float64          `json:"total_volume"`
	TotalSets        int64            `json:"total_completed_sets"`
	FirstWorkout     *time.Time       `json:"first_workout"`
	LatestWorkout    *time.Time       `json:"latest_workout"`
	WorkoutsByMuscle []MuscleWorkStat `json:"workouts_by_muscle"`
}

// MuscleWorkStat is the completed-set count for one muscle group,
// computed in the database over the JSONB documents.
type MuscleWorkStat struct {
	Muscle string `json:"muscle"`
	Sets   int64  `json:"sets"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(volume), 0), MIN(start_time), MAX(start_time)
		 FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalVolume, &stats.FirstWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM custom_exercises WHERE user_id = $1`, userID,
	).Scan(&stats.TotalCustom)
	if err != nil {
		return nil, fmt.Errorf("counting custom exercises: %w", err)
	}

	// Completed sets per muscle group, unnested from the workout documents.
	rows, err := db.Pool.Query(ctx,
		`SELECT ex->>'muscle', COUNT(*)
		 FROM workouts w,
		      jsonb_array_elements(w.exercises) ex,
		      jsonb_array_elements(ex->'sets') s
		 WHERE w.user_id = $1 AND (s->>'completed')::boolean
		 GROUP BY ex->>'muscle'
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets by muscle: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s MuscleWorkStat
		if err := rows.Scan(&s.Muscle, &s.Sets); err != nil {
			return nil, fmt.Errorf("scanning muscle stat: %w", err)
		}
		stats.TotalSets += s.Sets
		stats.WorkoutsByMuscle = append(stats.WorkoutsByMuscle, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
