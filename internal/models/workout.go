package models

import "time"

// WorkoutStatus is the lifecycle state of a workout.
type WorkoutStatus string

const (
	StatusActive    WorkoutStatus = "active"
	StatusCompleted WorkoutStatus = "completed"
)

// WorkoutSet is one recorded set within an exercise. Mutable while the
// owning workout is active; frozen history once it completes.
type WorkoutSet struct {
	ID        string   `json:"id"`
	Weight    float64  `json:"weight"`
	Reps      int      `json:"reps"`
	Completed bool     `json:"completed"`
	RPE       *float64 `json:"rpe,omitempty"`
}

// Volume is the training load of the set: weight times reps.
func (s WorkoutSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// WorkoutExercise is one exercise's performance within a workout.
// ID is the per-session instance id, distinct from ExerciseID (the
// catalog reference). Name and Muscle are snapshot copies taken when
// the exercise was added, so history survives catalog edits.
type WorkoutExercise struct {
	ID         string       `json:"id"`
	ExerciseID string       `json:"exerciseId"`
	Name       string       `json:"name"`
	Muscle     MuscleGroup  `json:"muscle"`
	Sets       []WorkoutSet `json:"sets"`
}

// NewWorkoutExercise snapshots a catalog exercise into a workout
// instance with a single unperformed set.
func NewWorkoutExercise(instanceID string, ex Exercise, firstSetID string) WorkoutExercise {
	return WorkoutExercise{
		ID:         instanceID,
		ExerciseID: ex.ID,
		Name:       ex.Name,
		Muscle:     ex.Muscle,
		Sets:       []WorkoutSet{{ID: firstSetID}},
	}
}

// SetByID returns a pointer to the set with the given id, or nil.
func (e *WorkoutExercise) SetByID(setID string) *WorkoutSet {
	for i := range e.Sets {
		if e.Sets[i].ID == setID {
			return &e.Sets[i]
		}
	}
	return nil
}

// CompletedVolume sums weight×reps over this instance's completed sets.
func (e WorkoutExercise) CompletedVolume() float64 {
	var vol float64
	for _, s := range e.Sets {
		if s.Completed {
			vol += s.Volume()
		}
	}
	return vol
}

// MaxCompletedWeight returns the heaviest weight among completed sets,
// or 0 when none are completed.
func (e WorkoutExercise) MaxCompletedWeight() float64 {
	var max float64
	for _, s := range e.Sets {
		if s.Completed && s.Weight > max {
			max = s.Weight
		}
	}
	return max
}

// Workout is one training session, active or completed. Volume is a
// frozen snapshot computed once at completion, never a live view.
type Workout struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	StartTime time.Time         `json:"startTime"`
	EndTime   *time.Time        `json:"endTime,omitempty"`
	Exercises []WorkoutExercise `json:"exercises"`
	Volume    float64           `json:"volume"`
	Status    WorkoutStatus     `json:"status"`
}

// ExerciseByID returns a pointer to the exercise instance with the
// given id, or nil.
func (w *Workout) ExerciseByID(instanceID string) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == instanceID {
			return &w.Exercises[i]
		}
	}
	return nil
}

// Clone returns a deep copy: the exercise and set slices are fresh, so
// mutating the original never shows through the copy.
func (w *Workout) Clone() *Workout {
	c := *w
	if w.EndTime != nil {
		end := *w.EndTime
		c.EndTime = &end
	}
	c.Exercises = make([]WorkoutExercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		c.Exercises[i] = ex
		c.Exercises[i].Sets = make([]WorkoutSet, len(ex.Sets))
		for j, s := range ex.Sets {
			c.Exercises[i].Sets[j] = s
			if s.RPE != nil {
				rpe := *s.RPE
				c.Exercises[i].Sets[j].RPE = &rpe
			}
		}
	}
	return &c
}

// TotalVolume sums weight×reps over all completed sets across all
// exercises. Incomplete sets never contribute.
func (w Workout) TotalVolume() float64 {
	var vol float64
	for _, e := range w.Exercises {
		vol += e.CompletedVolume()
	}
	return vol
}

// CompletedSetCount counts completed sets across all exercises.
func (w Workout) CompletedSetCount() int {
	var n int
	for _, e := range w.Exercises {
		for _, s := range e.Sets {
			if s.Completed {
				n++
			}
		}
	}
	return n
}

// PerformedExercise is one workout's performance of a given exercise,
// paired with the workout's start time. Returned by exercise history
// queries for the progression charts.
type PerformedExercise struct {
	StartTime time.Time       `json:"startTime"`
	Exercise  WorkoutExercise `json:"exercise"`
}

// Profile is the user's editable profile.
type Profile struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
