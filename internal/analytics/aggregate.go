// Package analytics computes the read-side views over completed
// workout history: muscle distribution, trailing-week volume and
// per-exercise progression. All computations are pure functions of
// their inputs and tolerate empty history.
package analytics

import (
	"sort"
	"time"

	"github.com/meltforce/irontrack/internal/models"
)

// MuscleCount is the completed-set count for one muscle group.
type MuscleCount struct {
	Muscle models.MuscleGroup `json:"muscle"`
	Sets   int                `json:"sets"`
}

// DayVolume is one day's total training volume.
type DayVolume struct {
	Day    string  `json:"day"`
	Volume float64 `json:"volume"`
}

// SeriesPoint is one workout's performance of an exercise, for the
// progression charts.
type SeriesPoint struct {
	Date        time.Time `json:"date"`
	Label       string    `json:"label"`
	MaxWeight   float64   `json:"maxWeight"`
	TotalVolume float64   `json:"totalVolume"`
}

// MuscleDistribution counts completed sets per muscle group across all
// workouts, using the muscle snapshot cached on each exercise instance.
// The result is sorted by descending count (ties by muscle name, for a
// deterministic order); muscles with no completed sets are omitted.
func MuscleDistribution(workouts []models.Workout) []MuscleCount {
	counts := make(map[models.MuscleGroup]int)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			var n int
			for _, s := range ex.Sets {
				if s.Completed {
					n++
				}
			}
			if n > 0 {
				counts[ex.Muscle] += n
			}
		}
	}

	result := make([]MuscleCount, 0, len(counts))
	for muscle, sets := range counts {
		result = append(result, MuscleCount{Muscle: muscle, Sets: sets})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Sets != result[j].Sets {
			return result[i].Sets > result[j].Sets
		}
		return result[i].Muscle < result[j].Muscle
	})
	return result
}

// WeeklyVolume buckets workouts by calendar day over the trailing 7
// days (including today), summing weight×reps over completed sets.
// The result always has 7 entries in chronological order, oldest
// first; days without workouts carry zero.
func WeeklyVolume(workouts []models.Workout, now time.Time) []DayVolume {
	type dayKey struct {
		year  int
		month time.Month
		day   int
	}

	keys := make([]dayKey, 0, 7)
	totals := make(map[dayKey]float64, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		k := dayKey{d.Year(), d.Month(), d.Day()}
		keys = append(keys, k)
		totals[k] = 0
	}

	for _, w := range workouts {
		d := w.StartTime.In(now.Location())
		k := dayKey{d.Year(), d.Month(), d.Day()}
		if _, ok := totals[k]; ok {
			totals[k] += w.TotalVolume()
		}
	}

	result := make([]DayVolume, 0, 7)
	for i, k := range keys {
		d := now.AddDate(0, 0, i-6)
		result = append(result, DayVolume{Day: d.Format("Mon"), Volume: totals[k]})
	}
	return result
}

// ExerciseSeries turns one exercise's history into chart points,
// oldest first. Workouts where the exercise accumulated no completed
// volume contribute nothing to the series.
func ExerciseSeries(history []models.PerformedExercise) []SeriesPoint {
	result := make([]SeriesPoint, 0, len(history))
	for _, h := range history {
		vol := h.Exercise.CompletedVolume()
		if vol == 0 {
			continue
		}
		result = append(result, SeriesPoint{
			Date:        h.StartTime,
			Label:       h.StartTime.Format("Jan 2"),
			MaxWeight:   h.Exercise.MaxCompletedWeight(),
			TotalVolume: vol,
		})
	}
	return result
}
