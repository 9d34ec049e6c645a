package models

// MuscleGroup is the fixed set of muscle categories an exercise targets.
type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "Chest"
	MuscleBack      MuscleGroup = "Back"
	MuscleLegs      MuscleGroup = "Legs"
	MuscleShoulders MuscleGroup = "Shoulders"
	MuscleArms      MuscleGroup = "Arms"
	MuscleCore      MuscleGroup = "Core"
	MuscleCardio    MuscleGroup = "Cardio"
	MuscleOther     MuscleGroup = "Other"
)

// MuscleGroups lists all valid muscle groups in display order.
var MuscleGroups = []MuscleGroup{
	MuscleChest, MuscleBack, MuscleLegs, MuscleShoulders,
	MuscleArms, MuscleCore, MuscleCardio, MuscleOther,
}

// Valid reports whether m is one of the known muscle groups.
func (m MuscleGroup) Valid() bool {
	for _, g := range MuscleGroups {
		if m == g {
			return true
		}
	}
	return false
}

// Exercise is an entry in the exercise catalog. Catalog entries are
// immutable reference data; workouts copy the display fields they need
// at add time rather than referencing them live.
type Exercise struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Muscle    MuscleGroup `json:"muscle"`
	Equipment string      `json:"equipment,omitempty"`
}
