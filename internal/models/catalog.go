package models

// seedExercises is the built-in exercise catalog every user starts with.
var seedExercises = []Exercise{
	{ID: "ex_1", Name: "Barbell Bench Press", Muscle: MuscleChest},
	{ID: "ex_2", Name: "Incline Dumbbell Press", Muscle: MuscleChest},
	{ID: "ex_3", Name: "Pec Deck Fly", Muscle: MuscleChest},
	{ID: "ex_4", Name: "Pull Up", Muscle: MuscleBack},
	{ID: "ex_5", Name: "Barbell Row", Muscle: MuscleBack},
	{ID: "ex_6", Name: "Lat Pulldown", Muscle: MuscleBack},
	{ID: "ex_7", Name: "Barbell Squat", Muscle: MuscleLegs},
	{ID: "ex_8", Name: "Leg Press", Muscle: MuscleLegs},
	{ID: "ex_9", Name: "Romanian Deadlift", Muscle: MuscleLegs},
	{ID: "ex_10", Name: "Overhead Press", Muscle: MuscleShoulders},
	{ID: "ex_11", Name: "Lateral Raise", Muscle: MuscleShoulders},
	{ID: "ex_12", Name: "Bicep Curl", Muscle: MuscleArms},
	{ID: "ex_13", Name: "Tricep Extension", Muscle: MuscleArms},
	{ID: "ex_14", Name: "Plank", Muscle: MuscleCore},
}

// SeedExercises returns a copy of the built-in catalog.
func SeedExercises() []Exercise {
	out := make([]Exercise, len(seedExercises))
	copy(out, seedExercises)
	return out
}
