package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/irontrack/internal/storage"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog: the built-in exercises plus the user's custom ones, each with its muscle group and equipment."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Retrieve completed workouts, most recent first. Each workout includes its exercises, sets (weight, reps, completion), and total volume."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 50.")),
)

var toolGetLastPerformances = mcp.NewTool("get_last_performances",
	mcp.WithDescription("For each given exercise id, return how it was last performed (weight and reps per set from the most recent workout containing it). Exercises never performed are omitted."),
	mcp.WithString("exercise_ids", mcp.Required(), mcp.Description("Comma-separated exercise ids (e.g. 'ex_1,ex_4,custom_...')")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Per-workout progression for one exercise, oldest first: max completed weight and total completed volume per occurrence. Occurrences with no completed sets are excluded."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id")),
)

var toolGetMuscleDistribution = mcp.NewTool("get_muscle_distribution",
	mcp.WithDescription("Completed set counts grouped by muscle group across all workouts, highest first."),
)

var toolGetWeeklyVolume = mcp.NewTool("get_weekly_volume",
	mcp.WithDescription("Training volume per day over the last seven days, oldest first. Days without training report zero."),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Lifetime totals: workout count, custom exercise count, total volume, completed sets, and first/latest workout dates."),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	exercises, err := h.ds.ListExercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(exercises)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", storage.DefaultWorkoutLimit)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.ListWorkouts(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(workouts)
}

func (h *handlers) getLastPerformances(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercise_ids")
	if err != nil {
		return mcp.NewToolResultError("exercise_ids parameter is required"), nil
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError("exercise_ids must name at least one exercise"), nil
	}

	uid := UserIDFromContext(ctx)
	perfs, err := h.ds.LastPerformances(ctx, uid, ids)
	if err != nil {
		h.log.Error("mcp get_last_performances", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(perfs)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	points, err := h.ds.ExerciseSeries(ctx, uid, exerciseID)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(points)
}

func (h *handlers) getMuscleDistribution(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	dist, err := h.ds.MuscleDistribution(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_muscle_distribution", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(dist)
}

func (h *handlers) getWeeklyVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	days, err := h.ds.WeeklyVolume(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_weekly_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(days)
}

func (h *handlers) getDataStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	stats, err := h.ds.GetDataStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return resultJSON(stats)
}

func resultJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
