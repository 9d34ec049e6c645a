package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/irontrack/internal/models"
	"github.com/meltforce/irontrack/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent, nothing left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	exercises, err := s.store.ListExercises(r.Context(), userID)
	if err != nil {
		s.log.Error("listing exercises failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing exercises failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercises": exercises})
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name      string `json:"name"`
		Muscle    string `json:"muscle"`
		Equipment string `json:"equipment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	muscle := models.MuscleGroup(req.Muscle)
	if !muscle.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown muscle group %q", req.Muscle))
		return
	}

	ex := models.Exercise{
		ID:        "custom_" + uuid.NewString(),
		Name:      req.Name,
		Muscle:    muscle,
		Equipment: strings.TrimSpace(req.Equipment),
	}
	inserted, err := s.store.CreateExercise(r.Context(), userID, ex)
	if err != nil {
		s.log.Error("creating exercise failed", "error", err)
		writeError(w, http.StatusInternalServerError, "creating exercise failed")
		return
	}
	if !inserted {
		writeError(w, http.StatusConflict, "exercise already exists")
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	limit := storage.DefaultWorkoutLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	workouts, err := s.store.ListWorkouts(r.Context(), userID, limit)
	if err != nil {
		s.log.Error("listing workouts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing workouts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workouts": workouts, "count": len(workouts)})
}

func (s *Server) handleLastPerformances(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	perfs, err := s.analyzer.LastPerformances(r.Context(), userID, ids)
	if err != nil {
		s.log.Error("resolving last performances failed", "error", err)
		writeError(w, http.StatusInternalServerError, "resolving last performances failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"performances": perfs})
}

func (s *Server) handleMuscleDistribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	dist, err := s.analyzer.MuscleDistribution(r.Context(), userID)
	if err != nil {
		s.log.Error("computing muscle distribution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing muscle distribution failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"distribution": dist})
}

func (s *Server) handleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	days, err := s.analyzer.WeeklyVolume(r.Context(), userID)
	if err != nil {
		s.log.Error("computing weekly volume failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing weekly volume failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	exerciseID := chi.URLParam(r, "exerciseID")
	if exerciseID == "" {
		writeError(w, http.StatusBadRequest, "exercise id is required")
		return
	}

	points, err := s.analyzer.ExerciseSeries(r.Context(), userID, exerciseID)
	if err != nil {
		s.log.Error("loading exercise history failed", "exercise", exerciseID, "error", err)
		writeError(w, http.StatusInternalServerError, "loading exercise history failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exerciseId": exerciseID, "points": points})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	stats, err := s.store.GetDataStats(r.Context(), userID)
	if err != nil {
		s.log.Error("computing stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "computing stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
