package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/irontrack/internal/models"
	"github.com/meltforce/irontrack/internal/session"
)

type sessionResponse struct {
	Workout        *models.Workout `json:"workout"`
	ElapsedSeconds int64           `json:"elapsedSeconds"`
}

func newSessionResponse(e *session.Editor) sessionResponse {
	return sessionResponse{
		Workout:        e.Workout(),
		ElapsedSeconds: int64(e.Elapsed().Seconds()),
	}
}

// currentEditor resolves the active session for the request's user,
// writing a 404 when there is none.
func (s *Server) currentEditor(w http.ResponseWriter, r *http.Request) (*session.Editor, int, bool) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return nil, 0, false
	}
	e, err := s.sessions.Current(r.Context(), userID)
	if err != nil {
		s.log.Error("resuming session failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "resuming session failed")
		return nil, 0, false
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return nil, 0, false
	}
	return e, userID, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e, _, ok := s.currentEditor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(e))
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	e, err := s.sessions.StartOrResume(r.Context(), userID)
	if err != nil {
		s.log.Error("starting session failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "starting session failed")
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(e))
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	if err := s.sessions.Discard(r.Context(), userID); err != nil {
		s.log.Error("discarding session failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "discarding session failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	workout, err := s.sessions.Finish(r.Context(), userID, s.store)
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		writeError(w, http.StatusNotFound, "no active session")
		return
	case errors.Is(err, session.ErrEmptyWorkout):
		writeError(w, http.StatusConflict, "workout has no exercises")
		return
	case err != nil:
		s.log.Error("finishing session failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "finishing session failed")
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleSessionAddExercise(w http.ResponseWriter, r *http.Request) {
	e, userID, ok := s.currentEditor(w, r)
	if !ok {
		return
	}

	var req struct {
		ExerciseID string `json:"exerciseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExerciseID == "" {
		writeError(w, http.StatusBadRequest, "exerciseId is required")
		return
	}

	catalog, err := s.store.ListExercises(r.Context(), userID)
	if err != nil {
		s.log.Error("listing exercises failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing exercises failed")
		return
	}
	var found *models.Exercise
	for i := range catalog {
		if catalog[i].ID == req.ExerciseID {
			found = &catalog[i]
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "unknown exercise")
		return
	}

	instance := e.AddExercise(r.Context(), *found)

	// Best effort: the instance stands on its own when history fails.
	last, err := s.analyzer.LastPerformance(r.Context(), userID, req.ExerciseID)
	if err != nil {
		s.log.Warn("resolving last performance failed", "exercise", req.ExerciseID, "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"instance":        instance,
		"lastPerformance": last,
	})
}

func (s *Server) handleSessionRemoveExercise(w http.ResponseWriter, r *http.Request) {
	e, _, ok := s.currentEditor(w, r)
	if !ok {
		return
	}

	if err := e.RemoveExercise(r.Context(), chi.URLParam(r, "instanceID")); err != nil {
		writeError(w, http.StatusNotFound, "exercise instance not found")
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(e))
}

func (s *Server) handleSessionAddSet(w http.ResponseWriter, r *http.Request) {
	e, _, ok := s.currentEditor(w, r)
	if !ok {
		return
	}

	set, err := e.AddSet(r.Context(), chi.URLParam(r, "instanceID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "exercise instance not found")
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleSessionUpdateSet(w http.ResponseWriter, r *http.Request) {
	e, _, ok := s.currentEditor(w, r)
	if !ok {
		return
	}

	var req struct {
		Weight *float64 `json:"weight"`
		Reps   *int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Weight == nil && req.Reps == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	var updates []session.SetUpdate
	if req.Weight != nil {
		updates = append(updates, session.SetWeight(*req.Weight))
	}
	if req.Reps != nil {
		updates = append(updates, session.SetReps(*req.Reps))
	}
	set, ok := e.UpdateSet(r.Context(), chi.URLParam(r, "instanceID"), chi.URLParam(r, "setID"), updates...)
	if !ok {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleSessionToggleSet(w http.ResponseWriter, r *http.Request) {
	e, _, ok := s.currentEditor(w, r)
	if !ok {
		return
	}

	completed, err := e.ToggleSet(r.Context(), chi.URLParam(r, "instanceID"), chi.URLParam(r, "setID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

func (s *Server) handleSessionRemoveSet(w http.ResponseWriter, r *http.Request) {
	e, _, ok := s.currentEditor(w, r)
	if !ok {
		return
	}

	err := e.RemoveSet(r.Context(), chi.URLParam(r, "instanceID"), chi.URLParam(r, "setID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(e))
}
