package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meltforce/irontrack/internal/models"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	p, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		s.log.Error("loading profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "loading profile failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Unit != "kg" && p.Unit != "lb" {
		writeError(w, http.StatusBadRequest, `unit must be "kg" or "lb"`)
		return
	}

	if err := s.store.UpdateProfile(r.Context(), userID, p); err != nil {
		s.log.Error("updating profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "updating profile failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
