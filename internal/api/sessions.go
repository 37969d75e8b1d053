package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foldworks/foldpipe/internal/history"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listSessionsResponse wraps the session list.
type listSessionsResponse struct {
	Sessions []*history.Session `json:"sessions"`
}

// listStepsResponse wraps a session's step executions.
type listStepsResponse struct {
	SessionID string                   `json:"session_id"`
	Steps     []*history.StepExecution `json:"steps"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history ledger is disabled")
		return
	}

	limit := parseIntQuery(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}

	sessions, err := s.history.ListSessions(r.Context(), limit)
	if err != nil {
		s.logger.Error("list sessions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*history.Session{}
	}

	s.writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history ledger is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	steps, err := s.history.ListSteps(r.Context(), id)
	if err != nil {
		if history.IsNotFound(err) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("list session steps", "error", err, "session", id)
		s.writeError(w, http.StatusInternalServerError, "failed to list steps")
		return
	}
	if steps == nil {
		steps = []*history.StepExecution{}
	}

	s.writeJSON(w, http.StatusOK, listStepsResponse{SessionID: id, Steps: steps})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
