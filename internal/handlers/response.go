package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"roomcompare/internal/dto"
	"roomcompare/internal/logger"
	"roomcompare/internal/middleware"
	"roomcompare/internal/service"
	"roomcompare/internal/service/session"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// writeError sends an ErrorResponse, optionally with the current state of the session.
func writeError(w http.ResponseWriter, status int, err error, s *session.Session, logger *logger.Logger) {
	resp := dto.ErrorResponse{Error: err.Error()}
	if s != nil {
		snap := s.Snapshot()
		resp.State = &snap
	}
	writeJSON(w, status, resp, logger)
}

// currentSession resolves the session of the request. The session middleware
// guarantees an id for every API route.
func currentSession(manager *service.Manager, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "Missing session", http.StatusBadRequest)
		return nil, false
	}
	return manager.Session(id), true
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
