package handlers

import (
	"errors"
	"net/http"

	"roomcompare/internal/logger"
	"roomcompare/internal/service"
	"roomcompare/internal/service/session"
)

// CompareHandler starts a comparison of the two uploaded images in the
// background. The outcome reaches the page over the websocket or /api/state.
func CompareHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}

		err := s.Submit()
		switch {
		case err == nil:
			writeJSON(w, http.StatusAccepted, s.Snapshot(), logger)
		case errors.Is(err, session.ErrMissingImages):
			writeError(w, http.StatusBadRequest, err, s, logger)
		case errors.Is(err, session.ErrTooManyRequests):
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, err, s, logger)
		case errors.Is(err, session.ErrClosed):
			writeError(w, http.StatusGone, err, nil, logger)
		default:
			logger.Error("Error starting comparison: %v", err)
			writeError(w, http.StatusInternalServerError, err, s, logger)
		}
	}
}
