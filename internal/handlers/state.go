package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomcompare/internal/dto"
	"roomcompare/internal/logger"
	"roomcompare/internal/model"
	"roomcompare/internal/service"
	"roomcompare/internal/service/session"
)

// StateHandler returns the current state of the session.
func StateHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), logger)
	}
}

// SelectHandler makes one result item the active selection.
func SelectHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}

		var req dto.SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err, s, logger)
			return
		}

		if err := s.Select(req.Category, req.Index); err != nil {
			writeMutationError(w, err, s, logger)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), logger)
	}
}

// ClearSelectionHandler removes the active selection.
func ClearSelectionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}
		if err := s.ClearSelection(); err != nil {
			writeMutationError(w, err, s, logger)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), logger)
	}
}

// GeometryHandler records the size an image is drawn at in the page.
func GeometryHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}

		var req dto.GeometryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err, s, logger)
			return
		}

		if err := s.ReportGeometry(req.Slot, req.Width, req.Height); err != nil {
			writeMutationError(w, err, s, logger)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), logger)
	}
}

// writeMutationError maps a failed state change to its status code. A session
// closed by expiry or eviction answers 410 so the page reloads.
func writeMutationError(w http.ResponseWriter, err error, s *session.Session, logger *logger.Logger) {
	switch {
	case errors.Is(err, session.ErrInvalidSelection), errors.Is(err, model.ErrUnknownSlot):
		writeError(w, http.StatusBadRequest, err, s, logger)
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusGone, err, nil, logger)
	default:
		logger.Error("Error updating session %s: %v", s.ID(), err)
		writeError(w, http.StatusInternalServerError, err, s, logger)
	}
}

// ResetHandler drops the images and results of the session.
func ResetHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}
		s.Reset()
		writeJSON(w, http.StatusOK, s.Snapshot(), logger)
	}
}

// AnnotatedHandler returns the source image of the selected item with its box drawn on it.
func AnnotatedHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}

		img, err := manager.Annotate(s)
		if errors.Is(err, service.ErrNoSelection) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Failed to annotate image: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Disposition", `attachment; filename="annotated.jpg"`)
		w.Write(img)
	}
}
