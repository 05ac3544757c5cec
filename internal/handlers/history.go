package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"roomcompare/internal/dto"
	"roomcompare/internal/logger"
	"roomcompare/internal/middleware"
	"roomcompare/internal/model"
	"roomcompare/internal/repository"
	"roomcompare/internal/service"
)

const topLabelsLimit = 10

// HistoryHandler lists the comparisons of the current session, newest first,
// with pagination and an optional "status" filter (ok or failed).
// Response is JSON of type HistoryData.
func HistoryHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !manager.HistoryEnabled() {
			http.Error(w, service.ErrHistoryDisabled.Error(), http.StatusNotFound)
			return
		}

		sessionID, ok := middleware.SessionID(r.Context())
		if !ok {
			http.Error(w, "Missing session", http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		filter := &repository.ComparisonFilter{
			SessionID: sessionID,
			Limit:     limit,
			Offset:    (page - 1) * limit,
		}
		switch status := model.ComparisonStatus(q.Get("status")); status {
		case "":
		case model.ComparisonOK, model.ComparisonFailed:
			filter.Status = status
		default:
			http.Error(w, "Unknown status filter", http.StatusBadRequest)
			return
		}

		comparisons, total, err := manager.History(filter)
		if err != nil {
			logger.Error("Error reading comparison history: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		topLabels, err := manager.TopLabels(sessionID, topLabelsLimit)
		if err != nil {
			logger.Error("Error reading label counts: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		infos := make([]dto.ComparisonInfo, 0, len(comparisons))
		for _, c := range comparisons {
			infos = append(infos, dto.NewComparisonInfo(c))
		}

		data := dto.HistoryData{
			Comparisons: infos,
			TopLabels:   topLabels,
			Length:      total,
			TotalPages:  (total + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}
		writeJSON(w, http.StatusOK, data, logger)
	}
}

// HistoryItemHandler returns one comparison of the current session with its items.
func HistoryItemHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := middleware.SessionID(r.Context())
		if !ok {
			http.Error(w, "Missing session", http.StatusBadRequest)
			return
		}

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Invalid comparison id", http.StatusBadRequest)
			return
		}

		c, err := manager.HistoryItem(sessionID, id)
		if errors.Is(err, service.ErrHistoryDisabled) || errors.Is(err, service.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Error reading comparison %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		items := c.Items
		if items == nil {
			items = []model.ComparisonItem{}
		}
		writeJSON(w, http.StatusOK, dto.ComparisonDetail{Comparison: dto.NewComparisonInfo(*c), Items: items}, logger)
	}
}

// ClearHistoryHandler deletes the stored comparisons of the current session.
func ClearHistoryHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := middleware.SessionID(r.Context())
		if !ok {
			http.Error(w, "Missing session", http.StatusBadRequest)
			return
		}

		removed, err := manager.ClearHistory(sessionID)
		if errors.Is(err, service.ErrHistoryDisabled) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Error clearing comparison history: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		logger.Info("Cleared %d comparison(s) of session %s", removed, sessionID)
		w.WriteHeader(http.StatusNoContent)
	}
}
