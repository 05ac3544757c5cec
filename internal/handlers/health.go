package handlers

import (
	"net/http"

	"roomcompare/internal/logger"
	"roomcompare/internal/service"
)

// HealthHandler reports liveness together with a few counters.
func HealthHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": manager.GetStore().Len(),
			"clients":  manager.GetWebsocketService().ClientCount(),
			"history":  manager.HistoryEnabled(),
		}, logger)
	}
}
