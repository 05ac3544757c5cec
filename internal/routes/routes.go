package routes

import (
	"net/http"

	"roomcompare/internal/config"
	"roomcompare/internal/handlers"
	"roomcompare/internal/logger"
	"roomcompare/internal/middleware"
	"roomcompare/internal/service"
	"roomcompare/internal/web"
)

// SetupRoutes registers the page, static files and API endpoints, and wraps
// the mux with the session and logging middleware.
func SetupRoutes(manager *service.Manager, cfg *config.Config, logger *logger.Logger) (http.Handler, error) {
	mux := http.NewServeMux()

	// Page and static files
	static, err := web.StaticHandler()
	if err != nil {
		return nil, err
	}
	mux.Handle("GET /static/", static)
	mux.HandleFunc("GET /{$}", web.IndexHandler(cfg, logger))

	// Images
	mux.HandleFunc("POST /api/images", handlers.UploadImageHandler(manager, cfg, logger))
	mux.HandleFunc("GET /api/images", handlers.ViewImageHandler(manager, logger))

	// Comparison and selection
	mux.HandleFunc("POST /api/compare", handlers.CompareHandler(manager, logger))
	mux.HandleFunc("GET /api/state", handlers.StateHandler(manager, logger))
	mux.HandleFunc("POST /api/select", handlers.SelectHandler(manager, logger))
	mux.HandleFunc("POST /api/select/clear", handlers.ClearSelectionHandler(manager, logger))
	mux.HandleFunc("POST /api/geometry", handlers.GeometryHandler(manager, logger))
	mux.HandleFunc("POST /api/reset", handlers.ResetHandler(manager, logger))
	mux.HandleFunc("GET /api/annotated", handlers.AnnotatedHandler(manager, logger))
	mux.HandleFunc("GET /api/ws", handlers.ViewWebsocketHandler(manager, logger))

	// History
	mux.HandleFunc("GET /api/history", handlers.HistoryHandler(manager, logger))
	mux.HandleFunc("GET /api/history/{id}", handlers.HistoryItemHandler(manager, logger))
	mux.HandleFunc("DELETE /api/history", handlers.ClearHistoryHandler(manager, logger))

	// Log endpoints
	mux.HandleFunc("GET /logs/{level}", handlers.ShowLogsHandler(cfg))
	mux.HandleFunc("POST /logs/{level}/clear", handlers.ClearLogsHandler(logger))

	mux.HandleFunc("GET /healthz", handlers.HealthHandler(manager, logger))

	// Apply middleware
	return middleware.LoggingMiddleware(logger)(middleware.SessionMiddleware(mux)), nil
}
