package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"roomcompare/internal/config"
	"roomcompare/internal/logger"
	"roomcompare/internal/repository"
	"roomcompare/internal/repository/sqlite"
	"roomcompare/internal/routes"
	"roomcompare/internal/service"
	"roomcompare/internal/service/annotate"
	"roomcompare/internal/service/compare"
	"roomcompare/internal/service/session"
	"roomcompare/internal/service/websocket"

	"golang.org/x/sync/errgroup"
)

const (
	sweepInterval    = time.Minute
	pruneInterval    = time.Hour
	shutdownDeadline = 10 * time.Second
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	store      *session.Store
	hubService *websocket.HubService
	manager    *service.Manager
}

func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg)

	var (
		db      *sqlite.DB
		history repository.ComparisonRepository
	)
	if cfg.DatabasePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		var err error
		db, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		history = sqlite.NewComparisonRepository(db)
	}

	client := compare.NewClient(cfg.APIURL, cfg.CompareTimeout)
	store := session.NewStore(session.Options{
		Comparer:    client,
		History:     history,
		Logger:      log,
		MinInterval: cfg.CompareMinInterval,
	}, cfg.SessionTTL)
	store.SetMaxSessions(cfg.MaxSessions)
	hub := websocket.NewHubService(log)
	renderer := annotate.NewRenderer(log)

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		store:      store,
		hubService: hub,
		manager:    service.NewManager(store, hub, renderer, history, log),
	}, nil
}

// Run serves HTTP and the background services until ctx is done, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	router, err := routes.SetupRoutes(a.manager, a.config, a.logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Start background services
	g.Go(func() error { return a.hubService.Run(ctx) })
	g.Go(func() error { return a.store.Run(ctx, sweepInterval) })
	g.Go(func() error {
		retention := time.Duration(a.config.HistoryRetentionDays) * 24 * time.Hour
		return a.manager.RunHistoryPruner(ctx, pruneInterval, retention)
	})

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	fmt.Printf("🚀 Room Compare Server\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🔗 Comparison service: %s/compare\n", a.config.APIURL)
	if a.db != nil {
		fmt.Printf("🗄️  History: %s\n", a.config.DatabasePath)
	}

	return g.Wait()
}

func (a *App) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Error closing database: %v", err)
		}
	}
	a.logger.Close()
}
