// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hollybrook/arbor/internal/api"
	"github.com/hollybrook/arbor/internal/content"
	"github.com/hollybrook/arbor/internal/contentservice"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/index"
	"github.com/hollybrook/arbor/internal/mcpserver"
	"github.com/hollybrook/arbor/internal/pathnav"
	"github.com/hollybrook/arbor/internal/render"
	"github.com/hollybrook/arbor/internal/sse"
	"github.com/hollybrook/arbor/internal/storage"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("garden_path", cfg.Garden.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, svc, graphSvc, explore, provider, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	apiRouter := api.NewRouter(svc, graphSvc, explore, render.New(), provider,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Garden.Path)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Published assets.
	ah := api.NewAssetHandler(cfg.Garden.Path)
	r.Get("/assets/{filename}", ah.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher. External edits invalidate the link graph and
	// notify SSE clients.
	g.Go(func() error {
		err := index.Watch(gCtx, db, store, cfg.Garden.Path, logger, func(kind, path string) {
			graphSvc.RefreshCache()
			broker.PublishContentEvent(kind, path, content.SectionFromPath(path))
		})
		if err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server with the given options.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Log to stderr: stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, db, svc, graphSvc, explore, _, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(store, svc, graphSvc, explore)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

func buildServices(cfg *Config, logger *slog.Logger) (storage.Provider, *index.DB, *contentservice.Service, *graph.Service, *pathnav.Service, content.Provider, error) {
	if err := os.MkdirAll(cfg.Garden.Path, 0o755); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("create garden dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Garden.Path)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	provider := content.NewFSProvider(store)
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	graphSvc := graph.New(provider, logger, ttl, cfg.Cache.MaxEntries)
	explore := pathnav.New(provider, cfg.Explore.Sections, logger)
	svc := contentservice.NewService(store, db, graphSvc)

	return store, db, svc, graphSvc, explore, provider, nil
}
