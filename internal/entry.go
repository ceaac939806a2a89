// Package internal provides the server initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/cognitio/internal/api"
	"github.com/starford/cognitio/internal/cheatsheet"
	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/editor"
	"github.com/starford/cognitio/internal/index"
	"github.com/starford/cognitio/internal/sse"
	"github.com/starford/cognitio/internal/storage"
	"github.com/starford/cognitio/internal/watch"
)

// Run starts the HTTP server, the search index and the forest watch with the
// given options. It returns when ctx is cancelled or a signal is received.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{stdout: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.cell == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.cell.Load()
	srv := cfg.Server

	// Initialize structured JSON logger.
	logger, closeLog, err := NewLogger(app.stdout, srv.LogLevel, srv.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("config_path", app.cell.Path()),
		slog.Int("roots", len(cfg.Cheatsheets)),
		slog.String("http_address", srv.HTTP.Address()),
		slog.String("index_path", srv.Index.Path),
		slog.String("log_level", srv.LogLevel.String()))

	store := storage.NewFS(app.cell.Roots)

	// Initialize SQLite index.
	if err := os.MkdirAll(filepath.Dir(srv.Index.Path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	db, err := index.Open(srv.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc := cheatsheet.NewService(app.cell, store, db, logger)

	// Run initial sync.
	if err := svc.Resync(); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	launcher := editor.New(app.cell, logger)
	apiRouter := api.NewRouter(svc, launcher, srv.Auth.AuthEnabled(), srv.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              srv.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", srv.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Start the forest watch; every event updates the index, then the browser.
	agg := watch.New(app.cell, logger)
	g.Go(func() error {
		return agg.Run(gCtx, func(ev watch.Event) {
			if err := svc.Apply(ev); err != nil {
				logger.Warn("index update failed", slog.String("error", err.Error()))
			}
			switch e := ev.(type) {
			case watch.ChangeEvent:
				broker.PublishFileChanged(e.Path, string(e.Kind))
			case watch.ConfigReloaded:
				broker.PublishConfigChanged(e.Config)
			}
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		cancel()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// NewLogger returns a JSON logger writing to w and, when logFile is set, to
// that file as well. The returned func closes the file.
func NewLogger(w io.Writer, level slog.Level, logFile string) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }
	if logFile != "" {
		path := config.ExpandPath(logFile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closeFn = f.Close
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closeFn, nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
