// Package server exposes the lint engine over HTTP.
//
// One engine, and so one rule catalog, is shared by every request.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/xmirlint/internal/engine"
	"github.com/leapstack-labs/xmirlint/internal/watch"
)

// DefaultMaxBodyBytes bounds POST /lint documents.
const DefaultMaxBodyBytes = 32 << 20

// Config holds configuration for the HTTP server.
type Config struct {
	Engine *engine.Engine
	Port   int
	// WatchRoots are re-linted when XMIR files under them change (optional)
	WatchRoots   []string
	MaxBodyBytes int64
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Server serves the lint API.
type Server struct {
	engine       *engine.Engine
	port         int
	watchRoots   []string
	maxBodyBytes int64
	logger       *slog.Logger
	notifier     *Notifier
}

// New creates a server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Server{
		engine:       cfg.Engine,
		port:         cfg.Port,
		watchRoots:   cfg.WatchRoots,
		maxBodyBytes: maxBody,
		logger:       logger,
		notifier:     NewNotifier(),
	}
}

// Notifier returns the notifier pinged after every lint run.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Post("/lint", s.handleLint)
	r.Get("/rules", s.handleRules)
	r.Get("/rules/{name}", s.handleRule)
	r.Get("/runs", s.handleRuns)
	r.Get("/runs/{id}", s.handleRun)
	r.Get("/events", s.handleEvents)

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", slog.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if len(s.watchRoots) > 0 {
		w, err := watch.New(watch.Options{
			Roots:  s.watchRoots,
			Exts:   []string{engine.Ext},
			Logger: s.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to watch %v: %w", s.watchRoots, err)
		}
		eg.Go(func() error {
			return w.Run(egctx, s.relint)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// relint analyzes changed files and notifies listeners.
func (s *Server) relint(ctx context.Context, changed []string) {
	reports, err := s.engine.Lint(ctx, changed)
	if err != nil {
		s.logger.Error("re-lint failed", slog.String("error", err.Error()))
		return
	}
	for _, fr := range reports {
		if fr.Err != nil {
			s.logger.Warn("file could not be analyzed",
				slog.String("path", fr.Path),
				slog.String("error", fr.Err.Error()))
			continue
		}
		s.logger.Info("re-linted",
			slog.String("path", fr.Path),
			slog.Int("defects", len(fr.Report.Defects)))
	}
	s.notifier.Broadcast()
}
