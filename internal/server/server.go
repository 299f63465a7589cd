// Package server exposes a time-entry store over HTTP so several clocks can
// share one history.
package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"clockin/internal/logging"
	"clockin/internal/repository"
	"clockin/internal/validation"
)

const shutdownTimeout = 5 * time.Second

// Server handles HTTP requests for the attendance API
type Server struct {
	repo           repository.TimeEntryRepository
	validator      *validation.TimeEntryValidator
	hub            *Hub
	logger         *slog.Logger
	allowedOrigins []string
	queryTimeout   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowedOrigins lists browser origins allowed besides localhost.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithQueryTimeout bounds every store call made by a handler.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithValidator replaces the default entry validator.
func WithValidator(v *validation.TimeEntryValidator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// New creates a new API server backed by repo
func New(repo repository.TimeEntryRepository, opts ...Option) *Server {
	s := &Server{
		repo:         repo,
		validator:    validation.NewTimeEntryValidator(),
		hub:          NewHub(),
		logger:       logging.Discard(),
		queryTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the live feed fan-out.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("GET /api/timeEntries", s.listTimeEntries)
	mux.HandleFunc("POST /api/timeEntries", s.createTimeEntry)
	mux.HandleFunc("GET /api/timeEntries/ws", s.streamTimeEntries)

	return requestLogger(s.logger)(Cors(s.allowedOrigins, true)(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
