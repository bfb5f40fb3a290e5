// Package httpserver exposes the Command Facade (§4.9) over a thin
// go-chi/chi REST surface (SPEC_FULL.md §6), replacing the teacher's
// chi+huma pairing with chi alone — the facade's five commands plus the
// torrent passthrough are too small a surface to need huma's
// schema-generation layer.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/jav-meta/internal/config"
)

// Server wraps the chi router and its http.Server lifecycle.
type Server struct {
	config     config.ServerConfig
	router     *chi.Mux
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a Server wired to facade for the routes registered in
// handlers.go, with the teacher's middleware stack (request ID, logging,
// recovery, CORS) adapted onto plain chi.
func NewServer(cfg config.ServerConfig, facade commandFacade, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(RequestID)
	router.Use(NewLoggingMiddleware(logger))
	router.Use(Recovery(logger))
	router.Use(CORS(cfg.CORSOrigins))
	router.Use(chimiddleware.Compress(5))

	registerRoutes(router, facade)

	return &Server{config: cfg, router: router, logger: logger}
}

// Router exposes the underlying chi.Mux for tests and additional mounts.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins serving and blocks until the server stops or errors.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("starting HTTP server", slog.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests, bounded by
// config.ShutdownTimeout (falling back to 10s when unset).
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server", slog.Duration("timeout", timeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
