// Package api provides the HTTP surface of the concierge service.
//
// Endpoints:
//
//	POST /api/ask  →  run one question through the pipeline
//	GET  /health   →  liveness probe
//	GET  /ready    →  readiness probe (pings the database)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: logging and panic recovery
//   - ratelimit.go: per-IP token bucket limiting
//   - health.go: probes
//   - ask.go: the question endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsuyoshi-3110/concierge/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8740"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout = 60 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second

	// defaultRatePerSecond and defaultBurst bound per-IP request rates.
	defaultRatePerSecond = 5
	defaultBurst         = 10
)

// Server is the HTTP server for the concierge API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health *HealthHandler
	ask    *AskHandler

	limiter    *rateLimiter
	trustProxy bool
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(handler QueryHandler, notifier EscalationNotifier, pool *pgxpool.Pool, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		logger:  logger,
		health:  NewHealthHandler(pool, logger),
		ask:     NewAskHandler(handler, notifier, logger),
		limiter: newRateLimiter(defaultRatePerSecond, defaultBurst),
	}

	s.health.RegisterRoutes(mux)
	s.ask.RegisterRoutes(mux)

	return s
}

// TrustProxy makes client-IP extraction honor X-Real-IP and
// X-Forwarded-For. Only enable behind a reverse proxy.
func (s *Server) TrustProxy() {
	s.trustProxy = true
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → rate limit → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.limiter, s.trustProxy, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
