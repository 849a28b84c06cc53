// Package api serves the catalog, layouts and rendered diagrams over HTTP.
//
// All endpoints return JSON except /api/render.svg and /metrics. Errors use
// a single shape, {"error": "...", "code": "..."}, with 400 for invalid
// input, 404 for unknown records and 500 for everything else.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// maxBodyBytes bounds request bodies (POST /api/systems).
const maxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// RequestTimeout cancels the request context after this long.
	// Zero disables the timeout.
	RequestTimeout time.Duration

	// Metrics, if set, is mounted at /metrics.
	Metrics http.Handler
}

// Server is the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: opts.Runner, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found", Code: string(errs.ErrCodeNotFound)})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: string(errs.ErrCodeInvalidInput)})
	})

	r.Get("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/systems", s.handleListSystems)
		r.Post("/systems", s.handleSaveSystems)
		r.Get("/connections", s.handleListConnections)

		r.Get("/journeys", s.handleListJourneys)
		r.Get("/journeys/groups", s.handleJourneyGroups)
		r.Get("/journeys/all", s.handleAllJourneys)
		r.Get("/journeys/*", s.handleJourney)

		r.Get("/layout", s.handleLayout)
		r.Get("/render.svg", s.handleRender)
		r.Get("/search/systems", s.handleSearchSystems)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// httpServer builds the listener for addr. Request contexts carry ctx's
// values but not its cancellation, so Shutdown can drain in-flight requests.
func (s *Server) httpServer(ctx context.Context, addr string) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := s.httpServer(ctx, addr)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
