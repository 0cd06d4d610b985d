// Package server implements the waymark HTTP API.
//
// The API exposes the same operations as the CLI: list snapshots, fetch
// content, manage the saved library, and submit bulk jobs. Errors are
// shaped through pkg/errors codes into JSON envelopes; request logging
// runs on the shared charm logger.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wbkit/waymark/pkg/queue"
	"github.com/wbkit/waymark/pkg/store"
	"github.com/wbkit/waymark/pkg/wayback"
)

// shutdownTimeout bounds graceful shutdown after the run context ends.
const shutdownTimeout = 10 * time.Second

// Config wires the server's collaborators. Client is required; Store and
// Queue may be nil, which disables the library and job endpoints with a
// 503 instead of a panic.
type Config struct {
	Addr   string
	Client *wayback.Client
	Store  store.Store
	Queue  queue.Queue
	Logger *log.Logger
}

// Server is the waymark HTTP API.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New builds the server and its route table.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshots", s.handleSnapshots)
		r.Get("/content", s.handleContent)

		r.Get("/library", s.handleLibraryList)
		r.Get("/library/{id}", s.handleLibraryGet)
		r.Delete("/library/{id}", s.handleLibraryDelete)

		r.Post("/jobs", s.handleJobCreate)
		r.Get("/jobs/{id}", s.handleJobGet)
	})

	s.router = r
	return s
}

// Handler returns the route table, primarily for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
