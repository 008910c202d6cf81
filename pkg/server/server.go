// Package server exposes the diagrams over HTTP.
//
// Routes:
//
//	GET /healthz                                   liveness and build info
//	GET /api/v1/diagrams                           list registered diagrams
//	GET /api/v1/diagrams/{name}                    structure report of one diagram
//	GET /api/v1/diagrams/{name}/source             DOT source
//	GET /api/v1/diagrams/{name}/image.{format}     rendered image (png, svg, jpg, pdf, dot)
//
// Images go through the same [pipeline.Runner] as the CLI, so they share its
// artifact cache. Add ?refresh=1 to bypass cached artifacts.
//
// Every response carries an X-Request-ID header; errors are JSON objects with
// a machine-readable code.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	"github.com/matzehuels/snhsdiag/pkg/pipeline"
)

// Options configures the HTTP listener.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves a fixed set of diagram definitions.
type Server struct {
	runner *pipeline.Runner
	defs   []builtin.Definition
	logger *log.Logger
	router chi.Router
}

// New creates a server for defs. Names and aliases are resolved in order,
// so earlier definitions shadow later ones.
func New(runner *pipeline.Runner, defs []builtin.Definition, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{
		runner: runner,
		defs:   slices.Clone(defs),
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1/diagrams", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleInspect)
			r.Get("/source", s.handleSource)
			r.Get("/image.{format}", s.handleImage)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
	return r
}

// lookup finds a definition by name or alias.
func (s *Server) lookup(name string) (builtin.Definition, bool) {
	for _, d := range s.defs {
		if d.Name == name || slices.Contains(d.Aliases, name) {
			return d, true
		}
	}
	return builtin.Definition{}, false
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, opts Options) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", opts.Addr, "diagrams", len(s.defs))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
