package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/interestmap"
	"github.com/matzehuels/interestmap/pkg/pipeline"
	"github.com/matzehuels/interestmap/pkg/store"
)

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 1 << 20

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	// Store keeps saved snapshots. Nil means an in-memory store.
	Store store.Store

	// Runner executes POST /layouts. Nil means an uncached runner.
	Runner *pipeline.Runner

	// MapDefaults are the options request options are layered on.
	MapDefaults interestmap.Options

	// MapOptions are passed to every map the server creates.
	MapOptions []interestmap.Option

	MaxBodyBytes int64
	Logger       *log.Logger
}

// Server is the HTTP host for live maps.
type Server struct {
	cfg    Config
	maps   *registry
	logger *log.Logger
	router chi.Router
}

// New creates a server. Call Close to destroy its maps.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		cfg:    cfg,
		maps:   newRegistry(),
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    errors.ErrCodeUnsupported,
			Message: "method " + r.Method + " not allowed on " + r.URL.Path,
		})
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/maps", func(r chi.Router) {
		r.Post("/", s.handleCreateMap)
		r.Get("/", s.handleListMaps)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetMap)
			r.Delete("/", s.handleDestroyMap)
			r.Put("/size", s.handleResize)
			r.Post("/redraw", s.handleRedraw)
			r.Post("/drag", s.handleDrag)
			r.Post("/snapshots", s.handleSaveSnapshot)
		})
	})

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Get("/{id}", s.handleGetSnapshot)
		r.Delete("/{id}", s.handleDeleteSnapshot)
	})

	r.Post("/layouts", s.handleLayout)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Maps returns the number of live maps.
func (s *Server) Maps() int { return s.maps.len() }

// Close destroys every live map.
func (s *Server) Close() error {
	n := s.maps.closeAll()
	if n > 0 {
		s.logger.Debug("destroyed live maps", "count", n)
	}
	return nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// destroys all maps.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.Close()
	return err
}
