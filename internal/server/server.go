// Package server exposes the planner over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness
//	GET  /version                 build information
//	GET  /metrics                 Prometheus metrics (when a gatherer is set)
//	POST /v1/plans/balance        plan a balance
//	POST /v1/plans/load           plan a load/unload request
//	GET  /v1/plans                list archived plans (?kind=&limit=)
//	GET  /v1/plans/{id}           fetch an archived plan
//	POST /v1/plans/{id}/verify    replay an archived plan on its manifest
//
// Identical concurrent plan requests share one search.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/store"
)

// Server defaults.
const (
	DefaultRequestTimeout = 2 * time.Minute
	maxBodyBytes          = 1 << 20
	shutdownGrace         = 10 * time.Second
)

// Options configure a Server.
type Options struct {
	Runner *pipeline.Runner
	Store  store.Store

	// Defaults are the planner settings applied to every request.
	Defaults pipeline.Options

	// RequestTimeout bounds a single search.
	RequestTimeout time.Duration

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	Logger *log.Logger
}

// Server handles plan requests.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	defaults pipeline.Options
	timeout  time.Duration
	gatherer prometheus.Gatherer
	logger   *log.Logger

	validate *validator.Validate
	flight   singleflight.Group
}

// New creates a Server. A nil runner gets an uncached runner, a nil store
// an in-memory archive.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{
		runner:   opts.Runner,
		store:    opts.Store,
		defaults: opts.Defaults,
		timeout:  opts.RequestTimeout,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/plans", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/balance", s.handleBalance)
		r.Post("/load", s.handleLoad)
		r.Get("/{id}", s.handleGet)
		r.Post("/{id}/verify", s.handleVerify)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
