// Package server exposes catalog operations over HTTP.
//
// All responses are JSON except index downloads requested with
// ?format=csv. Errors use a single shape:
//
//	{"code": "ORGANIZATION_NOT_FOUND", "message": "...", "suggestions": ["..."]}
//
// Routes:
//
//	GET /healthz
//	GET /metrics (when Options.Metrics is set)
//	GET /organizations
//	GET /organizations/search?q=
//	GET /organizations/{name}?datasets=true
//	GET /organizations/{name}/packages
//	GET /organizations/{name}/index?mode=bounded|full&format=json|csv
//	GET /packages
//	GET /packages/search?q=
//	GET /packages/{id}
//	GET /packages/{id}/resources?format=json|csv
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ckanindex/pkg/catalog"
	"github.com/matzehuels/ckanindex/pkg/observability"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	Crawl  catalog.CrawlOptions // Used by ?mode=full index requests

	// Metrics, when set, records every request and is served at /metrics.
	Metrics *observability.Metrics
}

// Server is an http.Handler serving one catalog.
type Server struct {
	catalog *catalog.Catalog
	logger  *log.Logger
	crawl   catalog.CrawlOptions
	metrics *observability.Metrics
	router  chi.Router
}

// New creates a server for cat.
func New(cat *catalog.Catalog, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		catalog: cat,
		logger:  logger,
		crawl:   opts.Crawl,
		metrics: opts.Metrics,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	if s.metrics != nil {
		r.Use(s.measure)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", s.listOrganizations)
		r.Get("/search", s.searchOrganizations)
		r.Get("/{name}", s.showOrganization)
		r.Get("/{name}/packages", s.organizationPackages)
		r.Get("/{name}/index", s.organizationIndex)
	})

	r.Route("/packages", func(r chi.Router) {
		r.Get("/", s.listPackages)
		r.Get("/search", s.searchPackages)
		r.Get("/{id}", s.showPackage)
		r.Get("/{id}/resources", s.packageResources)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
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

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
