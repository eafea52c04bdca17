// Package httpserver provides the read-only HTTP API of the journal
// federation service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/observability"
)

// Federation is the query surface served by the API.
type Federation interface {
	GetEntityByID(ctx context.Context, id string) (domain.Entity, bool)
	GetAllJournals(ctx context.Context) []*domain.Journal
	GetJournalsWithTitle(ctx context.Context, fragment string) []*domain.Journal
	GetJournalsPublishedBy(ctx context.Context, fragment string) []*domain.Journal
	GetJournalsWithLicense(ctx context.Context, licence string) []*domain.Journal
	GetJournalsWithAPC(ctx context.Context) []*domain.Journal
	GetJournalsWithDOAJSeal(ctx context.Context) []*domain.Journal
	GetAllCategories(ctx context.Context) []*domain.Category
	GetAllAreas(ctx context.Context) []*domain.Area
	GetCategoriesWithQuartile(ctx context.Context, quartiles []string) []*domain.Category
	GetCategoriesAssignedToAreas(ctx context.Context, areas []string) []*domain.Category
	GetAreasAssignedToCategories(ctx context.Context, categoryIDs []string) []*domain.Area
	JournalsInCategoriesWithQuartile(ctx context.Context, categoryIDs, quartiles []string) []*domain.Journal
	JournalsInAreasWithLicense(ctx context.Context, areas, licences []string) []*domain.Journal
	DiamondJournalsInAreasAndCategoriesWithQuartile(ctx context.Context, areas, categoryIDs, quartiles []string) []*domain.Journal
}

// ReadinessCheck probes one backend for /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	federation Federation
	checks     []ReadinessCheck
	validate   *validator.Validate
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address            string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(
	cfg Config,
	federation Federation,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	checks ...ReadinessCheck,
) *Server {
	s := &Server{
		federation: federation,
		checks:     checks,
		validate:   newValidator(),
		metrics:    metrics,
		logger:     logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      corsHandler.Handler(s.router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(jsonContentTypeMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/entities/{id}", s.getEntity)

		r.Route("/journals", func(r chi.Router) {
			r.Get("/", s.listJournals)
			r.Get("/by-title", s.journalsWithTitle)
			r.Get("/by-publisher", s.journalsPublishedBy)
			r.Get("/by-licence", s.journalsWithLicence)
			r.Get("/with-apc", s.journalsWithAPC)
			r.Get("/with-doaj-seal", s.journalsWithDOAJSeal)
			r.Get("/in-categories", s.journalsInCategories)
			r.Get("/in-areas", s.journalsInAreas)
			r.Get("/diamond", s.diamondJournals)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Get("/by-quartile", s.categoriesWithQuartile)
			r.Get("/by-area", s.categoriesAssignedToAreas)
		})

		r.Route("/areas", func(r chi.Router) {
			r.Get("/", s.listAreas)
			r.Get("/by-category", s.areasAssignedToCategories)
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler runs every readiness check. Any failing backend makes the
// service not ready, although queries would still answer from the others.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	backends := make(map[string]string, len(s.checks))
	ready := true
	for _, c := range s.checks {
		if err := c.Check(r.Context()); err != nil {
			s.logger.Warn().Err(err).Str("backend", c.Name).Msg("readiness check failed")
			backends[c.Name] = "unhealthy"
			ready = false
			continue
		}
		backends[c.Name] = "healthy"
	}

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Backends: backends})
		return
	}
	writeJSON(w, http.StatusOK, readinessResponse{Status: "ready", Backends: backends})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
