package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/metrics"
	"github.com/terra-clan/learning-roadmaps/internal/probes"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
	"github.com/terra-clan/learning-roadmaps/internal/site"
)

// Reloader rebuilds and publishes the registry on demand
type Reloader interface {
	Reload(ctx context.Context) (*registry.Registry, error)
}

// Deps are the components the server routes to. Pages, Reloader, Hub and
// Metrics are optional.
type Deps struct {
	Holder   *registry.Holder
	Probes   *probes.Registry
	Pages    *site.Handler
	Reloader Reloader
	Hub      *Hub
	Metrics  *metrics.Metrics
}

// Server represents the HTTP server for the API and the site
type Server struct {
	config    config.ServerConfig
	router    *chi.Mux
	holder    *registry.Holder
	probes    *probes.Registry
	pages     *site.Handler
	reloader  Reloader
	hub       *Hub
	metrics   *metrics.Metrics
	adminAuth *AdminAuth
}

// NewServer creates a new server. Admin routes are mounted only when an
// admin key is configured.
func NewServer(cfg config.ServerConfig, admin config.AdminConfig, deps Deps) *Server {
	s := &Server{
		config:   cfg,
		holder:   deps.Holder,
		probes:   deps.Probes,
		pages:    deps.Pages,
		reloader: deps.Reloader,
		hub:      deps.Hub,
		metrics:  deps.Metrics,
	}
	if s.probes == nil {
		s.probes = probes.NewRegistry()
	}
	if admin.APIKey != "" {
		s.adminAuth = NewAdminAuth(admin.APIKey)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Content-Revision", "ETag"},
		MaxAge:         300,
	}))

	// Live reload keeps its connection open, so it sits outside the timeout
	if s.hub != nil {
		r.Get("/ws/livereload", s.hub.ServeWS(func() string {
			return s.holder.Load().Revision()
		}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(s.pinRegistry)

			r.Route("/roadmaps", func(r chi.Router) {
				r.Get("/", s.handleListRoadmaps)

				r.Route("/{slug}", func(r chi.Router) {
					r.Get("/", s.handleGetRoadmap)
					r.Get("/phases", s.handleListPhases)
					r.Get("/phases/{phaseId}", s.handleGetPhase)
					r.Get("/phases/{phaseId}/topics/{topicId}", s.handleGetTopic)
				})
			})

			r.Get("/search", s.handleSearch)

			if s.adminAuth != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Use(s.adminAuth.Authenticate)

					if s.reloader != nil {
						r.Post("/reload", s.handleReload)
					}
					r.Get("/issues", s.handleIssues)
				})
			}
		})

		if s.pages != nil {
			s.pages.Routes(r)
		}
	})

	r.NotFound(s.handleNotFound)

	s.router = r
}
