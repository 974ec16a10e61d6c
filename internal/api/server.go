// Package api provides the HTTP API server and handlers for the Shelfline application.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelflineapp/shelfline-server/internal/http/response"
	"github.com/shelflineapp/shelfline-server/internal/service"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// Services bundles the application services the server depends on.
type Services struct {
	Instance *service.InstanceService
	Auth     *service.AuthService
	Resolver *service.ResolverService
	Library  *service.LibraryService
	Catalog  *service.CatalogService
	Search   *service.SearchService
	Stats    *service.StatsService
	Covers   *service.CoverService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	services    Services
	authLimiter *RateLimiter
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store store.Store, services Services, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		// Credential endpoints get a tight per-IP budget.
		authLimiter: NewRateLimiter(20, time.Minute, 5),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.metricsMiddleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/instance", s.handleGetInstance)

		// Auth endpoints (public, rate limited).
		r.Route("/auth", func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.authLimiter, s.logger))
			r.Post("/setup", s.handleSetup)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Barcode resolution (lookup preview, no persistence).
		r.Route("/resolve", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleResolveBarcode)
		})

		// Personal library.
		r.Route("/library", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleAddByBarcode)
			r.Post("/manual", s.handleAddManual)
			r.Get("/", s.handleListLibrary)
			r.Get("/{id}", s.handleGetEntry)
			r.Patch("/{id}", s.handleUpdateEntry)
			r.Delete("/{id}", s.handleRemoveEntry)
			r.Post("/{id}/plays", s.handleLogPlay)
			r.Delete("/{id}/plays/{playID}", s.handleRemovePlay)
		})

		// Shared catalog (read-only for regular users).
		r.Route("/catalog", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListCatalog)
			r.Get("/{id}", s.handleGetGame)
		})

		r.Route("/search", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleSearch)
			r.Get("/bgg", s.handleSearchBGG)
		})

		r.With(s.requireAuth).Get("/stats", s.handleGetStats)

		r.Get("/covers/{gameID}", s.handleGetCover)

		// Admin catalog curation.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Use(s.requireAdmin)
			r.Patch("/catalog/{id}", s.handleUpdateGame)
			r.Delete("/catalog/{id}", s.handleDeleteGame)
			r.Post("/search/reindex", s.handleReindex)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// handleGetInstance returns the server identity and setup state.
func (s *Server) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	instance, err := s.services.Instance.GetInstance(ctx)
	if err != nil {
		s.logger.Error("failed to get instance", "error", err)
		response.InternalError(w, "Failed to load server instance", s.logger)
		return
	}

	setupRequired, err := s.services.Instance.IsSetupRequired(ctx)
	if err != nil {
		s.logger.Error("failed to check setup state", "error", err)
		response.InternalError(w, "Failed to load server instance", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"id":             instance.ID,
		"name":           instance.Name,
		"remote_url":     instance.RemoteURL,
		"setup_required": setupRequired,
	}, s.logger)
}

// parsePaginationParams parses pagination parameters from the query string.
func parsePaginationParams(r *http.Request) store.PaginationParams {
	var params store.PaginationParams

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}
	params.Cursor = r.URL.Query().Get("cursor")
	params.Validate()

	return params
}
