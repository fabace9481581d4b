// Package api provides the HTTP API for Sunchase.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/api/handler"
	"github.com/sunchase/sunchase/internal/api/middleware"
	"github.com/sunchase/sunchase/internal/auth"
	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/geocode"
	"github.com/sunchase/sunchase/internal/provider/resilience"
	"github.com/sunchase/sunchase/internal/recommend"
	"github.com/sunchase/sunchase/internal/scoring"
	"github.com/sunchase/sunchase/internal/trip"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	JWTService       *auth.JWTService
	Store            *dataset.Store
	ScoringService   *scoring.Service
	RecommendService *recommend.Service
	GeocodeService   *geocode.Service
	TripService      *trip.Service
	DistanceCache    *geo.DistanceCache
	Upstreams        *resilience.Registry
	Refresher        handler.Refresher
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "sunchase-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Store, cfg.ScoringService, cfg.GeocodeService, cfg.DistanceCache, cfg.Upstreams)
	destinationsHandler := handler.NewDestinationsHandler(cfg.Store, cfg.ScoringService, cfg.RecommendService, cfg.GeocodeService)
	geocodeHandler := handler.NewGeocodeHandler(cfg.GeocodeService)
	mapHandler := handler.NewMapHandler(cfg.Store)
	tripsHandler := handler.NewTripsHandler(cfg.TripService)
	adminHandler := handler.NewAdminHandler(cfg.Logger, cfg.Refresher, cfg.ScoringService, cfg.GeocodeService, cfg.DistanceCache)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Destination search - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/destinations:search", destinationsHandler.Search)

		// Destination lookups (public) - standard rate limiting
		r.Route("/destinations", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/closest", destinationsHandler.Closest)
			r.Get("/within", destinationsHandler.Within)
			r.Get("/{name}/score", destinationsHandler.Score)
		})

		// Geocoding (public) - standard rate limiting
		r.With(standardRateLimit).Get("/geocode", geocodeHandler.Lookup)
		r.With(standardRateLimit).Get("/geocode/reverse", geocodeHandler.Reverse)

		// Map overlay (public) - standard rate limiting
		r.With(standardRateLimit).Get("/map/cells", mapHandler.Cells)

		// Trip endpoints (authenticated) - user-based rate limiting
		r.Route("/trips", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", tripsHandler.ListTrips)
			r.Post("/", tripsHandler.CreateTrip)
			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", tripsHandler.GetTrip)
				r.Put("/", tripsHandler.UpdateTrip)
				r.Delete("/", tripsHandler.DeleteTrip)
			})
		})

		// Admin endpoints (admin tokens only)
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())
			r.Use(middleware.RateLimitByUser(middleware.AdminRateLimit))
			r.Post("/refresh", adminHandler.TriggerRefresh)
			r.Post("/caches/invalidate", adminHandler.InvalidateCaches)
		})
	})

	return r
}
