// Package main provides the entrypoint for the Sunchase API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/api"
	"github.com/sunchase/sunchase/internal/api/middleware"
	"github.com/sunchase/sunchase/internal/auth"
	"github.com/sunchase/sunchase/internal/config"
	"github.com/sunchase/sunchase/internal/database"
	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/geocode"
	"github.com/sunchase/sunchase/internal/provider/resilience"
	"github.com/sunchase/sunchase/internal/recommend"
	"github.com/sunchase/sunchase/internal/scoring"
	"github.com/sunchase/sunchase/internal/spatial"
	"github.com/sunchase/sunchase/internal/telemetry"
	"github.com/sunchase/sunchase/internal/trip"
	"github.com/sunchase/sunchase/internal/weatherapi"
	"github.com/sunchase/sunchase/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const devSigningKey = "local-dev-signing-key-change-in-production"

func main() {
	const serviceName = "sunchase-api"

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stdout)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup structured logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting Sunchase API")

	if cfg.Auth.SigningKey == devSigningKey {
		if !cfg.IsDevelopment() {
			log.Fatal().Msg("JWT_SIGNING_KEY must be set outside development")
		}
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := cfg.Database.PoolConfig()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT service
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.Auth.SigningKey,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
	})

	// Initialize trip repository and service
	tripService := trip.NewService(trip.NewPostgresRepository(pool))
	log.Info().Msg("trip service initialized")

	// Upstream clients share one registry so the ops endpoints can
	// report breaker state.
	upstreams := resilience.NewRegistry()

	geocodeHTTP := resilience.NewClient(resilience.ClientConfig{Name: geocode.ProviderName, Recorder: upstreams})
	upstreams.Register(geocode.ProviderName, geocodeHTTP)
	geocodeService := geocode.NewService(geocode.ServiceConfig{
		Client: geocode.NewClient(geocode.ClientConfig{
			BaseURL:    cfg.Geocode.BaseURL,
			UserAgent:  cfg.Geocode.UserAgent,
			HTTPClient: geocodeHTTP,
			Logger:     log,
		}),
		Logger: log,
	})

	var fetcher worker.ForecastFetcher
	if cfg.Dataset.FetchLive {
		weatherHTTP := resilience.NewClient(resilience.ClientConfig{Name: weatherapi.ProviderName, Recorder: upstreams})
		upstreams.Register(weatherapi.ProviderName, weatherHTTP)
		fetcher = weatherapi.NewClient(weatherapi.ClientConfig{
			APIKey:       cfg.WeatherAPI.Key,
			BaseURL:      cfg.WeatherAPI.BaseURL,
			ForecastDays: cfg.WeatherAPI.ForecastDays,
			HTTPClient:   weatherHTTP,
			Logger:       log,
		})
	}

	// Dataset store and scoring pipeline
	store := dataset.NewStore()
	distanceCache := geo.NewDistanceCache(geo.DistanceCacheConfig{})
	scoringService := scoring.NewService(scoring.ServiceConfig{Logger: log})
	recommendService := recommend.NewService(recommend.ServiceConfig{
		Logger:  log,
		Store:   store,
		Scoring: scoringService,
	})

	// The API owns its refresh job: it loads the dataset at startup and
	// serves the admin refresh trigger. Scheduled refreshes run in the
	// worker binary.
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			WeatherFile:    cfg.Dataset.WeatherFile,
			BoundariesFile: cfg.Dataset.BoundariesFile,
			FetchLive:      cfg.Dataset.FetchLive,
			Concurrency:    cfg.Dataset.RefreshConcurrency,
			Timeout:        cfg.Dataset.RefreshTimeout,
		},
		Logger:  log,
		Store:   store,
		Scoring: scoringService,
		Fetcher: fetcher,
		Spatial: spatial.Config{DistanceCache: distanceCache},
	})

	// Load the dataset in the background; readiness reports 503 until
	// the first swap completes.
	go func() {
		if _, err := refreshJob.Run(ctx); err != nil {
			log.Error().Err(err).Msg("initial dataset load failed")
		}
	}()

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		JWTService:       jwtService,
		Store:            store,
		ScoringService:   scoringService,
		RecommendService: recommendService,
		GeocodeService:   geocodeService,
		TripService:      tripService,
		DistanceCache:    distanceCache,
		Upstreams:        upstreams,
		Refresher:        refreshJob,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
