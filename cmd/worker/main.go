// Package main provides the entrypoint for the Sunchase refresh worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/config"
	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/provider/resilience"
	"github.com/sunchase/sunchase/internal/weatherapi"
	"github.com/sunchase/sunchase/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "sunchase-worker"

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stdout)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

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
		Msg("starting Sunchase worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetcher worker.ForecastFetcher
	if cfg.Dataset.FetchLive {
		fetcher = weatherapi.NewClient(weatherapi.ClientConfig{
			APIKey:       cfg.WeatherAPI.Key,
			BaseURL:      cfg.WeatherAPI.BaseURL,
			ForecastDays: cfg.WeatherAPI.ForecastDays,
			HTTPClient:   resilience.NewClient(resilience.ClientConfig{Name: weatherapi.ProviderName}),
			Logger:       log,
		})
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			WeatherFile:    cfg.Dataset.WeatherFile,
			BoundariesFile: cfg.Dataset.BoundariesFile,
			FetchLive:      cfg.Dataset.FetchLive,
			Concurrency:    cfg.Dataset.RefreshConcurrency,
			Timeout:        cfg.Dataset.RefreshTimeout,
			Interval:       cfg.Dataset.RefreshInterval,
		},
		Logger:  log,
		Store:   dataset.NewStore(),
		Fetcher: fetcher,
	})

	// Scheduled refresh loop
	go func() {
		if err := refreshJob.RunPeriodic(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("periodic refresh stopped")
		}
	}()

	// Pub/Sub triggered refreshes
	var pubsubHandler *worker.PubSubHandler
	if cfg.PubSub.Enabled {
		pubsubHandler, err = worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := pubsubHandler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub receive stopped")
			}
		}()
	}

	// Health endpoint for the container platform
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
