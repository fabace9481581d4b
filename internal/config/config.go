// Package config loads service configuration from the environment. A
// .env file in the working directory is applied first (without
// overriding variables already set), then envconfig tags populate the
// Config struct.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sunchase/sunchase/internal/database"
)

// Config is the full configuration for both the API and worker
// binaries. Each binary reads the sections it needs.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"APP_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Database   DatabaseConfig
	Auth       AuthConfig
	Dataset    DatasetConfig
	WeatherAPI WeatherAPIConfig
	Geocode    GeocodeConfig
	PubSub     PubSubConfig
	Telemetry  TelemetryConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"sunchase"`
	Password        string        `envconfig:"DB_PASSWORD" default:"localdev"`
	Name            string        `envconfig:"DB_NAME" default:"sunchase"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// PoolConfig converts the section into the database package's config.
func (c DatabaseConfig) PoolConfig() database.Config {
	return database.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	// SigningKey is the HS256 key. The dev default is rejected outside
	// development.
	SigningKey string `envconfig:"JWT_SIGNING_KEY" default:"local-dev-signing-key-change-in-production"`
	Issuer     string `envconfig:"JWT_ISSUER" default:"https://api.sunchase.uk"`
	Audience   string `envconfig:"JWT_AUDIENCE" default:"sunchase-api"`
}

// DatasetConfig holds the seed document paths and refresh cadence.
type DatasetConfig struct {
	WeatherFile    string `envconfig:"DATASET_WEATHER_FILE" default:"data/weather_data.json"`
	BoundariesFile string `envconfig:"DATASET_BOUNDARIES_FILE" default:"data/grid_boundaries.json"`

	FetchLive          bool          `envconfig:"REFRESH_FETCH_LIVE" default:"false"`
	RefreshConcurrency int           `envconfig:"REFRESH_CONCURRENCY" default:"4"`
	RefreshTimeout     time.Duration `envconfig:"REFRESH_TIMEOUT" default:"30s"`
	RefreshInterval    time.Duration `envconfig:"REFRESH_INTERVAL" default:"24h"`
}

// WeatherAPIConfig holds the WeatherAPI.com client settings.
type WeatherAPIConfig struct {
	// Key is required when live fetching is enabled.
	Key          string `envconfig:"WEATHERAPI_KEY"`
	BaseURL      string `envconfig:"WEATHERAPI_BASE_URL"`
	ForecastDays int    `envconfig:"WEATHERAPI_FORECAST_DAYS" default:"7"`
}

// GeocodeConfig holds the Nominatim client settings.
type GeocodeConfig struct {
	BaseURL   string `envconfig:"NOMINATIM_BASE_URL"`
	UserAgent string `envconfig:"NOMINATIM_USER_AGENT"`
}

// PubSubConfig holds the worker's Pub/Sub trigger settings.
type PubSubConfig struct {
	Enabled      bool   `envconfig:"PUBSUB_ENABLED" default:"false"`
	ProjectID    string `envconfig:"GOOGLE_CLOUD_PROJECT"`
	Subscription string `envconfig:"PUBSUB_SUBSCRIPTION" default:"sunchase-refresh-jobs"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled      bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	SampleRatio  float64 `envconfig:"OTEL_TRACE_SAMPLE_RATIO" default:"1.0"`
}

// Load reads a .env file if one exists, then populates Config from the
// environment.
func Load() (*Config, error) {
	// Does not override variables already set.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Dataset.WeatherFile == "" {
		return fmt.Errorf("DATASET_WEATHER_FILE must not be empty")
	}
	if c.Dataset.FetchLive && c.WeatherAPI.Key == "" {
		return fmt.Errorf("WEATHERAPI_KEY is required when REFRESH_FETCH_LIVE is enabled")
	}
	if c.PubSub.Enabled && c.PubSub.ProjectID == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when PUBSUB_ENABLED is set")
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
