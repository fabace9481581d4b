// Package worker provides background dataset refresh for Sunchase.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the dataset refresh job.
type RefreshConfig struct {
	// WeatherFile is the path to the seed weather document (required).
	// It supplies the observation locations and serves as the fallback
	// forecast source when live fetching is disabled or fails.
	WeatherFile string

	// BoundariesFile is the path to the grid overlay document. Optional.
	BoundariesFile string

	// FetchLive enables per-point forecast fetching from WeatherAPI.com.
	// When false the seed document is rebased to today and served as-is.
	FetchLive bool

	// Concurrency is the number of concurrent forecast fetches.
	// Default: 4
	Concurrency int

	// Timeout is the timeout for each point fetch.
	// Default: 30 seconds
	Timeout time.Duration

	// Interval is the periodic refresh cadence.
	// Default: 24 hours
	Interval time.Duration
}

// withDefaults fills in zero-value fields.
func (c RefreshConfig) withDefaults() RefreshConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	return c
}
