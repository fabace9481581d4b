package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/scoring"
	"github.com/sunchase/sunchase/internal/spatial"
	"github.com/sunchase/sunchase/internal/weatherapi"
)

// ErrRefreshInFlight is returned when a trigger arrives while a refresh
// is already running.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// ForecastFetcher fetches a live forecast for one coordinate.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, lat, lon float64) (*dataset.ObservationPoint, error)
}

var _ ForecastFetcher = (*weatherapi.Client)(nil)

// RefreshJob rebuilds the dataset snapshot: load the seed document,
// optionally overlay live forecasts, rebase dates to today, index, and
// swap. Readers keep the old snapshot until the swap.
type RefreshJob struct {
	config  RefreshConfig
	logger  zerolog.Logger
	store   *dataset.Store
	scoring *scoring.Service
	fetcher ForecastFetcher
	spatial spatial.Config

	now func() time.Time

	mu      sync.Mutex
	running bool
	lastRun *RefreshResult
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config  RefreshConfig
	Logger  zerolog.Logger
	Store   *dataset.Store
	Scoring *scoring.Service

	// Fetcher supplies live forecasts. Nil disables live fetching
	// regardless of Config.FetchLive.
	Fetcher ForecastFetcher

	// Spatial overrides the index configuration. Optional.
	Spatial spatial.Config

	// Now overrides the clock for tests. Optional.
	Now func() time.Time
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &RefreshJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger,
		store:   cfg.Store,
		scoring: cfg.Scoring,
		fetcher: cfg.Fetcher,
		spatial: cfg.Spatial,
		now:     now,
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	LiveFetched int
	FetchFailed int
	DaysShifted int
	Errors      []RefreshError
}

// RefreshError is one failed point fetch.
type RefreshError struct {
	Name  string
	Lat   float64
	Lon   float64
	Error string
}

// Run executes a full refresh and swaps the snapshot on success.
func (j *RefreshJob) Run(ctx context.Context) (*RefreshResult, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil, ErrRefreshInFlight
	}
	j.running = true
	j.mu.Unlock()
	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	result := &RefreshResult{StartTime: j.now()}

	j.logger.Info().
		Str("weather_file", j.config.WeatherFile).
		Bool("fetch_live", j.config.FetchLive && j.fetcher != nil).
		Msg("starting dataset refresh")

	weather, err := dataset.LoadWeatherFile(j.config.WeatherFile)
	if err != nil {
		return nil, err
	}
	result.TotalPoints = len(weather.Points)

	if j.config.FetchLive && j.fetcher != nil {
		j.fetchLive(ctx, weather, result)
	}

	shifted, err := dataset.RebaseDates(weather, j.now())
	if err != nil {
		return nil, err
	}
	result.DaysShifted = shifted

	var boundaries *dataset.GridBoundaries
	if j.config.BoundariesFile != "" {
		boundaries, err = dataset.LoadBoundariesFile(j.config.BoundariesFile)
		if err != nil {
			return nil, err
		}
	}

	snap, err := dataset.BuildSnapshot(weather, boundaries, j.spatial, j.now())
	if err != nil {
		return nil, err
	}

	j.store.Swap(snap)
	if j.scoring != nil {
		j.scoring.InvalidateCaches()
	}

	result.EndTime = j.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	j.mu.Lock()
	j.lastRun = result
	j.mu.Unlock()

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("points", result.TotalPoints).
		Int("live_fetched", result.LiveFetched).
		Int("fetch_failed", result.FetchFailed).
		Int("days_shifted", result.DaysShifted).
		Msg("dataset refresh completed")

	return result, nil
}

// fetchLive overlays live forecasts onto the seed points. Failed points
// keep their seed forecast; the refresh itself still succeeds.
func (j *RefreshJob) fetchLive(ctx context.Context, weather *dataset.WeatherDataset, result *RefreshResult) {
	type fetchOutcome struct {
		idx      int
		forecast []dataset.DailyForecast
		err      error
	}

	indexes := make(chan int, len(weather.Points))
	outcomes := make(chan fetchOutcome, len(weather.Points))

	var wg sync.WaitGroup
	for w := 0; w < j.config.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				select {
				case <-ctx.Done():
					outcomes <- fetchOutcome{idx: idx, err: ctx.Err()}
					continue
				default:
				}

				p := weather.Points[idx]
				fetchCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
				fetched, err := j.fetcher.FetchForecast(fetchCtx, p.Location.Latitude, p.Location.Longitude)
				cancel()

				if err != nil {
					outcomes <- fetchOutcome{idx: idx, err: err}
					continue
				}
				outcomes <- fetchOutcome{idx: idx, forecast: fetched.Forecast}
			}
		}()
	}

	for i := range weather.Points {
		indexes <- i
	}
	close(indexes)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		p := weather.Points[outcome.idx]
		if outcome.err != nil {
			result.FetchFailed++
			result.Errors = append(result.Errors, RefreshError{
				Name:  p.Location.Name,
				Lat:   p.Location.Latitude,
				Lon:   p.Location.Longitude,
				Error: outcome.err.Error(),
			})
			j.logger.Warn().
				Str("point", p.Location.Name).
				Err(outcome.err).
				Msg("live fetch failed, keeping seed forecast")
			continue
		}
		// Keep the seed location; upstream display names drift.
		p.Forecast = outcome.forecast
		result.LiveFetched++
	}
}

// LastRun returns the most recent completed refresh result.
func (j *RefreshJob) LastRun() *RefreshResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// TriggerRefresh starts a refresh in the background. It satisfies the
// API's refresh trigger without blocking the request.
func (j *RefreshJob) TriggerRefresh(_ context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return ErrRefreshInFlight
	}
	j.mu.Unlock()

	go func() {
		if _, err := j.Run(context.Background()); err != nil && !errors.Is(err, ErrRefreshInFlight) {
			j.logger.Error().Err(err).Msg("triggered refresh failed")
		}
	}()
	return nil
}

// RunPeriodic refreshes immediately and then on the configured interval
// until the context is cancelled.
func (j *RefreshJob) RunPeriodic(ctx context.Context) error {
	if _, err := j.Run(ctx); err != nil {
		j.logger.Error().Err(err).Msg("initial refresh failed")
	}

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				j.logger.Error().Err(err).Msg("periodic refresh failed")
			}
		}
	}
}
