package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/worker"
)

// fakeFetcher implements worker.ForecastFetcher with a pluggable func.
type fakeFetcher struct {
	fn func(ctx context.Context, lat, lon float64) (*dataset.ObservationPoint, error)
}

func (f *fakeFetcher) FetchForecast(ctx context.Context, lat, lon float64) (*dataset.ObservationPoint, error) {
	return f.fn(ctx, lat, lon)
}

// testNow is the fixed clock used by all refresh tests.
var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func seedForecast(date string, tempC float64) dataset.DailyForecast {
	hourly := make([]dataset.HourlyRecord, 0, 3)
	for hr := 9; hr <= 11; hr++ {
		hourly = append(hourly, dataset.HourlyRecord{
			Time:       fmt.Sprintf("%s %02d:00", date, hr),
			TempC:      tempC,
			FeelsLikeC: tempC,
			Cloud:      30,
			Humidity:   50,
			VisKM:      10,
			UV:         4,
		})
	}
	return dataset.DailyForecast{
		Date:   date,
		Day:    dataset.DaySummary{AvgTempC: tempC},
		Hourly: hourly,
	}
}

// seedDataset builds a two-point dataset a week behind testNow.
func seedDataset() *dataset.WeatherDataset {
	return &dataset.WeatherDataset{
		GridSizeMiles: 12,
		TotalCells:    2,
		Points: []*dataset.ObservationPoint{
			{
				Location: dataset.Location{
					Name: "London", Region: "Greater London", Country: "United Kingdom",
					Latitude: 51.5072, Longitude: -0.1276,
				},
				Forecast: []dataset.DailyForecast{seedForecast("2026-08-24", 15)},
			},
			{
				Location: dataset.Location{
					Name: "Brighton", Region: "East Sussex", Country: "United Kingdom",
					Latitude: 50.8225, Longitude: -0.1372,
				},
				Forecast: []dataset.DailyForecast{seedForecast("2026-08-24", 16)},
			},
		},
	}
}

func writeWeatherFile(t *testing.T, ds *dataset.WeatherDataset) string {
	t.Helper()
	raw, err := json.Marshal(ds)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "weather.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func writeBoundariesFile(t *testing.T) string {
	t.Helper()
	gb := dataset.GridBoundaries{
		GridSizeMiles: 12,
		TotalCells:    1,
		CellBoundaries: []dataset.GridCell{
			{
				ID:     7,
				Center: dataset.CellPoint{Latitude: 51.5, Longitude: -0.1},
				Boundaries: [4]dataset.CellPoint{
					{Latitude: 51.4, Longitude: -0.2},
					{Latitude: 51.4, Longitude: 0.0},
					{Latitude: 51.6, Longitude: 0.0},
					{Latitude: 51.6, Longitude: -0.2},
				},
			},
		},
	}
	raw, err := json.Marshal(gb)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "boundaries.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func newTestJob(t *testing.T, cfg worker.RefreshConfig, store *dataset.Store, fetcher worker.ForecastFetcher) *worker.RefreshJob {
	t.Helper()
	return worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Store:   store,
		Fetcher: fetcher,
		Now:     func() time.Time { return testNow },
	})
}

func TestRefreshJob_Run_SeedOnly(t *testing.T) {
	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile: writeWeatherFile(t, seedDataset()),
	}, store, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalPoints)
	assert.Equal(t, 0, result.LiveFetched)
	assert.Equal(t, 0, result.FetchFailed)
	assert.Equal(t, 7, result.DaysShifted)
	assert.Empty(t, result.Errors)

	require.True(t, store.Loaded())
	snap, err := store.Current()
	require.NoError(t, err)
	require.Len(t, snap.Weather.Points, 2)
	assert.Equal(t, "2026-08-31", snap.Weather.Points[0].Forecast[0].Date)
	assert.Nil(t, snap.CellIndex)

	last := job.LastRun()
	require.NotNil(t, last)
	assert.Equal(t, result.TotalPoints, last.TotalPoints)
}

func TestRefreshJob_Run_WithBoundaries(t *testing.T) {
	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile:    writeWeatherFile(t, seedDataset()),
		BoundariesFile: writeBoundariesFile(t),
	}, store, nil)

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	snap, err := store.Current()
	require.NoError(t, err)
	require.NotNil(t, snap.Boundaries)
	assert.Len(t, snap.Boundaries.CellBoundaries, 1)
	assert.NotNil(t, snap.CellIndex)
}

func TestRefreshJob_Run_LiveOverlay(t *testing.T) {
	fetcher := &fakeFetcher{
		fn: func(_ context.Context, lat, lon float64) (*dataset.ObservationPoint, error) {
			return &dataset.ObservationPoint{
				Location: dataset.Location{Name: "Upstream Name", Latitude: lat, Longitude: lon},
				Forecast: []dataset.DailyForecast{seedForecast("2026-08-24", 25)},
			}, nil
		},
	}

	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile: writeWeatherFile(t, seedDataset()),
		FetchLive:   true,
		Concurrency: 2,
	}, store, fetcher)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.LiveFetched)
	assert.Equal(t, 0, result.FetchFailed)

	snap, err := store.Current()
	require.NoError(t, err)
	for _, p := range snap.Weather.Points {
		// Seed location names survive the overlay.
		assert.NotEqual(t, "Upstream Name", p.Location.Name)
		require.NotEmpty(t, p.Forecast)
		assert.Equal(t, 25.0, p.Forecast[0].Hourly[0].TempC)
	}
}

func TestRefreshJob_Run_FetchFailureKeepsSeed(t *testing.T) {
	fetcher := &fakeFetcher{
		fn: func(_ context.Context, lat, _ float64) (*dataset.ObservationPoint, error) {
			if lat > 51 { // London
				return nil, errors.New("upstream timeout")
			}
			return &dataset.ObservationPoint{
				Forecast: []dataset.DailyForecast{seedForecast("2026-08-24", 25)},
			}, nil
		},
	}

	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile: writeWeatherFile(t, seedDataset()),
		FetchLive:   true,
		Concurrency: 1,
	}, store, fetcher)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.LiveFetched)
	assert.Equal(t, 1, result.FetchFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "London", result.Errors[0].Name)
	assert.Contains(t, result.Errors[0].Error, "upstream timeout")

	snap, err := store.Current()
	require.NoError(t, err)

	london, err := snap.PointByName("London")
	require.NoError(t, err)
	assert.Equal(t, 15.0, london.Forecast[0].Hourly[0].TempC)

	brighton, err := snap.PointByName("Brighton")
	require.NoError(t, err)
	assert.Equal(t, 25.0, brighton.Forecast[0].Hourly[0].TempC)
}

func TestRefreshJob_Run_MissingWeatherFile(t *testing.T) {
	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile: filepath.Join(t.TempDir(), "missing.json"),
	}, store, nil)

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.False(t, store.Loaded())
}

func TestRefreshJob_Run_InFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	fetcher := &fakeFetcher{
		fn: func(_ context.Context, _, _ float64) (*dataset.ObservationPoint, error) {
			once.Do(func() { close(started) })
			<-release
			return nil, errors.New("unavailable")
		},
	}

	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile: writeWeatherFile(t, seedDataset()),
		FetchLive:   true,
		Concurrency: 1,
	}, store, fetcher)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = job.Run(context.Background())
	}()

	<-started
	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, worker.ErrRefreshInFlight)
	assert.ErrorIs(t, job.TriggerRefresh(context.Background()), worker.ErrRefreshInFlight)

	close(release)
	<-done
}

func TestRefreshJob_TriggerRefresh(t *testing.T) {
	store := dataset.NewStore()
	job := newTestJob(t, worker.RefreshConfig{
		WeatherFile: writeWeatherFile(t, seedDataset()),
	}, store, nil)

	require.NoError(t, job.TriggerRefresh(context.Background()))

	assert.Eventually(t, store.Loaded, 2*time.Second, 10*time.Millisecond)
}
