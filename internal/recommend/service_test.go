package recommend_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/recommend"
	"github.com/sunchase/sunchase/internal/scoring"
	"github.com/sunchase/sunchase/internal/spatial"
)

const testDate = "2025-07-04"

// weatherPoint builds a one-day point whose hourly cloud cover is
// constant, so lower cloud means a strictly higher sunniness score.
func weatherPoint(name string, lat, lon, cloud float64) *dataset.ObservationPoint {
	f := dataset.DailyForecast{Date: testDate}
	for hr := 9; hr <= 17; hr++ {
		f.Hourly = append(f.Hourly, dataset.HourlyRecord{
			Time:       fmt.Sprintf("%s %02d:00", testDate, hr),
			FeelsLikeC: 21,
			Cloud:      cloud,
			UV:         4,
			VisKM:      10,
			Humidity:   50,
		})
	}
	return &dataset.ObservationPoint{
		Location: dataset.Location{
			Name: name, Region: "England", Country: "United Kingdom",
			Latitude: lat, Longitude: lon,
		},
		Forecast: []dataset.DailyForecast{f},
	}
}

func newService(t *testing.T, points ...*dataset.ObservationPoint) *recommend.Service {
	t.Helper()
	store := dataset.NewStore()
	snap, err := dataset.BuildSnapshot(&dataset.WeatherDataset{Points: points}, nil, spatial.Config{}, time.Now())
	require.NoError(t, err)
	store.Swap(snap)
	return recommend.NewService(recommend.ServiceConfig{
		Logger:  zerolog.Nop(),
		Store:   store,
		Scoring: scoring.NewService(scoring.ServiceConfig{Logger: zerolog.Nop()}),
	})
}

func TestTopDestinationsRanksDescending(t *testing.T) {
	svc := newService(t,
		weatherPoint("Cloudy", 53.0, -1.0, 90),
		weatherPoint("Clear", 50.8, -0.1, 5),
		weatherPoint("Mixed", 54.0, -2.0, 40),
	)

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Clear", got[0].Name)
	assert.Equal(t, "Mixed", got[1].Name)
	assert.Equal(t, "Cloudy", got[2].Name)
	assert.Greater(t, got[0].Scores.Sunny.Score, got[1].Scores.Sunny.Score)
	assert.Nil(t, got[0].DistanceMiles)
}

func TestTopDestinationsDeduplicatesKeepingHigherScore(t *testing.T) {
	// Same (name, region, country) twice with different cloud cover.
	svc := newService(t,
		weatherPoint("Brighton", 50.8, -0.1, 80),
		weatherPoint("York", 53.9, -1.0, 40),
		weatherPoint("Brighton", 50.8, -0.1, 5),
	)

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Brighton", got[0].Name)
	sunny := got[0].Scores.Sunny
	clear := scoring.NewCalculator(scoring.CalculatorConfig{}).SunnyScore(scoring.Averages{
		CloudCoverage: 5, UVIndex: 4, VisibilityM: 10000, RainMM: 0,
	})
	assert.Equal(t, clear.Score, sunny.Score)
}

func TestTopDestinationsStableOnTies(t *testing.T) {
	// Identical conditions everywhere; ranking must keep dataset order.
	svc := newService(t,
		weatherPoint("First", 50.8, -0.1, 20),
		weatherPoint("Second", 53.9, -1.0, 20),
		weatherPoint("Third", 54.9, -2.0, 20),
	)

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
	assert.Equal(t, "Third", got[2].Name)
}

func TestTopDestinationsRadiusFilter(t *testing.T) {
	svc := newService(t,
		weatherPoint("Near", 51.6, -0.2, 5),
		weatherPoint("Far", 57.5, -4.2, 5), // Inverness, ~400 miles out
	)
	origin := &geo.Point{Lat: 51.5074, Lon: -0.1278}

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
		Origin: origin, MaxDistanceMiles: 100,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Near", got[0].Name)
	require.NotNil(t, got[0].DistanceMiles)
	assert.InDelta(t, geo.DistanceMiles(51.5074, -0.1278, 51.6, -0.2), *got[0].DistanceMiles, 1e-9)
}

func TestTopDestinationsComfortDimension(t *testing.T) {
	hot := weatherPoint("Hot", 50.8, -0.1, 5)
	for i := range hot.Forecast[0].Hourly {
		hot.Forecast[0].Hourly[i].FeelsLikeC = 38
	}
	svc := newService(t, hot, weatherPoint("Mild", 53.9, -1.0, 20))

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
		Dimension: recommend.DimensionComfort,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Mild", got[0].Name)
}

func TestTopDestinationsSkipsMissingForecasts(t *testing.T) {
	svc := newService(t,
		weatherPoint("Scored", 50.8, -0.1, 20),
		&dataset.ObservationPoint{
			Location: dataset.Location{Name: "NoData", Region: "England", Country: "United Kingdom", Latitude: 53.0, Longitude: -1.5},
		},
	)

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Scored", got[0].Name)
}

func TestTopDestinationsLimit(t *testing.T) {
	points := make([]*dataset.ObservationPoint, 40)
	for i := range points {
		points[i] = weatherPoint(fmt.Sprintf("Town%02d", i), 50.0+float64(i)*0.1, -1.0, float64(i*2))
	}
	svc := newService(t, points...)

	got, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
	})
	require.NoError(t, err)
	assert.Len(t, got, recommend.DefaultLimit)

	got, err = svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17, Limit: 5,
	})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestTopDestinationsUnknownDimension(t *testing.T) {
	svc := newService(t, weatherPoint("Brighton", 50.8, -0.1, 20))

	_, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17, Dimension: "dreary",
	})
	assert.ErrorIs(t, err, recommend.ErrUnknownDimension)
}

func TestTopDestinationsStoreNotLoaded(t *testing.T) {
	svc := recommend.NewService(recommend.ServiceConfig{
		Logger:  zerolog.Nop(),
		Store:   dataset.NewStore(),
		Scoring: scoring.NewService(scoring.ServiceConfig{Logger: zerolog.Nop()}),
	})

	_, err := svc.TopDestinations(context.Background(), recommend.Query{
		Date: testDate, StartHour: 9, EndHour: 17,
	})
	assert.ErrorIs(t, err, dataset.ErrNotLoaded)
}
