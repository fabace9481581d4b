package scoring_test

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/scoring"
)

// sunnyDayPoint builds a single-day point with identical hourly records
// across hours 0-23: cloud 10, uv 4, 10km visibility, dry, no snow.
func sunnyDayPoint(date string) *dataset.ObservationPoint {
	f := dataset.DailyForecast{Date: date}
	for hr := 0; hr < 24; hr++ {
		f.Hourly = append(f.Hourly, dataset.HourlyRecord{
			Time:       fmt.Sprintf("%s %02d:00", date, hr),
			TempC:      21,
			FeelsLikeC: 21,
			Cloud:      10,
			UV:         4,
			VisKM:      10,
			PrecipMM:   0,
			Humidity:   50,
		})
	}
	return &dataset.ObservationPoint{
		Location: dataset.Location{
			Name: "Brighton", Region: "England", Country: "United Kingdom",
			Latitude: 50.8225, Longitude: -0.1372,
		},
		Forecast: []dataset.DailyForecast{f},
	}
}

func TestAggregateWindowInclusiveBothEnds(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{})
	p := sunnyDayPoint("2025-07-04")

	avg, err := agg.Aggregate(p, "2025-07-04", 9, 17)
	require.NoError(t, err)

	// Hours 9 through 17 inclusive.
	assert.Equal(t, 9, avg.Hours)
	assert.Equal(t, "09:00-17:00", avg.TimeRange)
	assert.InDelta(t, 10.0, avg.CloudCoverage, 1e-9)
	assert.InDelta(t, 4.0, avg.UVIndex, 1e-9)
	assert.InDelta(t, 10000.0, avg.VisibilityM, 1e-9)
	assert.InDelta(t, 0.0, avg.RainMM, 1e-9)
	assert.False(t, avg.SnowPresent)
	assert.InDelta(t, 21.0, avg.MinFeelsLikeC, 1e-9)
	assert.InDelta(t, 21.0, avg.MaxFeelsLikeC, 1e-9)
}

func TestAggregateNotFound(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{})
	p := sunnyDayPoint("2025-07-04")

	_, err := agg.Aggregate(p, "2025-08-01", 9, 17)
	assert.ErrorIs(t, err, scoring.ErrNoForecastForDate)

	// A forecast whose hourly records never land in the window.
	sparse := &dataset.ObservationPoint{
		Location: p.Location,
		Forecast: []dataset.DailyForecast{{
			Date: "2025-07-04",
			Hourly: []dataset.HourlyRecord{
				{Time: "2025-07-04 06:00", Cloud: 10},
			},
		}},
	}
	_, err = agg.Aggregate(sparse, "2025-07-04", 9, 17)
	assert.ErrorIs(t, err, scoring.ErrNoHoursInWindow)
}

func TestAggregateInvalidWindow(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{})
	p := sunnyDayPoint("2025-07-04")

	tests := []struct {
		start, end int
	}{
		{-1, 17},
		{9, 24},
		{17, 9},
		{12, 12},
	}
	for _, tt := range tests {
		_, err := agg.Aggregate(p, "2025-07-04", tt.start, tt.end)
		assert.ErrorIs(t, err, scoring.ErrInvalidWindow, "[%d, %d]", tt.start, tt.end)
	}
}

func TestAggregateSnowORReduction(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{})
	p := sunnyDayPoint("2025-07-04")
	// One snowy hour inside the window flags the whole window.
	p.Forecast[0].Hourly[12].WillItSnow = 1

	avg, err := agg.Aggregate(p, "2025-07-04", 9, 17)
	require.NoError(t, err)
	assert.True(t, avg.SnowPresent)

	// Snow outside the window does not.
	q := sunnyDayPoint("2025-07-04")
	q.Forecast[0].Hourly[3].WillItSnow = 1
	q.Location.Name = "York"
	avg, err = agg.Aggregate(q, "2025-07-04", 9, 17)
	require.NoError(t, err)
	assert.False(t, avg.SnowPresent)
}

func TestAggregateCaches(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{})
	p := sunnyDayPoint("2025-07-04")

	first, err := agg.Aggregate(p, "2025-07-04", 9, 17)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Len())

	// Mutating the forecast does not change the memoized result.
	p.Forecast[0].Hourly[10].Cloud = 100
	second, err := agg.Aggregate(p, "2025-07-04", 9, 17)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	agg.Clear()
	assert.Zero(t, agg.Len())
}

func TestAggregateDistinctPointsSameIdentity(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{})

	// Two observation points carrying the same (name, region, country)
	// label at different coordinates, with different weather.
	p := sunnyDayPoint("2025-07-04")
	q := sunnyDayPoint("2025-07-04")
	q.Location.Latitude = 51.5072
	q.Location.Longitude = -0.1276
	for i := range q.Forecast[0].Hourly {
		q.Forecast[0].Hourly[i].Cloud = 80
	}

	first, err := agg.Aggregate(p, "2025-07-04", 9, 17)
	require.NoError(t, err)
	second, err := agg.Aggregate(q, "2025-07-04", 9, 17)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, first.CloudCoverage, 1e-9)
	assert.InDelta(t, 80.0, second.CloudCoverage, 1e-9)
	assert.Equal(t, 2, agg.Len())
}

func TestAggregateCacheCeiling(t *testing.T) {
	agg := scoring.NewAggregator(scoring.AggregatorConfig{CacheMaxEntries: 2})
	p := sunnyDayPoint("2025-07-04")

	for end := 10; end <= 17; end++ {
		_, err := agg.Aggregate(p, "2025-07-04", 9, end)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, agg.Len())
}

func TestServiceBothEndToEnd(t *testing.T) {
	svc := scoring.NewService(scoring.ServiceConfig{Logger: zerolog.Nop()})
	p := sunnyDayPoint("2025-07-04")

	got, err := svc.Both(p, "2025-07-04", 9, 17)
	require.NoError(t, err)

	// Sunny sub-scores: cloud 10, uv 6.67, visibility 8, rain 10,
	// snow 10; mean 44.67/5 rounded to 8.93.
	assert.InDelta(t, 8.93, got.Sunny.Score, 0.001)
	assert.Equal(t, scoring.LevelSunny, got.Sunny.Level)
	assert.InDelta(t, 10.0, got.Sunny.Breakdown.Cloud, 0.001)
	assert.InDelta(t, 6.67, got.Sunny.Breakdown.UV, 0.001)
	assert.InDelta(t, 8.0, got.Sunny.Breakdown.Visibility, 0.001)
	assert.InDelta(t, 10.0, got.Sunny.Breakdown.Rain, 0.001)
	assert.InDelta(t, 10.0, got.Sunny.Breakdown.Snow, 0.001)

	// Comfort sub-scores: cloud 7, uv 8.67, visibility 8, rain 10,
	// snow 10, feels-like 10, humidity 10; mean 63.67/7 rounded to 9.1.
	assert.InDelta(t, 9.1, got.Comfort.Score, 0.001)
	assert.Equal(t, scoring.LevelVeryComfortable, got.Comfort.Level)

	assert.Equal(t, 9, got.Hours)
	assert.Equal(t, "09:00-17:00", got.TimeRange)
	assert.InDelta(t, 21.0, got.TempRange.MinC, 0.001)
	assert.InDelta(t, 21.0, got.TempRange.MaxC, 0.001)

	stats := svc.CacheStats()
	assert.Equal(t, 1, stats.AggregatorEntries)
	assert.Equal(t, 2, stats.CalculatorEntries)

	svc.InvalidateCaches()
	stats = svc.CacheStats()
	assert.Zero(t, stats.AggregatorEntries)
	assert.Zero(t, stats.CalculatorEntries)
}

func TestServiceNotFoundPropagates(t *testing.T) {
	svc := scoring.NewService(scoring.ServiceConfig{Logger: zerolog.Nop()})
	p := sunnyDayPoint("2025-07-04")

	_, err := svc.Sunny(p, "2030-01-01", 9, 17)
	assert.ErrorIs(t, err, scoring.ErrNoForecastForDate)
	_, err = svc.Comfort(p, "2030-01-01", 9, 17)
	assert.ErrorIs(t, err, scoring.ErrNoForecastForDate)
}
