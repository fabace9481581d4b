package dataset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/spatial"
)

func testPoint(name string, lat, lon float64, dates ...string) *dataset.ObservationPoint {
	p := &dataset.ObservationPoint{
		Location: dataset.Location{
			Name:      name,
			Region:    "England",
			Country:   "United Kingdom",
			Latitude:  lat,
			Longitude: lon,
		},
	}
	for _, d := range dates {
		p.Forecast = append(p.Forecast, dataset.DailyForecast{
			Date: d,
			Hourly: []dataset.HourlyRecord{
				{Time: d + " 09:00", TempC: 18, FeelsLikeC: 18, Cloud: 20, Humidity: 55, VisKM: 10, UV: 4},
				{Time: d + " 12:00", TempC: 21, FeelsLikeC: 21, Cloud: 10, Humidity: 50, VisKM: 10, UV: 6},
			},
		})
	}
	return p
}

func TestParseWeather(t *testing.T) {
	raw := []byte(`{
		"grid_size_miles": 8,
		"total_cells": 1,
		"weather_data": [
			{
				"location": {"name": "Brighton", "region": "England", "country": "United Kingdom", "latitude": 50.8225, "longitude": -0.1372},
				"forecast": [
					{
						"date": "2025-07-04",
						"day": {"maxtemp_c": 22.1, "condition": {"text": "Sunny", "code": 1000}},
						"astro": {"sunrise": "04:52 AM", "sunset": "09:19 PM"},
						"hourly": [
							{"time": "2025-07-04 09:00", "temp_c": 18.2, "feelslike_c": 18.0, "cloud": 15, "humidity": 60, "vis_km": 10, "uv": 4, "precip_mm": 0, "will_it_snow": 0}
						]
					}
				]
			}
		]
	}`)

	ds, err := dataset.ParseWeather(raw)
	require.NoError(t, err)
	require.Len(t, ds.Points, 1)

	p := ds.Points[0]
	assert.Equal(t, "Brighton", p.Location.Name)
	assert.Equal(t, 8.0, ds.GridSizeMiles)

	f := p.ForecastFor("2025-07-04")
	require.NotNil(t, f)
	require.Len(t, f.Hourly, 1)
	hr, err := f.Hourly[0].Hour()
	require.NoError(t, err)
	assert.Equal(t, 9, hr)
	assert.False(t, f.Hourly[0].SnowPresent())

	assert.Nil(t, p.ForecastFor("2025-07-05"))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dataset.WeatherDataset)
		wantErr error
	}{
		{
			name:    "empty dataset",
			mutate:  func(ds *dataset.WeatherDataset) { ds.Points = nil },
			wantErr: dataset.ErrEmptyDataset,
		},
		{
			name: "latitude out of range",
			mutate: func(ds *dataset.WeatherDataset) {
				ds.Points[0].Location.Latitude = 91
			},
			wantErr: dataset.ErrOutOfRangeCoords,
		},
		{
			name: "malformed date",
			mutate: func(ds *dataset.WeatherDataset) {
				ds.Points[0].Forecast[0].Date = "04/07/2025"
			},
			wantErr: dataset.ErrInvalidDataset,
		},
		{
			name: "duplicate date",
			mutate: func(ds *dataset.WeatherDataset) {
				ds.Points[0].Forecast = append(ds.Points[0].Forecast, ds.Points[0].Forecast[0])
			},
			wantErr: dataset.ErrDuplicateDate,
		},
		{
			name: "hourly out of order",
			mutate: func(ds *dataset.WeatherDataset) {
				h := ds.Points[0].Forecast[0].Hourly
				h[0], h[1] = h[1], h[0]
			},
			wantErr: dataset.ErrUnsortedHourly,
		},
		{
			name: "malformed hourly time",
			mutate: func(ds *dataset.WeatherDataset) {
				ds.Points[0].Forecast[0].Hourly[0].Time = "9am"
			},
			wantErr: dataset.ErrMalformedTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := &dataset.WeatherDataset{
				Points: []*dataset.ObservationPoint{testPoint("Brighton", 50.8225, -0.1372, "2025-07-04")},
			}
			tt.mutate(ds)
			assert.ErrorIs(t, ds.Validate(), tt.wantErr)
		})
	}
}

func TestRebaseDates(t *testing.T) {
	ds := &dataset.WeatherDataset{
		Points: []*dataset.ObservationPoint{
			testPoint("Brighton", 50.8225, -0.1372, "2025-07-04", "2025-07-05"),
			testPoint("York", 53.959, -1.0815, "2025-07-05"),
		},
	}
	now := time.Date(2025, 7, 10, 14, 30, 0, 0, time.UTC)

	days, err := dataset.RebaseDates(ds, now)
	require.NoError(t, err)
	assert.Equal(t, 6, days)

	assert.Equal(t, "2025-07-10", ds.Points[0].Forecast[0].Date)
	assert.Equal(t, "2025-07-11", ds.Points[0].Forecast[1].Date)
	assert.Equal(t, "2025-07-11", ds.Points[1].Forecast[0].Date)
	assert.Equal(t, "2025-07-10 09:00", ds.Points[0].Forecast[0].Hourly[0].Time)
	assert.Equal(t, "2025-07-10 12:00", ds.Points[0].Forecast[0].Hourly[1].Time)
}

func TestRebaseDatesAlreadyCurrent(t *testing.T) {
	ds := &dataset.WeatherDataset{
		Points: []*dataset.ObservationPoint{testPoint("Brighton", 50.8225, -0.1372, "2025-07-04")},
	}
	now := time.Date(2025, 7, 4, 8, 0, 0, 0, time.UTC)

	days, err := dataset.RebaseDates(ds, now)
	require.NoError(t, err)
	assert.Zero(t, days)
	assert.Equal(t, "2025-07-04", ds.Points[0].Forecast[0].Date)
}

func TestStoreSwap(t *testing.T) {
	store := dataset.NewStore()

	assert.False(t, store.Loaded())
	_, err := store.Current()
	assert.ErrorIs(t, err, dataset.ErrNotLoaded)

	ds := &dataset.WeatherDataset{
		Points: []*dataset.ObservationPoint{
			testPoint("Brighton", 50.8225, -0.1372, "2025-07-04"),
			testPoint("York", 53.959, -1.0815, "2025-07-04"),
		},
	}
	snap, err := dataset.BuildSnapshot(ds, nil, spatial.Config{}, time.Now())
	require.NoError(t, err)
	store.Swap(snap)

	got, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.True(t, store.Loaded())
}

func TestSnapshotLookups(t *testing.T) {
	ds := &dataset.WeatherDataset{
		Points: []*dataset.ObservationPoint{
			testPoint("Brighton", 50.8225, -0.1372, "2025-07-04"),
			testPoint("York", 53.959, -1.0815, "2025-07-04"),
		},
	}
	boundaries := &dataset.GridBoundaries{
		GridSizeMiles: 8,
		TotalCells:    1,
		CellBoundaries: []dataset.GridCell{
			{ID: 1, Center: dataset.CellPoint{Latitude: 51.0, Longitude: -1.0}},
		},
	}
	snap, err := dataset.BuildSnapshot(ds, boundaries, spatial.Config{}, time.Now())
	require.NoError(t, err)

	p, err := snap.PointByName("york")
	require.NoError(t, err)
	assert.Equal(t, "York", p.Location.Name)

	_, err = snap.PointByName("Atlantis")
	assert.ErrorIs(t, err, dataset.ErrPointNotFound)

	p, err = snap.Point(0)
	require.NoError(t, err)
	assert.Equal(t, "Brighton", p.Location.Name)

	_, err = snap.Point(99)
	assert.ErrorIs(t, err, dataset.ErrPointNotFound)

	// Nearest observation point to central London is Brighton here.
	m, ok := snap.Index.FindClosest(51.5074, -0.1278)
	require.True(t, ok)
	assert.Equal(t, 0, m.ID)

	require.NotNil(t, snap.CellIndex)
	cells := snap.CellIndex.FindWithinRadius(51.0, -1.0, 5)
	require.Len(t, cells, 1)
	assert.Equal(t, 0, cells[0].ID)
}

func TestBuildSnapshotEmpty(t *testing.T) {
	_, err := dataset.BuildSnapshot(&dataset.WeatherDataset{}, nil, spatial.Config{}, time.Now())
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}
