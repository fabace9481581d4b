// Package dataset owns the weather observation dataset: the JSON document
// loaded at startup, the grid-boundary overlay cells, and the atomically
// swappable snapshot served to request handlers.
package dataset

import (
	"errors"
	"time"
)

// Dataset errors.
var (
	ErrNotLoaded        = errors.New("dataset not loaded")
	ErrEmptyDataset     = errors.New("dataset contains no observation points")
	ErrInvalidDataset   = errors.New("invalid dataset")
	ErrPointNotFound    = errors.New("observation point not found")
	ErrDuplicateDate    = errors.New("duplicate forecast date")
	ErrUnsortedHourly   = errors.New("hourly records out of order")
	ErrMalformedTime    = errors.New("malformed time value")
	ErrOutOfRangeCoords = errors.New("coordinates out of range")
)

// Timestamp layouts used throughout the dataset JSON.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "2006-01-02 15:04"
)

// WeatherDataset is the root document: one entry per observation point,
// replaced wholesale on refresh and never mutated in place.
type WeatherDataset struct {
	GridSizeMiles float64             `json:"grid_size_miles"`
	TotalCells    int                 `json:"total_cells"`
	GeneratedAt   string              `json:"generated_at"`
	Points        []*ObservationPoint `json:"weather_data"`
}

// ObservationPoint is a fixed geographic point with a multi-day forecast.
type ObservationPoint struct {
	Location Location        `json:"location"`
	Forecast []DailyForecast `json:"forecast"`
}

// Location identifies an observation point.
type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DedupKey returns the (name, region, country) identity used by the
// ranking layer to collapse duplicate destinations.
func (l Location) DedupKey() string {
	return l.Name + "|" + l.Region + "|" + l.Country
}

// DailyForecast is one calendar date of forecast data.
type DailyForecast struct {
	Date   string         `json:"date"`
	Day    DaySummary     `json:"day"`
	Astro  Astro          `json:"astro"`
	Hourly []HourlyRecord `json:"hourly"`
}

// ParsedDate returns the forecast date as a time.Time (UTC midnight).
func (f *DailyForecast) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, f.Date)
}

// DaySummary carries day-level aggregates from the upstream provider.
type DaySummary struct {
	MaxTempC          float64   `json:"maxtemp_c"`
	MinTempC          float64   `json:"mintemp_c"`
	AvgTempC          float64   `json:"avgtemp_c"`
	TotalPrecipMM     float64   `json:"totalprecip_mm"`
	AvgHumidity       float64   `json:"avghumidity"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain"`
	DailyChanceOfSnow int       `json:"daily_chance_of_snow"`
	UV                float64   `json:"uv"`
	Condition         Condition `json:"condition"`
}

// Astro carries sunrise/sunset times as provider-formatted strings.
type Astro struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// Condition is the provider's weather condition descriptor.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

// HourlyRecord is a single forecast hour. Times are always on the hour.
type HourlyRecord struct {
	Time         string    `json:"time"`
	TempC        float64   `json:"temp_c"`
	FeelsLikeC   float64   `json:"feelslike_c"`
	Condition    Condition `json:"condition"`
	WindKPH      float64   `json:"wind_kph"`
	PrecipMM     float64   `json:"precip_mm"`
	Humidity     float64   `json:"humidity"`
	Cloud        float64   `json:"cloud"`
	ChanceOfRain int       `json:"chance_of_rain"`
	ChanceOfSnow int       `json:"chance_of_snow"`
	WillItSnow   int       `json:"will_it_snow"`
	VisKM        float64   `json:"vis_km"`
	UV           float64   `json:"uv"`
}

// Hour returns the hour-of-day of the record.
func (h *HourlyRecord) Hour() (int, error) {
	t, err := time.Parse(TimeLayout, h.Time)
	if err != nil {
		return 0, ErrMalformedTime
	}
	return t.Hour(), nil
}

// SnowPresent reports whether the provider flagged snow for this hour.
func (h *HourlyRecord) SnowPresent() bool {
	return h.WillItSnow > 0
}

// ForecastFor returns the DailyForecast matching the given date, or nil.
// Linear scan: forecasts hold at most about a week of entries.
func (p *ObservationPoint) ForecastFor(date string) *DailyForecast {
	for i := range p.Forecast {
		if p.Forecast[i].Date == date {
			return &p.Forecast[i]
		}
	}
	return nil
}

// GridBoundaries is the map-overlay document: fixed cells covering the
// UK and Ireland, each with a center point and four corner coordinates.
type GridBoundaries struct {
	GridSizeMiles  float64    `json:"grid_size_miles"`
	TotalCells     int        `json:"total_cells"`
	CellBoundaries []GridCell `json:"cell_boundaries"`
}

// GridCell is one overlay cell.
type GridCell struct {
	ID         int          `json:"id"`
	Center     CellPoint    `json:"center"`
	Boundaries [4]CellPoint `json:"boundaries"`
}

// CellPoint is a lat/lon pair in the overlay documents.
type CellPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
