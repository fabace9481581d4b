// Package weatherapi fetches multi-day forecasts from WeatherAPI.com and
// maps them into the dataset document format.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/provider/resilience"
)

const (
	// ProviderName identifies the forecast upstream.
	ProviderName = "weatherapi"

	// DefaultBaseURL is the WeatherAPI.com base URL.
	DefaultBaseURL = "https://api.weatherapi.com/v1"

	// DefaultForecastDays is how many days to request per point.
	DefaultForecastDays = 7
)

// ClientConfig holds configuration for the WeatherAPI.com client.
type ClientConfig struct {
	// APIKey is the WeatherAPI.com key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Optional.
	BaseURL string

	// ForecastDays is how many days to request. Optional.
	ForecastDays int

	// HTTPClient is the outbound client. If nil, a resilient client
	// with defaults is created.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a WeatherAPI.com forecast client.
type Client struct {
	apiKey     string
	baseURL    string
	days       int
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a WeatherAPI.com client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = DefaultForecastDays
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.ClientConfig{Name: ProviderName})
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		days:       cfg.ForecastDays,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// FetchForecast fetches the forecast for one coordinate and maps it to an
// observation point. The upstream resolves the coordinate to its own
// place name; callers that know better (grid cells, curated lists) may
// overwrite the location afterwards.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (*dataset.ObservationPoint, error) {
	u := fmt.Sprintf("%s/forecast.json?key=%s&q=%.4f,%.4f&days=%d&aqi=no&alerts=no",
		c.baseURL, c.apiKey, lat, lon, c.days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return toObservationPoint(&fr), nil
}

func toObservationPoint(fr *forecastResponse) *dataset.ObservationPoint {
	p := &dataset.ObservationPoint{
		Location: dataset.Location{
			Name:      fr.Location.Name,
			Region:    fr.Location.Region,
			Country:   fr.Location.Country,
			Latitude:  fr.Location.Lat,
			Longitude: fr.Location.Lon,
		},
		Forecast: make([]dataset.DailyForecast, 0, len(fr.Forecast.ForecastDay)),
	}
	for _, fd := range fr.Forecast.ForecastDay {
		day := dataset.DailyForecast{
			Date: fd.Date,
			Day: dataset.DaySummary{
				MaxTempC:          fd.Day.MaxTempC,
				MinTempC:          fd.Day.MinTempC,
				AvgTempC:          fd.Day.AvgTempC,
				TotalPrecipMM:     fd.Day.TotalPrecipMM,
				AvgHumidity:       fd.Day.AvgHumidity,
				DailyChanceOfRain: fd.Day.DailyChanceOfRain,
				DailyChanceOfSnow: fd.Day.DailyChanceOfSnow,
				UV:                fd.Day.UV,
				Condition:         dataset.Condition(fd.Day.Condition),
			},
			Astro: dataset.Astro{
				Sunrise: fd.Astro.Sunrise,
				Sunset:  fd.Astro.Sunset,
			},
			Hourly: make([]dataset.HourlyRecord, 0, len(fd.Hour)),
		}
		for _, h := range fd.Hour {
			day.Hourly = append(day.Hourly, dataset.HourlyRecord{
				Time:         h.Time,
				TempC:        h.TempC,
				FeelsLikeC:   h.FeelsLikeC,
				Condition:    dataset.Condition(h.Condition),
				WindKPH:      h.WindKPH,
				PrecipMM:     h.PrecipMM,
				Humidity:     h.Humidity,
				Cloud:        h.Cloud,
				ChanceOfRain: h.ChanceOfRain,
				ChanceOfSnow: h.ChanceOfSnow,
				WillItSnow:   h.WillItSnow,
				VisKM:        h.VisKM,
				UV:           h.UV,
			})
		}
		p.Forecast = append(p.Forecast, day)
	}
	return p
}

// WeatherAPI.com response structures.

type condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type forecastResponse struct {
	Location struct {
		Name    string  `json:"name"`
		Region  string  `json:"region"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC          float64   `json:"maxtemp_c"`
				MinTempC          float64   `json:"mintemp_c"`
				AvgTempC          float64   `json:"avgtemp_c"`
				TotalPrecipMM     float64   `json:"totalprecip_mm"`
				AvgHumidity       float64   `json:"avghumidity"`
				DailyChanceOfRain int       `json:"daily_chance_of_rain"`
				DailyChanceOfSnow int       `json:"daily_chance_of_snow"`
				UV                float64   `json:"uv"`
				Condition         condition `json:"condition"`
			} `json:"day"`
			Astro struct {
				Sunrise string `json:"sunrise"`
				Sunset  string `json:"sunset"`
			} `json:"astro"`
			Hour []struct {
				Time         string    `json:"time"`
				TempC        float64   `json:"temp_c"`
				FeelsLikeC   float64   `json:"feelslike_c"`
				Condition    condition `json:"condition"`
				WindKPH      float64   `json:"wind_kph"`
				PrecipMM     float64   `json:"precip_mm"`
				Humidity     float64   `json:"humidity"`
				Cloud        float64   `json:"cloud"`
				ChanceOfRain int       `json:"chance_of_rain"`
				ChanceOfSnow int       `json:"chance_of_snow"`
				WillItSnow   int       `json:"will_it_snow"`
				VisKM        float64   `json:"vis_km"`
				UV           float64   `json:"uv"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}
