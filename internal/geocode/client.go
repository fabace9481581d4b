// Package geocode resolves free-text place names to coordinates, and
// coordinates back to place names, using the Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/provider/resilience"
)

const (
	// ProviderName identifies the geocoding upstream.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// defaultUserAgent satisfies Nominatim's usage policy, which
	// rejects requests without an identifying agent.
	defaultUserAgent = "sunchase/1.0"
)

// ErrNotFound is returned when the query resolves to no place.
var ErrNotFound = errors.New("location not found")

// Result is a resolved place.
type Result struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL overrides the Nominatim endpoint. Optional.
	BaseURL string

	// UserAgent identifies this service to Nominatim. Optional.
	UserAgent string

	// HTTPClient is the outbound client. If nil, a resilient client
	// with defaults is created.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.ClientConfig{Name: ProviderName})
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// Lookup resolves a free-text query to its best-matching place.
func (c *Client) Lookup(ctx context.Context, query string) (*Result, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var places []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(places) == 0 {
		return nil, ErrNotFound
	}

	// Nominatim returns coordinates as strings.
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	return &Result{
		Query:       query,
		DisplayName: places[0].DisplayName,
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}

// Reverse resolves coordinates to the nearest named place.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	u := fmt.Sprintf("%s/reverse?lat=%s&lon=%s&format=json",
		c.baseURL,
		url.QueryEscape(strconv.FormatFloat(lat, 'f', -1, 64)),
		url.QueryEscape(strconv.FormatFloat(lon, 'f', -1, 64)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Nominatim reports a miss as a 200 with an error field.
	var place struct {
		searchResult
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if place.Error != "" || place.DisplayName == "" {
		return nil, ErrNotFound
	}

	resolvedLat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	resolvedLon, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	return &Result{
		DisplayName: place.DisplayName,
		Latitude:    resolvedLat,
		Longitude:   resolvedLon,
	}, nil
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
