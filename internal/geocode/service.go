package geocode

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	Client *Client
	Logger zerolog.Logger

	// CacheMaxEntries caps the lookup cache; once full, new results are
	// returned but not retained. Default 2000.
	CacheMaxEntries int
}

// Service caches geocoding lookups by normalized query. Place names are
// stable, so entries live for the process lifetime.
type Service struct {
	client *Client
	logger zerolog.Logger

	mu         sync.RWMutex
	cache      map[string]*Result
	maxEntries int
}

// NewService creates a geocoding service with the provided configuration.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 2000
	}
	return &Service{
		client:     cfg.Client,
		logger:     cfg.Logger,
		cache:      make(map[string]*Result),
		maxEntries: cfg.CacheMaxEntries,
	}
}

// Lookup resolves a free-text query, serving repeated queries from
// cache. Negative results are not cached; a transient upstream failure
// would otherwise pin ErrNotFound for the process lifetime.
func (s *Service) Lookup(ctx context.Context, query string) (*Result, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	if res, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return res, nil
	}
	s.mu.RUnlock()

	res, err := s.client.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.cache) < s.maxEntries {
		s.cache[key] = res
	}
	s.mu.Unlock()

	s.logger.Debug().Str("query", query).
		Float64("lat", res.Latitude).
		Float64("lon", res.Longitude).
		Msg("geocoded location")
	return res, nil
}

// Reverse resolves coordinates to the nearest named place, serving
// repeats from cache. Coordinates are rounded to four decimal places
// (roughly ten metres) for the cache key.
func (s *Service) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	key := "rev:" + strconv.FormatFloat(lat, 'f', 4, 64) +
		"," + strconv.FormatFloat(lon, 'f', 4, 64)

	s.mu.RLock()
	if res, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return res, nil
	}
	s.mu.RUnlock()

	res, err := s.client.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.cache) < s.maxEntries {
		s.cache[key] = res
	}
	s.mu.Unlock()

	s.logger.Debug().Float64("lat", lat).Float64("lon", lon).
		Str("display_name", res.DisplayName).
		Msg("reverse geocoded location")
	return res, nil
}

// CacheLen returns the number of cached lookups.
func (s *Service) CacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// ClearCache drops all cached lookups.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*Result)
}
