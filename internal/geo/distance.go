// Package geo provides geographic primitives: coordinates, haversine
// distance in miles, and a bounded distance cache for hot scoring loops.
package geo

import (
	"errors"
	"math"
	"sync"
)

// Geo errors.
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// earthRadiusMiles is the spherical-earth radius used for all distance
// calculations. Miles because the product surface (UK travel search)
// reports distances in miles.
const earthRadiusMiles = 3956

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point is within the WGS84 coordinate domain.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// ValidateCoordinates checks that lat/lon are within the valid domain.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// DistanceMiles calculates the great-circle distance between two points
// in miles using the haversine formula. A spherical earth is assumed;
// the error versus an ellipsoidal model is well under the grid
// resolution this service works at.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusMiles * c
}

// DistanceCacheConfig holds configuration for the distance cache.
type DistanceCacheConfig struct {
	// MaxEntries caps the cache size. Once full, new pairs are computed
	// but not stored. Default: 10000.
	MaxEntries int
}

// DistanceCache memoizes haversine distances between coordinate pairs.
// Keys are rounded to 4 decimal places (~11m) so nearby queries share
// entries without materially changing results.
type DistanceCache struct {
	maxEntries int

	mu    sync.RWMutex
	cache map[distanceKey]float64
}

type distanceKey struct {
	lat1, lon1, lat2, lon2 float64
}

// NewDistanceCache creates a new distance cache.
func NewDistanceCache(cfg DistanceCacheConfig) *DistanceCache {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &DistanceCache{
		maxEntries: maxEntries,
		cache:      make(map[distanceKey]float64),
	}
}

// Distance returns the haversine distance in miles between two points,
// served from cache when a rounded-coordinate match exists.
func (c *DistanceCache) Distance(lat1, lon1, lat2, lon2 float64) float64 {
	key := distanceKey{
		lat1: round4(lat1),
		lon1: round4(lon1),
		lat2: round4(lat2),
		lon2: round4(lon2),
	}

	c.mu.RLock()
	if d, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return d
	}
	c.mu.RUnlock()

	d := DistanceMiles(lat1, lon1, lat2, lon2)

	c.mu.Lock()
	if len(c.cache) < c.maxEntries {
		c.cache[key] = d
	}
	c.mu.Unlock()

	return d
}

// Len returns the number of cached entries.
func (c *DistanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all cached entries.
func (c *DistanceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[distanceKey]float64)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
