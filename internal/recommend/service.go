// Package recommend ranks weather observation points as travel
// destinations for a requested date and hour window.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/scoring"
)

// Dimension selects which score drives the ranking.
type Dimension string

// Supported ranking dimensions.
const (
	DimensionSunny   Dimension = "sunny"
	DimensionComfort Dimension = "comfort"
)

// ErrUnknownDimension is returned for a dimension outside the supported
// set.
var ErrUnknownDimension = errors.New("unknown ranking dimension")

// DefaultLimit caps result lists when the caller does not say otherwise.
const DefaultLimit = 30

// Query is one ranking request. Origin and MaxDistanceMiles act together:
// when both are set the candidate set is the radius query result,
// otherwise every point is a candidate and Distance is left nil.
type Query struct {
	Date      string
	StartHour int
	EndHour   int
	Dimension Dimension

	Origin           *geo.Point
	MaxDistanceMiles float64
	Limit            int
}

// Destination is one ranked result.
type Destination struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// DistanceMiles is set only for radius-filtered queries.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`

	Scores scoring.PointScores `json:"scores"`
}

// score returns the ranking score for the given dimension.
func (d *Destination) score(dim Dimension) float64 {
	if dim == DimensionComfort {
		return d.Scores.Comfort.Score
	}
	return d.Scores.Sunny.Score
}

// ServiceConfig holds configuration for the ranking service.
type ServiceConfig struct {
	Logger  zerolog.Logger
	Store   *dataset.Store
	Scoring *scoring.Service
}

// Service ranks destinations. Stateless between calls; all shared state
// lives in the dataset store and the scoring caches.
type Service struct {
	logger  zerolog.Logger
	store   *dataset.Store
	scoring *scoring.Service
}

// NewService creates a ranking service with the provided configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		logger:  cfg.Logger,
		store:   cfg.Store,
		scoring: cfg.Scoring,
	}
}

// TopDestinations scores every candidate point, removes duplicates by
// (name, region, country) keeping the higher-scoring entry, sorts
// descending by the requested dimension's score and truncates to the
// limit. Ties keep their original candidate order.
func (s *Service) TopDestinations(ctx context.Context, q Query) ([]Destination, error) {
	switch q.Dimension {
	case "", DimensionSunny:
		q.Dimension = DimensionSunny
	case DimensionComfort:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, q.Dimension)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	type candidate struct {
		point    *dataset.ObservationPoint
		distance *float64
	}
	var candidates []candidate
	if q.Origin != nil && q.MaxDistanceMiles > 0 {
		matches := snap.Index.FindWithinRadius(q.Origin.Lat, q.Origin.Lon, q.MaxDistanceMiles)
		for _, m := range matches {
			p, err := snap.Point(m.ID)
			if err != nil {
				return nil, err
			}
			d := m.DistanceMiles
			candidates = append(candidates, candidate{point: p, distance: &d})
		}
	} else {
		for _, p := range snap.Weather.Points {
			c := candidate{point: p}
			if q.Origin != nil {
				d := geo.DistanceMiles(q.Origin.Lat, q.Origin.Lon, p.Location.Latitude, p.Location.Longitude)
				c.distance = &d
			}
			candidates = append(candidates, c)
		}
	}

	var results []Destination
	byKey := make(map[string]int, len(candidates))
	skipped := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := s.scoring.Both(c.point, q.Date, q.StartHour, q.EndHour)
		if err != nil {
			if errors.Is(err, scoring.ErrNoForecastForDate) || errors.Is(err, scoring.ErrNoHoursInWindow) {
				skipped++
				continue
			}
			return nil, err
		}
		dest := Destination{
			Name:          c.point.Location.Name,
			Region:        c.point.Location.Region,
			Country:       c.point.Location.Country,
			Latitude:      c.point.Location.Latitude,
			Longitude:     c.point.Location.Longitude,
			DistanceMiles: c.distance,
			Scores:        scores,
		}
		key := c.point.Location.DedupKey()
		if at, dup := byKey[key]; dup {
			if dest.score(q.Dimension) > results[at].score(q.Dimension) {
				results[at] = dest
			}
			continue
		}
		byKey[key] = len(results)
		results = append(results, dest)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score(q.Dimension) > results[j].score(q.Dimension)
	})
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}

	s.logger.Debug().
		Str("date", q.Date).
		Str("dimension", string(q.Dimension)).
		Int("candidates", len(candidates)).
		Int("skipped", skipped).
		Int("results", len(results)).
		Msg("ranked destinations")
	return results, nil
}
