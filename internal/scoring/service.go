package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/dataset"
)

// TemperatureRange summarizes feels-like extremes over the scored
// window, rounded to 1 decimal place.
type TemperatureRange struct {
	MinC float64 `json:"min_temp"`
	MaxC float64 `json:"max_temp"`
}

// PointScores is both dimensions scored from a single aggregation pass.
type PointScores struct {
	Sunny     SunnyResult      `json:"sunny"`
	Comfort   ComfortResult    `json:"comfort"`
	TempRange TemperatureRange `json:"temperature_range"`
	Hours     int              `json:"hours_sampled"`
	TimeRange string           `json:"time_range"`
}

// ServiceConfig holds configuration for the scoring service.
type ServiceConfig struct {
	Logger zerolog.Logger

	// AggregatorCacheMax and CalculatorCacheMax cap the two memo layers.
	// Zero selects the component defaults.
	AggregatorCacheMax int
	CalculatorCacheMax int
}

// Service is the scoring pipeline: aggregation then calculation, with
// both cache layers owned here. One instance per process; handlers share
// it by reference.
type Service struct {
	logger zerolog.Logger
	agg    *Aggregator
	calc   *Calculator
}

// NewService creates a scoring service with the provided configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		logger: cfg.Logger,
		agg:    NewAggregator(AggregatorConfig{CacheMaxEntries: cfg.AggregatorCacheMax}),
		calc:   NewCalculator(CalculatorConfig{CacheMaxEntries: cfg.CalculatorCacheMax}),
	}
}

// Sunny aggregates and scores the sunniness dimension for one point.
func (s *Service) Sunny(p *dataset.ObservationPoint, date string, startHour, endHour int) (SunnyResult, error) {
	avg, err := s.agg.Aggregate(p, date, startHour, endHour)
	if err != nil {
		return SunnyResult{}, err
	}
	return s.calc.SunnyScore(avg), nil
}

// Comfort aggregates and scores the comfort dimension for one point.
func (s *Service) Comfort(p *dataset.ObservationPoint, date string, startHour, endHour int) (ComfortResult, error) {
	avg, err := s.agg.Aggregate(p, date, startHour, endHour)
	if err != nil {
		return ComfortResult{}, err
	}
	return s.calc.ComfortScore(avg), nil
}

// Both scores the two dimensions from one aggregation pass.
func (s *Service) Both(p *dataset.ObservationPoint, date string, startHour, endHour int) (PointScores, error) {
	avg, err := s.agg.Aggregate(p, date, startHour, endHour)
	if err != nil {
		return PointScores{}, err
	}
	return PointScores{
		Sunny:   s.calc.SunnyScore(avg),
		Comfort: s.calc.ComfortScore(avg),
		TempRange: TemperatureRange{
			MinC: round1(avg.MinFeelsLikeC),
			MaxC: round1(avg.MaxFeelsLikeC),
		},
		Hours:     avg.Hours,
		TimeRange: avg.TimeRange,
	}, nil
}

// CacheStats reports cache occupancy for the ops status endpoint.
type CacheStats struct {
	AggregatorEntries int `json:"aggregator_entries"`
	CalculatorEntries int `json:"calculator_entries"`
}

// CacheStats returns current cache occupancy.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		AggregatorEntries: s.agg.Len(),
		CalculatorEntries: s.calc.Len(),
	}
}

// InvalidateCaches drops both memo layers. Called after a dataset swap;
// stale entries keyed by rebased dates would otherwise linger.
func (s *Service) InvalidateCaches() {
	s.agg.Clear()
	s.calc.Clear()
	s.logger.Info().Msg("scoring caches invalidated")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
