package scoring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sunchase/sunchase/internal/dataset"
)

// Aggregation errors. Both are recoverable not-found conditions, never
// used for control flow beyond an early return.
var (
	ErrNoForecastForDate = errors.New("no forecast for requested date")
	ErrNoHoursInWindow   = errors.New("no hourly records in requested window")
	ErrInvalidWindow     = errors.New("invalid hour window")
)

// Default hour window, matching a day trip.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 17
)

// Averages is one reduced record over an hour window: arithmetic means
// for the continuous variables, an OR-reduction for snow.
type Averages struct {
	CloudCoverage float64
	UVIndex       float64
	VisibilityM   float64
	RainMM        float64
	FeelsLikeC    float64
	Humidity      float64
	SnowPresent   bool

	Hours         int
	MinFeelsLikeC float64
	MaxFeelsLikeC float64
	TimeRange     string
}

// aggKey identifies one observation point's window. Coordinates are part
// of the key: distinct points may share a (name, region, country)
// identity and must not be served each other's averages.
type aggKey struct {
	point    string
	lat, lon float64
	date     string
	start    int
	end      int
}

// AggregatorConfig tunes the aggregation memo. Zero values select
// defaults.
type AggregatorConfig struct {
	// CacheMaxEntries caps the memo; once full, new results are computed
	// but not retained. No eviction.
	CacheMaxEntries int
}

// Aggregator reduces a point's hourly forecast over an [start, end] hour
// window. Results are memoized for the process lifetime; the memo is
// dropped wholesale at data refresh.
type Aggregator struct {
	mu         sync.RWMutex
	cache      map[aggKey]Averages
	maxEntries int
}

// NewAggregator returns an Aggregator with the given configuration.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 10000
	}
	return &Aggregator{
		cache:      make(map[aggKey]Averages),
		maxEntries: cfg.CacheMaxEntries,
	}
}

// Aggregate reduces the hourly records of p on date falling inside the
// inclusive [startHour, endHour] window. Both window edges are included;
// the convention is inclusive-inclusive throughout the scoring pipeline.
// Returns ErrNoForecastForDate or ErrNoHoursInWindow when nothing
// matches.
func (a *Aggregator) Aggregate(p *dataset.ObservationPoint, date string, startHour, endHour int) (Averages, error) {
	if startHour < 0 || endHour > 23 || startHour >= endHour {
		return Averages{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow, startHour, endHour)
	}

	key := aggKey{
		point: p.Location.DedupKey(),
		lat:   p.Location.Latitude,
		lon:   p.Location.Longitude,
		date:  date,
		start: startHour,
		end:   endHour,
	}
	a.mu.RLock()
	if avg, ok := a.cache[key]; ok {
		a.mu.RUnlock()
		return avg, nil
	}
	a.mu.RUnlock()

	forecast := p.ForecastFor(date)
	if forecast == nil {
		return Averages{}, ErrNoForecastForDate
	}

	avg := Averages{}
	for i := range forecast.Hourly {
		h := &forecast.Hourly[i]
		hr, err := h.Hour()
		if err != nil {
			continue
		}
		if hr < startHour || hr > endHour {
			continue
		}
		avg.CloudCoverage += h.Cloud
		avg.UVIndex += h.UV
		avg.VisibilityM += h.VisKM * 1000
		avg.RainMM += h.PrecipMM
		avg.FeelsLikeC += h.FeelsLikeC
		avg.Humidity += h.Humidity
		if h.SnowPresent() {
			avg.SnowPresent = true
		}
		if avg.Hours == 0 || h.FeelsLikeC < avg.MinFeelsLikeC {
			avg.MinFeelsLikeC = h.FeelsLikeC
		}
		if avg.Hours == 0 || h.FeelsLikeC > avg.MaxFeelsLikeC {
			avg.MaxFeelsLikeC = h.FeelsLikeC
		}
		avg.Hours++
	}
	if avg.Hours == 0 {
		return Averages{}, ErrNoHoursInWindow
	}

	n := float64(avg.Hours)
	avg.CloudCoverage /= n
	avg.UVIndex /= n
	avg.VisibilityM /= n
	avg.RainMM /= n
	avg.FeelsLikeC /= n
	avg.Humidity /= n
	avg.TimeRange = fmt.Sprintf("%02d:00-%02d:00", startHour, endHour)

	a.mu.Lock()
	if len(a.cache) < a.maxEntries {
		a.cache[key] = avg
	}
	a.mu.Unlock()
	return avg, nil
}

// Len returns the number of memoized entries.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// Clear drops the memo, for use after a dataset refresh.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	a.cache = make(map[aggKey]Averages)
	a.mu.Unlock()
}
