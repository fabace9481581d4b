package scoring

import (
	"math"
	"sync"
)

// SunnyBreakdown is the per-variable sub-score set behind a sunniness
// score.
type SunnyBreakdown struct {
	Cloud      float64 `json:"cloud_score"`
	UV         float64 `json:"uv_score"`
	Visibility float64 `json:"visibility_score"`
	Rain       float64 `json:"rain_score"`
	Snow       float64 `json:"snow_score"`
}

// ComfortBreakdown is the per-variable sub-score set behind a comfort
// score.
type ComfortBreakdown struct {
	Cloud      float64 `json:"cloud_score"`
	UV         float64 `json:"uv_score"`
	Visibility float64 `json:"visibility_score"`
	Rain       float64 `json:"rain_score"`
	Snow       float64 `json:"snow_score"`
	FeelsLike  float64 `json:"feels_like_temp_score"`
	Humidity   float64 `json:"humidity_score"`
}

// SunnyResult is a scored sunniness dimension.
type SunnyResult struct {
	Score     float64        `json:"sunny_score"`
	Level     string         `json:"sunny_level"`
	Breakdown SunnyBreakdown `json:"breakdown"`
}

// ComfortResult is a scored comfort dimension.
type ComfortResult struct {
	Score     float64          `json:"comfort_score"`
	Level     string           `json:"comfort_level"`
	Breakdown ComfortBreakdown `json:"breakdown"`
}

type sunnyKey struct {
	cloud, uv, vis, rain float64
	snow                 bool
}

type comfortKey struct {
	cloud, uv, vis, rain, feels, humidity float64
	snow                                  bool
}

// CalculatorConfig tunes the score caches. Zero values select defaults.
type CalculatorConfig struct {
	// CacheMaxEntries caps each dimension's cache independently; once
	// full, new results are computed but not retained.
	CacheMaxEntries int
}

// Calculator applies the normalization curves to averaged variables.
// Scoring is a pure function of its inputs, so results are cached keyed
// by the inputs rounded to 4 decimal places; the rounding loses nothing
// observable at the 2-decimal output precision.
type Calculator struct {
	mu         sync.RWMutex
	sunny      map[sunnyKey]SunnyResult
	comfort    map[comfortKey]ComfortResult
	maxEntries int
}

// NewCalculator returns a Calculator with the given configuration.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 5000
	}
	return &Calculator{
		sunny:      make(map[sunnyKey]SunnyResult),
		comfort:    make(map[comfortKey]ComfortResult),
		maxEntries: cfg.CacheMaxEntries,
	}
}

// SunnyScore scores the sunniness dimension: the unweighted mean of the
// five sub-scores, rounded to 2 decimal places.
func (c *Calculator) SunnyScore(avg Averages) SunnyResult {
	key := sunnyKey{
		cloud: round4(avg.CloudCoverage),
		uv:    round4(avg.UVIndex),
		vis:   round4(avg.VisibilityM),
		rain:  round4(avg.RainMM),
		snow:  avg.SnowPresent,
	}
	c.mu.RLock()
	if res, ok := c.sunny[key]; ok {
		c.mu.RUnlock()
		return res
	}
	c.mu.RUnlock()

	cloud := NormalizeCloudSunny(avg.CloudCoverage)
	uv := NormalizeUVSunny(avg.UVIndex)
	vis := NormalizeVisibility(avg.VisibilityM)
	rain := NormalizeRainSunny(avg.RainMM)
	snow := NormalizeSnowSunny(avg.SnowPresent)

	score := round2((cloud + uv + vis + rain + snow) / 5)
	res := SunnyResult{
		Score: score,
		Level: SunnyLevel(score),
		Breakdown: SunnyBreakdown{
			Cloud:      round2(cloud),
			UV:         round2(uv),
			Visibility: round2(vis),
			Rain:       round2(rain),
			Snow:       round2(snow),
		},
	}

	c.mu.Lock()
	if len(c.sunny) < c.maxEntries {
		c.sunny[key] = res
	}
	c.mu.Unlock()
	return res
}

// ComfortScore scores the comfort dimension: the unweighted mean of the
// seven sub-scores, rounded to 2 decimal places.
func (c *Calculator) ComfortScore(avg Averages) ComfortResult {
	key := comfortKey{
		cloud:    round4(avg.CloudCoverage),
		uv:       round4(avg.UVIndex),
		vis:      round4(avg.VisibilityM),
		rain:     round4(avg.RainMM),
		feels:    round4(avg.FeelsLikeC),
		humidity: round4(avg.Humidity),
		snow:     avg.SnowPresent,
	}
	c.mu.RLock()
	if res, ok := c.comfort[key]; ok {
		c.mu.RUnlock()
		return res
	}
	c.mu.RUnlock()

	cloud := NormalizeCloudComfort(avg.CloudCoverage)
	uv := NormalizeUVComfort(avg.UVIndex)
	vis := NormalizeVisibility(avg.VisibilityM)
	rain := NormalizeRainComfort(avg.RainMM)
	snow := NormalizeSnowComfort(avg.SnowPresent)
	feels := NormalizeFeelsLikeComfort(avg.FeelsLikeC)
	humidity := NormalizeHumidityComfort(avg.Humidity)

	score := round2((cloud + uv + vis + rain + snow + feels + humidity) / 7)
	res := ComfortResult{
		Score: score,
		Level: ComfortLevel(score),
		Breakdown: ComfortBreakdown{
			Cloud:      round2(cloud),
			UV:         round2(uv),
			Visibility: round2(vis),
			Rain:       round2(rain),
			Snow:       round2(snow),
			FeelsLike:  round2(feels),
			Humidity:   round2(humidity),
		},
	}

	c.mu.Lock()
	if len(c.comfort) < c.maxEntries {
		c.comfort[key] = res
	}
	c.mu.Unlock()
	return res
}

// Len returns the total cached entries across both dimensions.
func (c *Calculator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sunny) + len(c.comfort)
}

// Clear drops both caches, for use after a dataset refresh.
func (c *Calculator) Clear() {
	c.mu.Lock()
	c.sunny = make(map[sunnyKey]SunnyResult)
	c.comfort = make(map[comfortKey]ComfortResult)
	c.mu.Unlock()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
