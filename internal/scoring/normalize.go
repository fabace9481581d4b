// Package scoring turns hourly forecast records into 0-10 sunniness and
// comfort scores. Normalization curves are piecewise-linear with fixed
// breakpoints; the breakpoints are normative and must not be retuned
// without rescoring every stored expectation.
package scoring

import "math"

// NormalizeCloudSunny maps cloud coverage (%) to a 0-10 sunniness
// sub-score. Clear skies score 10; full cover approaches 0.
func NormalizeCloudSunny(value float64) float64 {
	switch {
	case value <= 10:
		return 10.0
	case value <= 24:
		return 8 + (10-8)*(24-value)/(24-10)
	case value <= 49:
		return 5 + (8-5)*(49-value)/(49-25)
	case value <= 90:
		return 2 + (5-2)*(90-value)/(90-50)
	default:
		return math.Max(0, 0+(2-0)*(100-value)/(100-90))
	}
}

// NormalizeCloudComfort maps cloud coverage (%) to a comfort sub-score.
// A little cloud beats none: the peak sits near 30% cover, not 0%.
func NormalizeCloudComfort(value float64) float64 {
	switch {
	case value <= 10:
		return 7 + (10-7)*(10-value)/10
	case value <= 30:
		return 9 + (10-9)*(30-value)/20
	case value <= 50:
		return 7 + (9-7)*(50-value)/20
	case value <= 80:
		return 4 + (7-4)*(80-value)/30
	default:
		return math.Max(0, 0+(4-0)*(100-value)/20)
	}
}

// NormalizeUVSunny maps UV index to a sunniness sub-score; more UV reads
// as more sun, saturating at 10 from UV 7 upward.
func NormalizeUVSunny(value float64) float64 {
	switch {
	case value <= 2:
		return value * 2
	case value <= 5:
		return 4 + (8-4)*(value-2)/(5-2)
	case value <= 7:
		return 8 + (10-8)*(value-5)/(7-5)
	default:
		return 10.0
	}
}

// NormalizeUVComfort maps UV index to a comfort sub-score; low UV is
// comfortable, high UV is punished.
func NormalizeUVComfort(value float64) float64 {
	switch {
	case value <= 2:
		return 10
	case value <= 5:
		return 8 + (10-8)*(5-value)/3
	case value <= 7:
		return 5 + (7-5)*(7-value)/2
	case value <= 10:
		return 3 + (5-3)*(10-value)/3
	default:
		return math.Max(0, 0+(3-0)*(12-math.Min(value, 12))/2)
	}
}

// NormalizeVisibility maps visibility in meters to a sub-score. Both
// dimensions share this curve.
func NormalizeVisibility(value float64) float64 {
	switch {
	case value > 30000:
		return 10.0
	case value > 10000:
		return 9 + (10-9)*(value-10000)/(30000-10000)
	case value > 4000:
		return 3 + (8-3)*(value-4001)/(10000-4001)
	case value > 1000:
		return 1 + (2-1)*(value-1001)/(4000-1001)
	default:
		return 0.0
	}
}

// NormalizeRainSunny maps mean rainfall (mm) to a sunniness sub-score.
// The jump from 10 to 9 between dry and any rain is intentional.
func NormalizeRainSunny(value float64) float64 {
	switch {
	case value == 0.0:
		return 10.0
	case value <= 0.9:
		return 9.0
	case value <= 10:
		return math.Max(5, 8-(value-1)*(3.0/9.0))
	case value <= 30:
		return math.Max(1, 5-(value-11)*(4.0/19.0))
	default:
		return 0.0
	}
}

// NormalizeRainComfort maps mean rainfall (mm) to a comfort sub-score;
// light rain is tolerable, heavy rain is not.
func NormalizeRainComfort(value float64) float64 {
	switch {
	case value == 0.0:
		return 10.0
	case value <= 0.9:
		return 8 + (9-8)*(0.9-value)/0.9
	case value <= 10:
		return 5 + (8-5)*(10-value)/9
	case value <= 30:
		return 2 + (5-2)*(30-value)/19
	default:
		return math.Max(0, 0+(2-0)*(70-math.Min(value, 70))/40)
	}
}

// NormalizeSnowSunny scores snow presence for the sunniness dimension.
func NormalizeSnowSunny(present bool) float64 {
	if present {
		return 0.0
	}
	return 10.0
}

// NormalizeSnowComfort scores snow presence for the comfort dimension.
// Snow is not a first-class variable in either dimension yet; the
// asymmetry with the sunniness curve is a known gap.
func NormalizeSnowComfort(present bool) float64 {
	if present {
		return 1.0
	}
	return 10.0
}

// NormalizeFeelsLikeComfort maps feels-like temperature (degrees C) to a
// comfort sub-score, peaking at 10 across 20-26.
func NormalizeFeelsLikeComfort(value float64) float64 {
	switch {
	case value >= 20 && value <= 26:
		return 10.0
	case value >= 15 && value < 20:
		return 7 + (10-7)*(20-value)/5
	case value > 26 && value <= 30:
		return 7 + (10-7)*(30-value)/4
	case value >= 10 && value < 15:
		return 4 + (7-3)*(15-value)/5
	case value > 30 && value <= 35:
		return 4 + (7-4)*(35-value)/5
	case value < 10:
		return math.Max(0, 0+(3-0)*(10-value)/10)
	default:
		return math.Max(0, 0+(4-0)*(value-35)/15)
	}
}

// NormalizeHumidityComfort maps relative humidity (%) to a comfort
// sub-score, peaking at 10 across 40-60.
func NormalizeHumidityComfort(value float64) float64 {
	switch {
	case value >= 40 && value <= 60:
		return 10.0
	case value >= 30 && value < 40:
		return 7 + (9-7)*(40-value)/10
	case value > 60 && value <= 70:
		return 7 + (9-7)*(70-value)/10
	case value >= 20 && value < 30:
		return 4 + (7-4)*(30-value)/10
	case value > 70 && value <= 80:
		return 4 + (7-4)*(80-value)/10
	case value < 20:
		return math.Max(0, 0+(4-0)*(20-value)/20)
	default:
		return math.Max(0, 0+(4-0)*(100-math.Min(value, 100))/20)
	}
}
