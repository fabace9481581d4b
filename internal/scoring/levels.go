package scoring

// Sunniness level labels.
const (
	LevelVerySunny    = "Very Sunny"
	LevelSunny        = "Sunny"
	LevelPartlySunny  = "Partly Sunny"
	LevelMostlyCloudy = "Mostly Cloudy"
	LevelOvercast     = "Overcast"
)

// Comfort level labels.
const (
	LevelVeryComfortable   = "Very Comfortable"
	LevelComfortable       = "Comfortable"
	LevelModerate          = "Moderate"
	LevelUncomfortable     = "Uncomfortable"
	LevelVeryUncomfortable = "Very Uncomfortable"
)

// SunnyLevel classifies a sunniness score into its label.
func SunnyLevel(score float64) string {
	switch {
	case score >= 9:
		return LevelVerySunny
	case score >= 7:
		return LevelSunny
	case score >= 5:
		return LevelPartlySunny
	case score >= 3:
		return LevelMostlyCloudy
	default:
		return LevelOvercast
	}
}

// ComfortLevel classifies a comfort score into its label. Thresholds are
// shared with SunnyLevel; only the labels differ.
func ComfortLevel(score float64) string {
	switch {
	case score >= 9:
		return LevelVeryComfortable
	case score >= 7:
		return LevelComfortable
	case score >= 5:
		return LevelModerate
	case score >= 3:
		return LevelUncomfortable
	default:
		return LevelVeryUncomfortable
	}
}
