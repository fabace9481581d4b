package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadWeatherFile reads and validates a weather dataset document from disk.
func LoadWeatherFile(path string) (*WeatherDataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weather dataset: %w", err)
	}
	return ParseWeather(raw)
}

// ParseWeather decodes and validates a weather dataset document.
func ParseWeather(raw []byte) (*WeatherDataset, error) {
	var ds WeatherDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode weather dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks structural invariants: non-empty, coordinates in range,
// parseable dates with no duplicates per point, and hourly records sorted
// by hour with no repeats within a day.
func (ds *WeatherDataset) Validate() error {
	if len(ds.Points) == 0 {
		return ErrEmptyDataset
	}
	for _, p := range ds.Points {
		loc := p.Location
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("%w: point %q (%f, %f)", ErrOutOfRangeCoords, loc.Name, loc.Latitude, loc.Longitude)
		}
		seen := make(map[string]struct{}, len(p.Forecast))
		for i := range p.Forecast {
			f := &p.Forecast[i]
			if _, err := f.ParsedDate(); err != nil {
				return fmt.Errorf("%w: point %q date %q", ErrInvalidDataset, loc.Name, f.Date)
			}
			if _, dup := seen[f.Date]; dup {
				return fmt.Errorf("%w: point %q date %q", ErrDuplicateDate, loc.Name, f.Date)
			}
			seen[f.Date] = struct{}{}
			prev := -1
			for j := range f.Hourly {
				hr, err := f.Hourly[j].Hour()
				if err != nil {
					return fmt.Errorf("%w: point %q date %q time %q", ErrMalformedTime, loc.Name, f.Date, f.Hourly[j].Time)
				}
				if hr <= prev {
					return fmt.Errorf("%w: point %q date %q hour %d", ErrUnsortedHourly, loc.Name, f.Date, hr)
				}
				prev = hr
			}
		}
	}
	return nil
}

// LoadBoundariesFile reads a grid-boundary overlay document from disk.
func LoadBoundariesFile(path string) (*GridBoundaries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid boundaries: %w", err)
	}
	var gb GridBoundaries
	if err := json.Unmarshal(raw, &gb); err != nil {
		return nil, fmt.Errorf("decode grid boundaries: %w", err)
	}
	return &gb, nil
}
