package dataset

import (
	"fmt"
	"time"
)

// RebaseDates shifts every forecast date and hourly timestamp forward so
// that the earliest date in the dataset becomes today. Demo datasets are
// captured once and replayed; without rebasing a stale capture would never
// match a requested date. Returns the number of days shifted (zero when
// the dataset is already current or ahead of today).
func RebaseDates(ds *WeatherDataset, now time.Time) (int, error) {
	earliest, err := earliestDate(ds)
	if err != nil {
		return 0, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(earliest).Hours() / 24)
	if days <= 0 {
		return 0, nil
	}
	shift := time.Duration(days) * 24 * time.Hour
	for _, p := range ds.Points {
		for i := range p.Forecast {
			f := &p.Forecast[i]
			d, err := f.ParsedDate()
			if err != nil {
				return 0, fmt.Errorf("%w: date %q", ErrInvalidDataset, f.Date)
			}
			f.Date = d.Add(shift).Format(DateLayout)
			for j := range f.Hourly {
				t, err := time.Parse(TimeLayout, f.Hourly[j].Time)
				if err != nil {
					return 0, fmt.Errorf("%w: time %q", ErrMalformedTime, f.Hourly[j].Time)
				}
				f.Hourly[j].Time = t.Add(shift).Format(TimeLayout)
			}
		}
	}
	return days, nil
}

func earliestDate(ds *WeatherDataset) (time.Time, error) {
	var earliest time.Time
	found := false
	for _, p := range ds.Points {
		for i := range p.Forecast {
			d, err := p.Forecast[i].ParsedDate()
			if err != nil {
				return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidDataset, p.Forecast[i].Date)
			}
			if !found || d.Before(earliest) {
				earliest = d
				found = true
			}
		}
	}
	if !found {
		return time.Time{}, ErrEmptyDataset
	}
	return earliest, nil
}
