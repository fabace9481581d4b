package dataset

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/sunchase/sunchase/internal/spatial"
)

// Snapshot is an immutable view of the loaded dataset plus the spatial
// indexes built over it. A snapshot is never mutated after construction;
// refresh builds a new one and swaps it in wholesale.
type Snapshot struct {
	Weather    *WeatherDataset
	Boundaries *GridBoundaries

	// Index covers observation points; entry IDs are offsets into
	// Weather.Points. CellIndex covers overlay cell centers; entry IDs
	// are offsets into Boundaries.CellBoundaries.
	Index     *spatial.Index
	CellIndex *spatial.Index

	byName   map[string]int
	LoadedAt time.Time
}

// BuildSnapshot validates the dataset and constructs the point and cell
// indexes. Boundaries may be nil when no overlay document is configured.
func BuildSnapshot(weather *WeatherDataset, boundaries *GridBoundaries, cfg spatial.Config, now time.Time) (*Snapshot, error) {
	if weather == nil || len(weather.Points) == 0 {
		return nil, ErrEmptyDataset
	}
	entries := make([]spatial.Entry, len(weather.Points))
	byName := make(map[string]int, len(weather.Points))
	for i, p := range weather.Points {
		entries[i] = spatial.Entry{ID: i, Lat: p.Location.Latitude, Lon: p.Location.Longitude}
		byName[strings.ToLower(p.Location.Name)] = i
	}
	snap := &Snapshot{
		Weather:    weather,
		Boundaries: boundaries,
		Index:      spatial.New(cfg, entries),
		byName:     byName,
		LoadedAt:   now,
	}
	if boundaries != nil && len(boundaries.CellBoundaries) > 0 {
		cells := make([]spatial.Entry, len(boundaries.CellBoundaries))
		for i, c := range boundaries.CellBoundaries {
			cells[i] = spatial.Entry{ID: i, Lat: c.Center.Latitude, Lon: c.Center.Longitude}
		}
		snap.CellIndex = spatial.New(cfg, cells)
	}
	return snap, nil
}

// Point returns the observation point for an index entry ID.
func (s *Snapshot) Point(id int) (*ObservationPoint, error) {
	if id < 0 || id >= len(s.Weather.Points) {
		return nil, ErrPointNotFound
	}
	return s.Weather.Points[id], nil
}

// PointByName looks up an observation point by case-insensitive location
// name.
func (s *Snapshot) PointByName(name string) (*ObservationPoint, error) {
	id, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrPointNotFound
	}
	return s.Weather.Points[id], nil
}

// Store holds the current snapshot behind an atomic pointer. Readers get
// a consistent view for the duration of a request; a refresh swap never
// tears an in-flight read.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore returns an empty store. Current returns ErrNotLoaded until the
// first Swap.
func NewStore() *Store {
	return &Store{}
}

// Swap installs a new snapshot as the current view.
func (s *Store) Swap(snap *Snapshot) {
	s.snap.Store(snap)
}

// Current returns the active snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Loaded reports whether a snapshot has been installed.
func (s *Store) Loaded() bool {
	return s.snap.Load() != nil
}
