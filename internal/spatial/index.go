// Package spatial provides a grid-bucketed index over geographic points
// supporting closest-point and radius queries. Candidate enumeration is
// approximate (bounded by grid cells) but the final distance filter is
// always exact haversine.
package spatial

import (
	"math"
	"sort"

	"github.com/sunchase/sunchase/internal/geo"
)

const (
	// DefaultGridSizeDegrees is the cell edge in degrees (0.5 degrees is
	// roughly 35 miles at UK latitudes).
	DefaultGridSizeDegrees = 0.5

	// DefaultMaxRingRadius caps the ring expansion in FindClosest, in
	// grid cells per direction. Raising it trades speed for recall when
	// points are sparse.
	DefaultMaxRingRadius = 2

	// milesPerDegree is the approximate miles spanned by one degree,
	// used only to size the candidate block in FindWithinRadius.
	milesPerDegree = 69.0

	// cellMilesFactor converts grid degrees to an approximate cell size
	// in miles for the early-termination check in FindClosest. It is
	// latitude-dependent in reality (longitude degrees shrink toward the
	// poles), so the check is a heuristic, not a correctness bound.
	cellMilesFactor = 111.0
)

// Entry is one indexed point. ID is caller-defined, typically an offset
// into the caller's own slice.
type Entry struct {
	ID  int
	Lat float64
	Lon float64
}

// Match is a query result: an entry ID and its exact haversine distance
// from the query coordinate.
type Match struct {
	ID            int
	DistanceMiles float64
}

// Config tunes index construction. Zero values select the defaults.
type Config struct {
	GridSizeDegrees float64
	MaxRingRadius   int

	// DistanceCache, when set, memoizes haversine computations across
	// queries. Optional.
	DistanceCache *geo.DistanceCache
}

type cellKey struct {
	x int
	y int
}

// Index partitions entries into fixed-size lat/lon cells. Built once and
// read-only afterwards; rebuilds replace the whole index.
type Index struct {
	gridSize  float64
	maxRadius int
	cache     *geo.DistanceCache

	cells   map[cellKey][]int
	entries []Entry
}

// New builds an index over the given entries.
func New(cfg Config, entries []Entry) *Index {
	if cfg.GridSizeDegrees <= 0 {
		cfg.GridSizeDegrees = DefaultGridSizeDegrees
	}
	if cfg.MaxRingRadius <= 0 {
		cfg.MaxRingRadius = DefaultMaxRingRadius
	}
	ix := &Index{
		gridSize:  cfg.GridSizeDegrees,
		maxRadius: cfg.MaxRingRadius,
		cache:     cfg.DistanceCache,
		cells:     make(map[cellKey][]int),
		entries:   make([]Entry, len(entries)),
	}
	copy(ix.entries, entries)
	for i, e := range ix.entries {
		k := ix.key(e.Lat, e.Lon)
		ix.cells[k] = append(ix.cells[k], i)
	}
	return ix
}

// key truncates toward zero, matching the bucketing the index was built
// with on both sides of the equator and meridian.
func (ix *Index) key(lat, lon float64) cellKey {
	return cellKey{x: int(lat / ix.gridSize), y: int(lon / ix.gridSize)}
}

func (ix *Index) distance(lat1, lon1, lat2, lon2 float64) float64 {
	if ix.cache != nil {
		return ix.cache.Distance(lat1, lon1, lat2, lon2)
	}
	return geo.DistanceMiles(lat1, lon1, lat2, lon2)
}

// FindClosest returns the nearest indexed entry to (lat, lon), searching
// ring-by-ring outward from the target cell up to the configured ring
// cap. Within the searched area the result is exact; if the true nearest
// entry lies beyond the cap the best entry found so far is returned, and
// if no entry was found at all ok is false.
func (ix *Index) FindClosest(lat, lon float64) (Match, bool) {
	if len(ix.entries) == 0 {
		return Match{}, false
	}
	center := ix.key(lat, lon)

	best := Match{DistanceMiles: math.Inf(1)}
	found := false

	for radius := 0; radius <= ix.maxRadius; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				// Inner rings were covered by smaller radii.
				if radius > 0 && abs(dx) != radius && abs(dy) != radius {
					continue
				}
				ids := ix.cells[cellKey{x: center.x + dx, y: center.y + dy}]
				for _, id := range ids {
					e := ix.entries[id]
					d := ix.distance(lat, lon, e.Lat, e.Lon)
					if d < best.DistanceMiles {
						best = Match{ID: e.ID, DistanceMiles: d}
						found = true
					}
				}
			}
		}
		// A candidate closer than one cell's span cannot be beaten by
		// anything in an outer ring.
		if found && best.DistanceMiles < ix.gridSize*cellMilesFactor {
			break
		}
	}
	if !found {
		return Match{}, false
	}
	return best, true
}

// FindWithinRadius returns every indexed entry within radiusMiles of
// (lat, lon), sorted ascending by distance. The cell block scanned must
// over-approximate the radius on both axes so the result is equivalent
// to a linear scan; candidates are filtered by exact haversine distance.
func (ix *Index) FindWithinRadius(lat, lon, radiusMiles float64) []Match {
	if len(ix.entries) == 0 || radiusMiles < 0 {
		return nil
	}
	latSpan := int(math.Ceil(radiusMiles / milesPerDegree / ix.gridSize))

	// Longitude degrees shrink with latitude, so the east-west span is
	// sized by the most poleward latitude the circle reaches.
	phi := math.Abs(lat) + radiusMiles/milesPerDegree
	if phi > 89 {
		phi = 89
	}
	lonMilesPerDegree := milesPerDegree * math.Cos(phi*math.Pi/180)
	lonSpan := int(math.Ceil(radiusMiles / lonMilesPerDegree / ix.gridSize))

	center := ix.key(lat, lon)

	var matches []Match
	for dx := -latSpan; dx <= latSpan; dx++ {
		for dy := -lonSpan; dy <= lonSpan; dy++ {
			ids := ix.cells[cellKey{x: center.x + dx, y: center.y + dy}]
			for _, id := range ids {
				e := ix.entries[id]
				d := ix.distance(lat, lon, e.Lat, e.Lon)
				if d <= radiusMiles {
					matches = append(matches, Match{ID: e.ID, DistanceMiles: d})
				}
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceMiles < matches[j].DistanceMiles
	})
	return matches
}

// Stats describes index occupancy, for the ops status endpoint.
type Stats struct {
	Entries         int     `json:"entries"`
	Cells           int     `json:"cells"`
	MinPerCell      int     `json:"min_per_cell"`
	MaxPerCell      int     `json:"max_per_cell"`
	AvgPerCell      float64 `json:"avg_per_cell"`
	GridSizeDegrees float64 `json:"grid_size_degrees"`
}

// Stats returns occupancy statistics for the index.
func (ix *Index) Stats() Stats {
	st := Stats{
		Entries:         len(ix.entries),
		Cells:           len(ix.cells),
		GridSizeDegrees: ix.gridSize,
	}
	if len(ix.cells) == 0 {
		return st
	}
	st.MinPerCell = math.MaxInt
	for _, ids := range ix.cells {
		n := len(ids)
		if n < st.MinPerCell {
			st.MinPerCell = n
		}
		if n > st.MaxPerCell {
			st.MaxPerCell = n
		}
	}
	st.AvgPerCell = float64(st.Entries) / float64(st.Cells)
	return st
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
