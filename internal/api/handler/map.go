package handler

import (
	"net/http"

	"github.com/sunchase/sunchase/internal/api/models"
	"github.com/sunchase/sunchase/internal/api/response"
	"github.com/sunchase/sunchase/internal/dataset"
)

// MapHandler serves the grid overlay used by map frontends.
type MapHandler struct {
	store *dataset.Store
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(store *dataset.Store) *MapHandler {
	return &MapHandler{store: store}
}

// Cells handles GET /v1/map/cells - boundary cells near a coordinate.
// Cell centers are treated as plain spatial points, so the radius query
// runs on the same index machinery as the destination lookups.
func (h *MapHandler) Cells(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}
	radius, ok := parseRadius(w, r)
	if !ok {
		return
	}

	snap, err := h.store.Current()
	if err != nil {
		response.ServiceUnavailable(w, r, "weather dataset is not loaded yet")
		return
	}

	if snap.CellIndex == nil || snap.Boundaries == nil {
		response.NotFound(w, r, "no grid overlay is loaded")
		return
	}

	matches := snap.CellIndex.FindWithinRadius(lat, lon, radius)
	cells := make([]models.MapCell, 0, len(matches))
	for _, m := range matches {
		if m.ID < 0 || m.ID >= len(snap.Boundaries.CellBoundaries) {
			continue
		}
		c := snap.Boundaries.CellBoundaries[m.ID]
		cell := models.MapCell{
			ID:            c.ID,
			Center:        models.Point{Lat: c.Center.Latitude, Lon: c.Center.Longitude},
			DistanceMiles: m.DistanceMiles,
		}
		for i, b := range c.Boundaries {
			cell.Boundaries[i] = models.Point{Lat: b.Latitude, Lon: b.Longitude}
		}
		cells = append(cells, cell)
	}

	response.JSON(w, r, http.StatusOK, models.MapCellsResponse{
		RadiusMiles:   radius,
		GridSizeMiles: snap.Boundaries.GridSizeMiles,
		Count:         len(cells),
		Cells:         cells,
	})
}
