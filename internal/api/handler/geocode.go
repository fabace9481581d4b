package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sunchase/sunchase/internal/api/models"
	"github.com/sunchase/sunchase/internal/api/response"
	"github.com/sunchase/sunchase/internal/geocode"
)

// GeocodeHandler handles forward and reverse geocoding lookups.
type GeocodeHandler struct {
	geocoder *geocode.Service
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder *geocode.Service) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Lookup handles GET /v1/geocode - forward geocode a place name.
func (h *GeocodeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "q query parameter is required", nil)
		return
	}

	result, err := h.geocoder.Lookup(r.Context(), query)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			response.NotFound(w, r, "no match for "+strconv.Quote(query))
			return
		}
		response.ServiceUnavailable(w, r, "geocoding is temporarily unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, models.GeocodeResponse{
		Query:       result.Query,
		DisplayName: result.DisplayName,
		Lat:         result.Latitude,
		Lon:         result.Longitude,
	})
}

// Reverse handles GET /v1/geocode/reverse - resolve coordinates to the
// nearest named place.
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}

	result, err := h.geocoder.Reverse(r.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			response.NotFound(w, r, "no place at the given coordinates")
			return
		}
		response.ServiceUnavailable(w, r, "geocoding is temporarily unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ReverseGeocodeResponse{
		DisplayName: result.DisplayName,
		Lat:         result.Latitude,
		Lon:         result.Longitude,
	})
}
