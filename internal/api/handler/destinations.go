// Package handler provides HTTP handlers for the Sunchase API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sunchase/sunchase/internal/api/models"
	"github.com/sunchase/sunchase/internal/api/response"
	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/geocode"
	"github.com/sunchase/sunchase/internal/recommend"
	"github.com/sunchase/sunchase/internal/scoring"
)

// DestinationsHandler handles destination search and lookup endpoints.
type DestinationsHandler struct {
	store       *dataset.Store
	scoring     *scoring.Service
	recommender *recommend.Service
	geocoder    *geocode.Service
}

// NewDestinationsHandler creates a new DestinationsHandler.
func NewDestinationsHandler(store *dataset.Store, scoringSvc *scoring.Service, recommender *recommend.Service, geocoder *geocode.Service) *DestinationsHandler {
	return &DestinationsHandler{
		store:       store,
		scoring:     scoringSvc,
		recommender: recommender,
		geocoder:    geocoder,
	}
}

// searchResponse is the ranked result list for a destination search.
type searchResponse struct {
	Date         string                  `json:"date"`
	Dimension    recommend.Dimension     `json:"dimension"`
	OriginName   string                  `json:"origin_name,omitempty"`
	Origin       *models.Point           `json:"origin,omitempty"`
	Destinations []recommend.Destination `json:"destinations"`
}

// Search handles POST /v1/destinations:search - ranked destination search.
func (h *DestinationsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input models.DestinationSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateSearchInput(&input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid search request", fieldErrors)
		return
	}

	q := recommend.Query{
		Date:      input.Date,
		StartHour: scoring.DefaultStartHour,
		EndHour:   scoring.DefaultEndHour,
		Dimension: recommend.DimensionSunny,
	}
	if input.StartHour != nil {
		q.StartHour = *input.StartHour
	}
	if input.EndHour != nil {
		q.EndHour = *input.EndHour
	}
	if input.Dimension != "" {
		q.Dimension = recommend.Dimension(input.Dimension)
	}
	if input.MaxDistanceMiles != nil {
		q.MaxDistanceMiles = *input.MaxDistanceMiles
	}
	if input.Limit != nil {
		q.Limit = *input.Limit
	}

	var originName string
	switch {
	case input.Location != "":
		loc, err := h.geocoder.Lookup(r.Context(), input.Location)
		if err != nil {
			if errors.Is(err, geocode.ErrNotFound) {
				response.BadRequest(w, r, "location could not be geocoded", []models.FieldError{
					{Field: "location", Message: "no match for " + strconv.Quote(input.Location)},
				})
				return
			}
			response.ServiceUnavailable(w, r, "geocoding is temporarily unavailable")
			return
		}
		originName = loc.DisplayName
		q.Origin = &geo.Point{Lat: loc.Latitude, Lon: loc.Longitude}
	case input.Origin != nil:
		q.Origin = &geo.Point{Lat: input.Origin.Lat, Lon: input.Origin.Lon}
	}

	results, err := h.recommender.TopDestinations(r.Context(), q)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}

	resp := searchResponse{
		Date:         q.Date,
		Dimension:    q.Dimension,
		OriginName:   originName,
		Destinations: results,
	}
	if q.Origin != nil {
		resp.Origin = &models.Point{Lat: q.Origin.Lat, Lon: q.Origin.Lon}
	}
	response.JSON(w, r, http.StatusOK, resp)
}

func (h *DestinationsHandler) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dataset.ErrNotLoaded):
		response.ServiceUnavailable(w, r, "weather dataset is not loaded yet")
	case errors.Is(err, recommend.ErrUnknownDimension):
		response.BadRequest(w, r, "invalid search request", []models.FieldError{
			{Field: "dimension", Message: "must be sunny or comfort"},
		})
	case errors.Is(err, scoring.ErrInvalidWindow):
		response.BadRequest(w, r, "invalid search request", []models.FieldError{
			{Field: "startHour", Message: "window must satisfy 0 <= startHour < endHour <= 23"},
		})
	default:
		response.InternalError(w, r, "destination search failed")
	}
}

// Closest handles GET /v1/destinations/closest - nearest observation point.
func (h *DestinationsHandler) Closest(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}

	snap, err := h.store.Current()
	if err != nil {
		response.ServiceUnavailable(w, r, "weather dataset is not loaded yet")
		return
	}

	match, found := snap.Index.FindClosest(lat, lon)
	if !found {
		response.NotFound(w, r, "no observation point near the given coordinates")
		return
	}

	p, err := snap.Point(match.ID)
	if err != nil {
		response.InternalError(w, r, "index entry does not resolve to a point")
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlacePoint{
		Name:          p.Location.Name,
		Region:        p.Location.Region,
		Country:       p.Location.Country,
		Lat:           p.Location.Latitude,
		Lon:           p.Location.Longitude,
		DistanceMiles: match.DistanceMiles,
	})
}

// Within handles GET /v1/destinations/within - points inside a radius.
func (h *DestinationsHandler) Within(w http.ResponseWriter, r *http.Request) {
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

	matches := snap.Index.FindWithinRadius(lat, lon, radius)
	points := make([]models.PlacePoint, 0, len(matches))
	for _, m := range matches {
		p, err := snap.Point(m.ID)
		if err != nil {
			continue
		}
		points = append(points, models.PlacePoint{
			Name:          p.Location.Name,
			Region:        p.Location.Region,
			Country:       p.Location.Country,
			Lat:           p.Location.Latitude,
			Lon:           p.Location.Longitude,
			DistanceMiles: m.DistanceMiles,
		})
	}

	response.JSON(w, r, http.StatusOK, models.WithinResponse{
		RadiusMiles: radius,
		Count:       len(points),
		Points:      points,
	})
}

// scoreResponse is the per-point score payload.
type scoreResponse struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Date    string `json:"date"`

	scoring.PointScores
}

// Score handles GET /v1/destinations/{name}/score - scores for one point.
func (h *DestinationsHandler) Score(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, r, "name is required", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, r, "date query parameter is required", nil)
		return
	}

	startHour, ok := parseOptionalHour(w, r, "startHour", scoring.DefaultStartHour)
	if !ok {
		return
	}
	endHour, ok := parseOptionalHour(w, r, "endHour", scoring.DefaultEndHour)
	if !ok {
		return
	}

	snap, err := h.store.Current()
	if err != nil {
		response.ServiceUnavailable(w, r, "weather dataset is not loaded yet")
		return
	}

	p, err := snap.PointByName(name)
	if err != nil {
		response.NotFound(w, r, "no observation point named "+strconv.Quote(name))
		return
	}

	scores, err := h.scoring.Both(p, date, startHour, endHour)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrInvalidWindow):
			response.BadRequest(w, r, "window must satisfy 0 <= startHour < endHour <= 23", nil)
		case errors.Is(err, scoring.ErrNoForecastForDate), errors.Is(err, scoring.ErrNoHoursInWindow):
			response.NotFound(w, r, "no forecast data for the requested date and window")
		default:
			response.InternalError(w, r, "scoring failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, scoreResponse{
		Name:        p.Location.Name,
		Region:      p.Location.Region,
		Country:     p.Location.Country,
		Date:        date,
		PointScores: scores,
	})
}

// validateSearchInput checks the request-level fields of a search.
func validateSearchInput(input *models.DestinationSearchRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Date == "" {
		errs = append(errs, models.FieldError{Field: "date", Message: "is required"})
	}

	if input.Origin != nil {
		if input.Origin.Lat < -90 || input.Origin.Lat > 90 {
			errs = append(errs, models.FieldError{Field: "origin.lat", Message: "must be between -90 and 90"})
		}
		if input.Origin.Lon < -180 || input.Origin.Lon > 180 {
			errs = append(errs, models.FieldError{Field: "origin.lon", Message: "must be between -180 and 180"})
		}
	}

	if input.MaxDistanceMiles != nil && *input.MaxDistanceMiles < 0 {
		errs = append(errs, models.FieldError{Field: "maxDistanceMiles", Message: "must not be negative"})
	}

	if input.Limit != nil && *input.Limit < 1 {
		errs = append(errs, models.FieldError{Field: "limit", Message: "must be at least 1"})
	}

	return errs
}

// parseLatLon reads required lat/lon query parameters.
func parseLatLon(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	var errs []models.FieldError

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number between -90 and 90"})
	}
	lon, err = strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be a number between -180 and 180"})
	}

	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return 0, 0, false
	}
	return lat, lon, true
}

// parseRadius reads the required radiusMiles query parameter.
func parseRadius(w http.ResponseWriter, r *http.Request) (float64, bool) {
	radius, err := strconv.ParseFloat(r.URL.Query().Get("radiusMiles"), 64)
	if err != nil || radius < 0 {
		response.BadRequest(w, r, "invalid radius", []models.FieldError{
			{Field: "radiusMiles", Message: "must be a non-negative number"},
		})
		return 0, false
	}
	return radius, true
}

// parseOptionalHour reads an optional hour query parameter.
func parseOptionalHour(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		response.BadRequest(w, r, "invalid hour", []models.FieldError{
			{Field: name, Message: "must be an integer between 0 and 23"},
		})
		return 0, false
	}
	return hour, true
}
