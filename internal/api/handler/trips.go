package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sunchase/sunchase/internal/api/models"
	"github.com/sunchase/sunchase/internal/api/response"
	"github.com/sunchase/sunchase/internal/trip"
)

// Trip list pagination bounds.
const (
	defaultTripListLimit = 50
	maxTripListLimit     = 200
)

// TripsHandler handles saved trip endpoints.
type TripsHandler struct {
	service *trip.Service
}

// NewTripsHandler creates a new TripsHandler.
func NewTripsHandler(service *trip.Service) *TripsHandler {
	return &TripsHandler{service: service}
}

// ListTrips handles GET /v1/trips - list saved trips.
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	limit := defaultTripListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, r, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}
	if limit > maxTripListLimit {
		limit = maxTripListLimit
	}

	trips, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list trips")
		return
	}

	response.JSON(w, r, http.StatusOK, trips)
}

// CreateTrip handles POST /v1/trips - save a trip.
func (h *TripsHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input models.TripCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/trips/%s", created.ID)
	response.Created(w, r, location, created)
}

// GetTrip handles GET /v1/trips/{tripId} - fetch a saved trip.
func (h *TripsHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")
	if tripID == "" {
		response.BadRequest(w, r, "tripId is required", nil)
		return
	}

	result, err := h.service.Get(r.Context(), userID, tripID)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// UpdateTrip handles PUT /v1/trips/{tripId} - update a saved trip.
func (h *TripsHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")
	if tripID == "" {
		response.BadRequest(w, r, "tripId is required", nil)
		return
	}

	var input models.TripUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, tripID, &input)
	if err != nil {
		h.writeTripError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /v1/trips/{tripId} - delete a saved trip.
func (h *TripsHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")
	if tripID == "" {
		response.BadRequest(w, r, "tripId is required", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID, tripID); err != nil {
		h.writeTripError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

func (h *TripsHandler) writeTripError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *trip.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "invalid trip", validationErr.Errors)
	case errors.Is(err, trip.ErrTripNotFound):
		response.NotFound(w, r, "trip not found")
	default:
		response.InternalError(w, r, "trip operation failed")
	}
}
