package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sunchase/sunchase/internal/api/response"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/geocode"
	"github.com/sunchase/sunchase/internal/scoring"
)

// Refresher triggers a dataset rebuild. The worker's refresh loop
// implements this; in the API process it is typically a Pub/Sub publish.
type Refresher interface {
	TriggerRefresh(ctx context.Context) error
}

// AdminHandler handles the token-gated operational endpoints.
type AdminHandler struct {
	logger    zerolog.Logger
	refresher Refresher
	scoring   *scoring.Service
	geocoder  *geocode.Service
	distances *geo.DistanceCache
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(logger zerolog.Logger, refresher Refresher, scoringSvc *scoring.Service, geocoder *geocode.Service, distances *geo.DistanceCache) *AdminHandler {
	return &AdminHandler{
		logger:    logger,
		refresher: refresher,
		scoring:   scoringSvc,
		geocoder:  geocoder,
		distances: distances,
	}
}

// TriggerRefresh handles POST /v1/admin/refresh - request a dataset reload.
func (h *AdminHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		response.ServiceUnavailable(w, r, "no refresh trigger is configured")
		return
	}

	if err := h.refresher.TriggerRefresh(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("refresh trigger failed")
		response.ServiceUnavailable(w, r, "refresh could not be triggered")
		return
	}

	h.logger.Info().Str("user", GetUserID(r.Context())).Msg("dataset refresh triggered")
	response.Accepted(w, r, "", map[string]string{"status": "refresh triggered"})
}

// InvalidateCaches handles POST /v1/admin/caches/invalidate.
func (h *AdminHandler) InvalidateCaches(w http.ResponseWriter, r *http.Request) {
	h.scoring.InvalidateCaches()
	if h.geocoder != nil {
		h.geocoder.ClearCache()
	}
	if h.distances != nil {
		h.distances.Clear()
	}

	h.logger.Info().Str("user", GetUserID(r.Context())).Msg("caches invalidated")
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "caches invalidated"})
}
