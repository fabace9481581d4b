package handler

import (
	"net/http"
	"time"

	"github.com/sunchase/sunchase/internal/api/models"
	"github.com/sunchase/sunchase/internal/api/response"
	"github.com/sunchase/sunchase/internal/dataset"
	"github.com/sunchase/sunchase/internal/geo"
	"github.com/sunchase/sunchase/internal/geocode"
	"github.com/sunchase/sunchase/internal/provider/resilience"
	"github.com/sunchase/sunchase/internal/scoring"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string

	store     *dataset.Store
	scoring   *scoring.Service
	geocoder  *geocode.Service
	distances *geo.DistanceCache
	upstreams *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, store *dataset.Store, scoringSvc *scoring.Service, geocoder *geocode.Service, distances *geo.DistanceCache, upstreams *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		store:     store,
		scoring:   scoringSvc,
		geocoder:  geocoder,
		distances: distances,
		upstreams: upstreams,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// The service is ready once a dataset snapshot has been swapped in.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !h.store.Loaded() {
		health := models.Health{
			Status: models.HealthStatusFail,
			Time:   models.Timestamp(time.Now()),
			Details: map[string]interface{}{
				"reason": "weather dataset not loaded",
			},
		}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - dataset, cache, and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	snap, err := h.store.Current()
	if err != nil {
		status.Status = models.HealthStatusDegraded
		status.Dataset = models.DatasetStatus{Loaded: false}
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "dataset",
			Status: models.HealthStatusFail,
		})
	} else {
		stats := snap.Index.Stats()
		loadedAt := models.Timestamp(snap.LoadedAt)
		status.Dataset = models.DatasetStatus{
			Loaded:          true,
			LoadedAt:        &loadedAt,
			Points:          stats.Entries,
			IndexCells:      stats.Cells,
			GridSizeDegrees: stats.GridSizeDegrees,
		}
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "dataset",
			Status: models.HealthStatusOK,
		})
	}

	cacheStats := h.scoring.CacheStats()
	status.Caches = models.CacheStatus{
		AggregatorEntries: cacheStats.AggregatorEntries,
		CalculatorEntries: cacheStats.CalculatorEntries,
	}
	if h.distances != nil {
		status.Caches.DistanceEntries = h.distances.Len()
	}
	if h.geocoder != nil {
		status.Caches.GeocodeEntries = h.geocoder.CacheLen()
	}

	if h.upstreams != nil {
		for _, u := range h.upstreams.AllHealth() {
			status.Providers = append(status.Providers, providerStatus(u, &status.Status))
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// providerStatus maps a breaker state onto the API health vocabulary.
// Any non-closed breaker degrades the overall status.
func providerStatus(u *resilience.UpstreamHealth, overall *models.HealthStatus) models.ProviderStatus {
	p := models.ProviderStatus{
		Provider: u.Name,
		Status:   models.HealthStatusOK,
	}

	switch u.State {
	case "open":
		p.Status = models.HealthStatusFail
	case "half-open":
		p.Status = models.HealthStatusDegraded
	}
	if p.Status != models.HealthStatusOK && *overall == models.HealthStatusOK {
		*overall = models.HealthStatusDegraded
	}

	if u.LastSuccessAt != nil {
		t := models.Timestamp(*u.LastSuccessAt)
		p.LastSuccessAt = &t
	}
	if u.LastFailureAt != nil {
		t := models.Timestamp(*u.LastFailureAt)
		p.LastFailureAt = &t
	}
	if u.LastError != "" {
		msg := u.LastError
		p.Message = &msg
	}

	return p
}
