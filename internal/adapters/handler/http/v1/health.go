package v1

import (
	"net/http"

	"perpboard/internal/core/port"
)

type HealthHandler struct {
	healthService port.HealthService
}

func NewHealthHandler(healthService port.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// GetSystemHealth handles GET /health
func (h *HealthHandler) GetSystemHealth(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	status, err := h.healthService.GetSystemHealth(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "failed to get system health: "+err.Error())
		return
	}

	code := http.StatusOK
	if status.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, code, status)
}

// GetDetailedHealth handles GET /health/detailed
func (h *HealthHandler) GetDetailedHealth(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	status, err := h.healthService.GetDetailedHealth(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "failed to get detailed health: "+err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, status)
}
