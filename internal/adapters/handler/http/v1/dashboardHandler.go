package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
)

const defaultRequestTimeout = 15 * time.Second

type DashboardHandler struct {
	dashboards port.DashboardService
	timeout    time.Duration
}

func NewDashboardHandler(dashboards port.DashboardService, timeout time.Duration) *DashboardHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &DashboardHandler{
		dashboards: dashboards,
		timeout:    timeout,
	}
}

// Response structures
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details string `json:"details"`
}

// GetDashboard handles /api/dashboard for any method. OPTIONS
// short-circuits for CORS preflight; everything else runs the
// aggregation.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// No processing error may escape as a crash; anything unexpected
	// becomes a 500 with the panic text in details.
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Panic while building dashboard", "panic", rec)
			writeJSONResponse(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Details: fmt.Sprint(rec),
			})
		}
	}()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	dash, err := h.dashboards.BuildDashboard(ctx)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			writeJSONResponse(w, http.StatusBadGateway, ErrorResponse{
				Error:   "upstream_error",
				Status:  upstream.Status,
				Details: upstream.Details,
			})
			return
		}
		writeJSONResponse(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Details: err.Error(),
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, dash)
}

// setCORSHeaders is applied to every response, errors included.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If we can't encode the response, log the error and send a simple error message
		slog.Error("Failed to encode response", "error", err)
		w.Write([]byte(`{"error":"internal_error","details":"failed to encode response"}`))
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errorType := "bad_request"
	switch statusCode {
	case http.StatusNotFound:
		errorType = "not_found"
	case http.StatusInternalServerError:
		errorType = "internal_error"
	case http.StatusBadGateway:
		errorType = "upstream_error"
	}

	writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   errorType,
		Details: message,
	})
}
