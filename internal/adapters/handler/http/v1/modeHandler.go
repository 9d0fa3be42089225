package v1

import (
	"net/http"

	"perpboard/internal/core/port"
)

type ModeHandler struct {
	dashboards port.DashboardService
}

func NewModeHandler(dashboards port.DashboardService) *ModeHandler {
	return &ModeHandler{dashboards: dashboards}
}

type ModeResponse struct {
	PriceStrategy    string `json:"price_strategy"`
	PositionStrategy string `json:"position_strategy"`
	FailurePolicy    string `json:"failure_policy"`
}

// GetCurrentMode handles GET /mode/current
func (h *ModeHandler) GetCurrentMode(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	writeJSONResponse(w, http.StatusOK, h.currentMode())
}

// SwitchPriceStrategy handles POST /mode/prices/{strategy}
func (h *ModeHandler) SwitchPriceStrategy(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	strategy := r.PathValue("strategy")
	if strategy == "" {
		writeErrorResponse(w, http.StatusBadRequest, "missing strategy parameter")
		return
	}

	if err := h.dashboards.SetPriceStrategy(strategy); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, h.currentMode())
}

// SwitchPositionStrategy handles POST /mode/positions/{strategy}
func (h *ModeHandler) SwitchPositionStrategy(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	strategy := r.PathValue("strategy")
	if strategy == "" {
		writeErrorResponse(w, http.StatusBadRequest, "missing strategy parameter")
		return
	}

	if err := h.dashboards.SetPositionStrategy(strategy); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, h.currentMode())
}

func (h *ModeHandler) currentMode() ModeResponse {
	prices, positions := h.dashboards.CurrentStrategies()
	return ModeResponse{
		PriceStrategy:    prices,
		PositionStrategy: positions,
		FailurePolicy:    h.dashboards.FailurePolicy(),
	}
}
