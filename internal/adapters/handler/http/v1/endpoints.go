package v1

import (
	"net/http"

	"perpboard/internal/core/port"
)

// SetDashboardRoutes sets up all dashboard API routes
func SetDashboardRoutes(router *http.ServeMux, dashboardHandler *DashboardHandler, modeHandler *ModeHandler, healthHandler *HealthHandler) {
	// The dashboard route is registered without a method pattern: the
	// contract accepts any method and short-circuits OPTIONS itself.
	router.HandleFunc("/api/dashboard", dashboardHandler.GetDashboard)

	// Strategy Mode Routes
	setModeRoutes(modeHandler, router)

	// System Health Routes
	setHealthRoutes(healthHandler, router)
}

// SetDebugRoutes sets up debug routes (call this separately for debugging)
func SetDebugRoutes(router *http.ServeMux, cache port.PriceCache, ranker port.WalletRanker) {
	debugHandler := NewDebugHandler(cache, ranker)

	router.HandleFunc("GET /debug/cache/{symbol}", debugHandler.GetCachedPrice)
	router.HandleFunc("GET /debug/leaderboard", debugHandler.GetTopWallets)
}

// setModeRoutes sets up strategy switching endpoints
func setModeRoutes(handler *ModeHandler, router *http.ServeMux) {
	router.HandleFunc("POST /mode/prices/{strategy}", handler.SwitchPriceStrategy)
	router.HandleFunc("POST /mode/positions/{strategy}", handler.SwitchPositionStrategy)
	router.HandleFunc("GET /mode/current", handler.GetCurrentMode)
}

// setHealthRoutes sets up system health endpoints
func setHealthRoutes(handler *HealthHandler, router *http.ServeMux) {
	router.HandleFunc("GET /health", handler.GetSystemHealth)
	router.HandleFunc("GET /health/detailed", handler.GetDetailedHealth)
}
