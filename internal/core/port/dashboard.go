package port

import (
	"context"

	"perpboard/internal/core/domain"
)

type DashboardService interface {
	// Build the full dashboard payload for one request
	BuildDashboard(ctx context.Context) (*domain.Dashboard, error)

	// Switch the price-fetch strategy
	SetPriceStrategy(name string) error

	// Switch the position-source strategy
	SetPositionStrategy(name string) error

	// Get current strategy selection
	CurrentStrategies() (prices string, positions string)

	// Get the declared failure policy ("strict" or "degrade")
	FailurePolicy() string
}
