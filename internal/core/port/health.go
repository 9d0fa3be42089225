package port

import (
	"context"

	"perpboard/internal/core/domain"
)

type HealthService interface {
	GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error)
	GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error)
}
