package health

import (
	"context"
	"time"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
)

type HealthService struct {
	cache      port.PriceCache
	dashboards port.DashboardService
	probe      port.PriceSource
}

func NewHealthService(cache port.PriceCache, dashboards port.DashboardService, probe port.PriceSource) port.HealthService {
	return &HealthService{
		cache:      cache,
		dashboards: dashboards,
		probe:      probe,
	}
}

func (s *HealthService) GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status := &domain.HealthStatus{
		Components: make(map[string]string),
		Timestamp:  time.Now().Unix(),
	}

	allHealthy := true

	// Check the advisory cache
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			status.Components["cache"] = "unhealthy"
			allHealthy = false
		} else {
			status.Components["cache"] = "healthy"
		}
	} else {
		status.Components["cache"] = "unavailable"
		allHealthy = false
	}

	// Check the upstream price API with a short probe
	if s.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_, err := s.probe.FetchPrices(probeCtx, nil)
		cancel()
		if err != nil {
			status.Components["upstream"] = "unhealthy"
			allHealthy = false
		} else {
			status.Components["upstream"] = "healthy"
		}
	} else {
		status.Components["upstream"] = "unavailable"
		allHealthy = false
	}

	if allHealthy {
		status.Status = "healthy"
		status.Message = "All systems operational"
	} else if status.Components["upstream"] == "unhealthy" {
		// The dashboard can still serve on fallback data, so a dead
		// upstream is degraded rather than down.
		status.Status = "degraded"
		status.Message = "Upstream price API unreachable, serving fallback data"
	} else {
		status.Status = "degraded"
		status.Message = "Some components are not fully operational"
	}

	return status, nil
}

func (s *HealthService) GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status, err := s.GetSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	if s.dashboards != nil {
		prices, positions := s.dashboards.CurrentStrategies()
		status.Components["price_strategy"] = prices
		status.Components["position_strategy"] = positions
		status.Components["failure_policy"] = s.dashboards.FailurePolicy()
	}

	return status, nil
}
