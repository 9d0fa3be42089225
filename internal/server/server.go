package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"perpboard/internal/adapters/cache"
	v1 "perpboard/internal/adapters/handler/http/v1"
	"perpboard/internal/adapters/upstream/hyperliquid"
	"perpboard/internal/adapters/upstream/openrates"
	"perpboard/internal/adapters/upstream/simulated"
	"perpboard/internal/config"
	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
	"perpboard/internal/core/service/dashboard"
	"perpboard/internal/core/service/health"

	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg         *config.Config
	router      *http.ServeMux
	redisClient *redis.Client

	// Services
	dashboardService port.DashboardService
	healthService    port.HealthService

	// For graceful shutdown
	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (app *App) Initialize() error {
	slog.Info("Initializing application...")
	app.router = http.NewServeMux()

	priceCache := app.connectCache()

	upstreamTimeout := time.Duration(app.cfg.Upstream.TimeoutMs) * time.Millisecond
	infoClient := hyperliquid.New(app.cfg.Upstream.InfoURL, upstreamTimeout)

	// 1. Create the dashboard service and register every strategy
	svc := dashboard.NewService(priceCache, dashboard.Options{
		PriceStrategy:    app.cfg.Dashboard.PriceStrategy,
		PositionStrategy: app.cfg.Dashboard.PositionStrategy,
		FailurePolicy:    app.cfg.Dashboard.FailurePolicy,
		Assets:           trackedAssets(app.cfg.Dashboard.Assets),
	})

	midsSource := hyperliquid.NewMidsSource(infoClient)
	svc.RegisterPriceSource(dashboard.PriceStrategyAllMids, midsSource)
	svc.RegisterPriceSource(dashboard.PriceStrategyMeta, hyperliquid.NewMetaSource(infoClient))
	svc.RegisterPriceSource(dashboard.PriceStrategySnapshot, hyperliquid.NewSnapshotSource(infoClient))
	if app.cfg.Upstream.RatesURL != "" {
		svc.RegisterPriceSource(dashboard.PriceStrategyRates, openrates.New(app.cfg.Upstream.RatesURL, upstreamTimeout))
	}

	leaderboardSource := hyperliquid.NewLeaderboardSource(infoClient, app.cfg.Dashboard.LeaderboardTopN)
	svc.RegisterPositionSource(dashboard.PositionStrategySimulated, simulated.NewSource(simulatedOpens(app.cfg.Dashboard.SimulatedOpens)))
	svc.RegisterPositionSource(dashboard.PositionStrategyClearinghouse, hyperliquid.NewClearinghouseSource(infoClient, app.cfg.Dashboard.Wallets))
	svc.RegisterPositionSource(dashboard.PositionStrategyLeaderboard, leaderboardSource)

	// Validate the configured strategies against what got registered
	if err := svc.SetPriceStrategy(app.cfg.Dashboard.PriceStrategy); err != nil {
		return fmt.Errorf("invalid price strategy in config: %w", err)
	}
	if err := svc.SetPositionStrategy(app.cfg.Dashboard.PositionStrategy); err != nil {
		return fmt.Errorf("invalid position strategy in config: %w", err)
	}
	app.dashboardService = svc

	// 2. Create the health service; the mids query doubles as the
	// upstream reachability probe
	app.healthService = health.NewHealthService(priceCache, app.dashboardService, midsSource)

	// 3. Create handlers (adapters layer)
	dashboardHandler := v1.NewDashboardHandler(app.dashboardService, upstreamTimeout+5*time.Second)
	modeHandler := v1.NewModeHandler(app.dashboardService)
	healthHandler := v1.NewHealthHandler(app.healthService)

	// 4. Set up routes
	v1.SetDashboardRoutes(app.router, dashboardHandler, modeHandler, healthHandler)
	v1.SetDebugRoutes(app.router, priceCache, leaderboardSource)

	slog.Info("Application initialized successfully",
		"price_strategy", app.cfg.Dashboard.PriceStrategy,
		"position_strategy", app.cfg.Dashboard.PositionStrategy,
		"failure_policy", app.cfg.Dashboard.FailurePolicy)
	return nil
}

// connectCache connects Redis for the advisory price cache, falling
// back to the in-memory cache when Redis is unreachable.
func (app *App) connectCache() port.PriceCache {
	ttl := time.Duration(app.cfg.Cache.TTLSeconds) * time.Second

	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", app.cfg.Cache.RedisHost, app.cfg.Cache.RedisPort),
		Password:     app.cfg.Cache.RedisPassword,
		DB:           app.cfg.Cache.RedisDB,
		PoolSize:     app.cfg.Cache.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, continuing with in-memory advisory cache", "error", err)
		_ = redisClient.Close()
		return cache.NewMemoryCache(ttl)
	}

	app.redisClient = redisClient
	slog.Info("Redis connected successfully")
	return cache.NewRedisAdapter(redisClient, ttl)
}

func (app *App) Run() {
	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.App.Port),
		Handler: app.router,
	}

	slog.Info("Starting server", "port", app.cfg.App.Port)

	if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		return
	}
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	slog.Info("Shutting down application...")

	app.cancel()

	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.httpServer.Shutdown(ctx); err != nil {
			slog.Error("Failed to shut down HTTP server", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

func trackedAssets(assets []config.Asset) []domain.TrackedAsset {
	out := make([]domain.TrackedAsset, 0, len(assets))
	for _, a := range assets {
		out = append(out, domain.TrackedAsset{
			Symbol:         a.Symbol,
			Title:          a.Title,
			ReferencePrice: a.ReferencePrice,
		})
	}
	return out
}

func simulatedOpens(opens []config.SimulatedOpen) []simulated.Open {
	out := make([]simulated.Open, 0, len(opens))
	for _, o := range opens {
		out = append(out, simulated.Open{
			Asset:            o.Asset,
			Side:             o.Side,
			SizeUSD:          o.SizeUSD,
			EntryPrice:       o.EntryPrice,
			LiquidationPrice: o.LiquidationPrice,
		})
	}
	return out
}
