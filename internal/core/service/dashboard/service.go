// Package dashboard assembles the markets/openPositions payload: one
// price fetch, one position fetch, mark-to-market, and the declared
// failure policy.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"

	"github.com/shopspring/decimal"
)

// Price-fetch strategies.
const (
	PriceStrategyAllMids  = "all-mids"
	PriceStrategyMeta     = "meta"
	PriceStrategySnapshot = "snapshot"
	PriceStrategyRates    = "rates"
)

// Position-source strategies.
const (
	PositionStrategySimulated     = "simulated"
	PositionStrategyClearinghouse = "clearinghouse"
	PositionStrategyLeaderboard   = "leaderboard"
)

// Failure policies. Strict surfaces a price-fetch failure to the
// caller; degrade falls back to advisory prices and keeps serving.
const (
	PolicyStrict  = "strict"
	PolicyDegrade = "degrade"
)

type Options struct {
	PriceStrategy    string
	PositionStrategy string
	FailurePolicy    string
	Assets           []domain.TrackedAsset
}

type Service struct {
	mu               sync.RWMutex
	priceSources     map[string]port.PriceSource
	positionSources  map[string]port.PositionSource
	priceStrategy    string
	positionStrategy string

	policy string
	cache  port.PriceCache
	assets []domain.TrackedAsset
	now    func() time.Time
}

func NewService(cache port.PriceCache, opts Options) *Service {
	policy := opts.FailurePolicy
	if policy != PolicyStrict {
		policy = PolicyDegrade
	}
	return &Service{
		priceSources:     make(map[string]port.PriceSource),
		positionSources:  make(map[string]port.PositionSource),
		priceStrategy:    opts.PriceStrategy,
		positionStrategy: opts.PositionStrategy,
		policy:           policy,
		cache:            cache,
		assets:           opts.Assets,
		now:              time.Now,
	}
}

func (s *Service) RegisterPriceSource(strategy string, src port.PriceSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceSources[strategy] = src
}

func (s *Service) RegisterPositionSource(strategy string, src port.PositionSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionSources[strategy] = src
}

func (s *Service) SetPriceStrategy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.priceSources[name]; !ok {
		return fmt.Errorf("unknown price strategy: %s", name)
	}
	s.priceStrategy = name
	slog.Info("Price strategy switched", "strategy", name)
	return nil
}

func (s *Service) SetPositionStrategy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positionSources[name]; !ok {
		return fmt.Errorf("unknown position strategy: %s", name)
	}
	s.positionStrategy = name
	slog.Info("Position strategy switched", "strategy", name)
	return nil
}

func (s *Service) CurrentStrategies() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.priceStrategy, s.positionStrategy
}

func (s *Service) FailurePolicy() string {
	return s.policy
}

// BuildDashboard runs the aggregation for one request. All state it
// touches is either read-only configuration or local to the call.
func (s *Service) BuildDashboard(ctx context.Context) (*domain.Dashboard, error) {
	priceSrc, posSrc, err := s.selectedSources()
	if err != nil {
		return nil, err
	}

	var warnings []string

	book, priceErr := priceSrc.FetchPrices(ctx, nil)
	if priceErr != nil {
		if s.policy == PolicyStrict {
			return nil, fmt.Errorf("price fetch failed: %w", priceErr)
		}
		slog.Warn("Price fetch failed, serving advisory prices", "source", priceSrc.Name(), "error", priceErr)
		book = s.fallbackBook(ctx)
		warnings = append(warnings, "live prices unavailable: "+priceErr.Error())
	}

	// A position fetch depends on nothing the caller can retry better
	// than we can; its failure degrades to an empty list plus warning
	// while the price-backed markets still go out.
	seeds, posErr := posSrc.FetchPositions(ctx)
	if posErr != nil {
		slog.Warn("Position fetch failed, serving empty positions", "source", posSrc.Name(), "error", posErr)
		seeds = nil
		warnings = append(warnings, "positions unavailable: "+posErr.Error())
	}

	now := s.now()
	dash := &domain.Dashboard{
		Markets:       s.shapeMarkets(book, now),
		OpenPositions: markPositions(seeds, book),
	}
	if len(warnings) > 0 {
		dash.Warning = strings.Join(warnings, "; ")
	}

	if priceErr == nil {
		s.storeAdvisory(ctx, book)
	}
	return dash, nil
}

func (s *Service) selectedSources() (port.PriceSource, port.PositionSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	priceSrc, ok := s.priceSources[s.priceStrategy]
	if !ok {
		return nil, nil, fmt.Errorf("no source registered for price strategy %q", s.priceStrategy)
	}
	posSrc, ok := s.positionSources[s.positionStrategy]
	if !ok {
		return nil, nil, fmt.Errorf("no source registered for position strategy %q", s.positionStrategy)
	}
	return priceSrc, posSrc, nil
}

// fallbackBook builds a per-request book from the advisory cache,
// falling through to the configured reference prices. Nothing here is
// shared or mutated across invocations.
func (s *Service) fallbackBook(ctx context.Context) *domain.PriceBook {
	book := domain.NewPriceBook("fallback", s.now().Unix())
	for _, a := range s.assets {
		if s.cache != nil {
			if p, err := s.cache.GetPrice(ctx, a.Symbol); err == nil && p > 0 {
				book.Prices[a.Symbol] = p
				continue
			}
		}
		book.Prices[a.Symbol] = a.ReferencePrice
	}
	return book
}

// storeAdvisory writes fresh prices back to the cache, best effort.
func (s *Service) storeAdvisory(ctx context.Context, book *domain.PriceBook) {
	if s.cache == nil {
		return
	}
	for _, a := range s.assets {
		price, ok := book.Lookup(a.Symbol)
		if !ok || price <= 0 {
			continue
		}
		if err := s.cache.SetPrice(ctx, a.Symbol, price); err != nil {
			slog.Warn("Failed to store advisory price", "symbol", a.Symbol, "error", err)
			return
		}
	}
}

// markPositions marks seeds to market. Near-zero sizes are dropped;
// survivors keep the order their wallets were queried in.
func markPositions(seeds []domain.PositionSeed, book *domain.PriceBook) []domain.Position {
	out := make([]domain.Position, 0, len(seeds))
	for _, seed := range seeds {
		qty := math.Abs(seed.Quantity)
		if qty < domain.ZeroSizeEpsilon {
			continue
		}

		cur, ok := book.Lookup(seed.Asset)
		if !ok || cur <= 0 {
			// No quote for this asset this request; mark at entry so the
			// position shows up with zero unrealized PnL.
			cur = seed.EntryPrice
		}

		side := domain.SideLong
		diff := cur - seed.EntryPrice
		if seed.Quantity < 0 {
			side = domain.SideShort
			diff = seed.EntryPrice - cur
		}

		out = append(out, domain.Position{
			Wallet:           seed.Wallet,
			Asset:            seed.Asset,
			Side:             side,
			SizeUSD:          round2(qty * seed.EntryPrice),
			EntryPrice:       seed.EntryPrice,
			CurrentPrice:     cur,
			LiquidationPrice: seed.LiquidationPrice,
			UnrealizedPnL:    round2(diff * qty),
		})
	}
	return out
}

func (s *Service) shapeMarkets(book *domain.PriceBook, now time.Time) []domain.Market {
	markets := make([]domain.Market, 0, len(s.assets))
	for _, a := range s.assets {
		cur, ok := book.Lookup(a.Symbol)
		if !ok || cur <= 0 {
			cur = a.ReferencePrice
		}

		oddsYes := driftOdds(cur, a.ReferencePrice)
		title := a.Title
		if title == "" {
			title = fmt.Sprintf("Will %s close above $%.2f?", a.Symbol, a.ReferencePrice)
		}

		markets = append(markets, domain.Market{
			MarketID:     strings.ToLower(a.Symbol) + "-usd",
			Title:        title,
			OddsYes:      oddsYes,
			OddsNo:       round2(1 - oddsYes),
			CurrentPrice: cur,
			Timestamp:    now.Unix(),
		})
	}
	return markets
}

// driftOdds maps the drift of the current price against the reference
// into a [0.05, 0.95] yes-probability.
func driftOdds(current, reference float64) float64 {
	if reference <= 0 {
		return 0.5
	}
	odds := 0.5 + (current-reference)/reference
	if odds < 0.05 {
		odds = 0.05
	}
	if odds > 0.95 {
		odds = 0.95
	}
	return round2(odds)
}

// round2 rounds to display currency precision.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
