package port

import (
	"context"

	"perpboard/internal/core/domain"
)

type PriceSource interface {
	// Fetch the latest prices for the given symbols. An empty symbol
	// list means "everything the source knows about".
	FetchPrices(ctx context.Context, symbols []string) (*domain.PriceBook, error)

	// Source name/identifier
	Name() string
}

type PositionSource interface {
	// Fetch open position seeds; mark-to-market happens in the service.
	FetchPositions(ctx context.Context) ([]domain.PositionSeed, error)

	// Source name/identifier
	Name() string
}

// WalletRanker yields ranked wallet identifiers, best first.
type WalletRanker interface {
	TopWallets(ctx context.Context, n int) ([]string, error)
}
