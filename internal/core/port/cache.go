package port

import "context"

// PriceCache is the advisory last-good-price store. It is written
// best-effort after a successful fetch and read only on the degrade
// path; it is never a source of truth.
type PriceCache interface {
	// Store the last good price for a symbol
	SetPrice(ctx context.Context, symbol string, price float64) error

	// Get the last good price for a symbol; errors when absent
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// Health check
	Ping(ctx context.Context) error
}
