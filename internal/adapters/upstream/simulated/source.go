// Package simulated serves fixed positions with no outbound calls. It
// backs the mock variant and the degrade fallback.
package simulated

import (
	"context"
	"math"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
)

// Open is one fixed position definition.
type Open struct {
	Asset            string
	Side             string
	SizeUSD          float64
	EntryPrice       float64
	LiquidationPrice float64
}

type Source struct {
	seeds []domain.PositionSeed
}

// NewSource builds seeds from fixed position parameters. SizeUSD and
// side collapse into a signed quantity of SizeUSD/Entry.
func NewSource(opens []Open) port.PositionSource {
	seeds := make([]domain.PositionSeed, 0, len(opens))
	for _, o := range opens {
		if o.EntryPrice <= 0 {
			continue
		}
		qty := o.SizeUSD / o.EntryPrice
		if o.Side == domain.SideShort {
			qty = -math.Abs(qty)
		}
		seeds = append(seeds, domain.PositionSeed{
			Asset:            o.Asset,
			Quantity:         qty,
			EntryPrice:       o.EntryPrice,
			LiquidationPrice: o.LiquidationPrice,
		})
	}
	return &Source{seeds: seeds}
}

func (s *Source) Name() string { return "simulated" }

func (s *Source) FetchPositions(ctx context.Context) ([]domain.PositionSeed, error) {
	out := make([]domain.PositionSeed, len(s.seeds))
	copy(out, s.seeds)
	return out, nil
}
