package domain

// PriceBook is the per-request symbol to price mapping built from
// whichever upstream payload succeeded. It lives for one request only.
type PriceBook struct {
	Prices    map[string]float64
	Source    string
	FetchedAt int64
}

func NewPriceBook(source string, fetchedAt int64) *PriceBook {
	return &PriceBook{
		Prices:    make(map[string]float64),
		Source:    source,
		FetchedAt: fetchedAt,
	}
}

// Lookup returns the price for symbol and whether one is present.
func (b *PriceBook) Lookup(symbol string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	p, ok := b.Prices[symbol]
	return p, ok
}
