package domain

// Position sides as they appear in the dashboard payload.
const (
	SideLong  = "Long"
	SideShort = "Short"
)

// ZeroSizeEpsilon is the quantity below which a position is treated as
// closed and excluded from the dashboard.
const ZeroSizeEpsilon = 0.001

type Market struct {
	MarketID     string  `json:"marketId"`
	Title        string  `json:"title"`
	OddsYes      float64 `json:"oddsYes"`
	OddsNo       float64 `json:"oddsNo"`
	CurrentPrice float64 `json:"currentPrice"`
	Timestamp    int64   `json:"timestamp"`
}

type Position struct {
	Wallet           string  `json:"wallet,omitempty"`
	Asset            string  `json:"asset"`
	Side             string  `json:"side"`
	SizeUSD          float64 `json:"sizeUsd"`
	EntryPrice       float64 `json:"entryPrice"`
	CurrentPrice     float64 `json:"currentPrice"`
	LiquidationPrice float64 `json:"liquidationPrice"`
	UnrealizedPnL    float64 `json:"unrealizedPnl"`
}

// Dashboard is the full response payload. Markets and OpenPositions are
// always non-nil so the encoded body carries both keys as arrays.
type Dashboard struct {
	Markets       []Market   `json:"markets"`
	OpenPositions []Position `json:"openPositions"`
	Warning       string     `json:"warning,omitempty"`
}

// PositionSeed is an open position before mark-to-market. Quantity is
// signed: positive for long, negative for short.
type PositionSeed struct {
	Wallet           string
	Asset            string
	Quantity         float64
	EntryPrice       float64
	LiquidationPrice float64
}

// TrackedAsset describes one asset the dashboard shapes a market for.
// ReferencePrice is the advisory default used when no live price is
// available; it is never mutated after startup.
type TrackedAsset struct {
	Symbol         string
	Title          string
	ReferencePrice float64
}
