package v1

import (
	"net/http"

	"perpboard/internal/core/port"
)

type DebugHandler struct {
	cache  port.PriceCache
	ranker port.WalletRanker
}

func NewDebugHandler(cache port.PriceCache, ranker port.WalletRanker) *DebugHandler {
	return &DebugHandler{cache: cache, ranker: ranker}
}

type CachedPriceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// GetCachedPrice handles GET /debug/cache/{symbol} — reads the
// advisory last-good price for one symbol.
func (h *DebugHandler) GetCachedPrice(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	symbol := r.PathValue("symbol")
	if symbol == "" {
		writeErrorResponse(w, http.StatusBadRequest, "missing symbol parameter")
		return
	}

	if h.cache == nil {
		writeErrorResponse(w, http.StatusNotFound, "advisory cache is not available")
		return
	}

	price, err := h.cache.GetPrice(r.Context(), symbol)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, CachedPriceResponse{Symbol: symbol, Price: price})
}

type TopWalletsResponse struct {
	Wallets []string `json:"wallets"`
}

// GetTopWallets handles GET /debug/leaderboard — returns the wallet
// addresses the leaderboard strategy would track right now.
func (h *DebugHandler) GetTopWallets(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if h.ranker == nil {
		writeErrorResponse(w, http.StatusNotFound, "leaderboard ranking is not available")
		return
	}

	wallets, err := h.ranker.TopWallets(r.Context(), 10)
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	if wallets == nil {
		wallets = []string{}
	}

	writeJSONResponse(w, http.StatusOK, TopWalletsResponse{Wallets: wallets})
}
