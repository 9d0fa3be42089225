package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
)

// clearinghouseState carries the wallet-state result shape. Numeric
// fields arrive as strings on the wire.
type clearinghouseState struct {
	AssetPositions []struct {
		Type     string `json:"type"`
		Position struct {
			Coin          string  `json:"coin"`
			Szi           string  `json:"szi"`
			EntryPx       string  `json:"entryPx"`
			PositionValue string  `json:"positionValue"`
			LiquidationPx *string `json:"liquidationPx"`
			UnrealizedPnl string  `json:"unrealizedPnl"`
		} `json:"position"`
	} `json:"assetPositions"`
	MarginSummary struct {
		AccountValue string `json:"accountValue"`
	} `json:"marginSummary"`
}

// ClearinghouseSource fetches wallet states as one ordered batch, one
// sub-query per tracked wallet, matched back by position.
type ClearinghouseSource struct {
	client  *Client
	wallets []string
}

func NewClearinghouseSource(client *Client, wallets []string) port.PositionSource {
	return &ClearinghouseSource{client: client, wallets: wallets}
}

func (s *ClearinghouseSource) Name() string { return sourceName + ":clearinghouse" }

func (s *ClearinghouseSource) FetchPositions(ctx context.Context) ([]domain.PositionSeed, error) {
	return s.client.fetchWalletStates(ctx, s.wallets)
}

// fetchWalletStates issues the clearinghouse batch for the given
// wallet list and flattens the results, preserving wallet order.
func (c *Client) fetchWalletStates(ctx context.Context, wallets []string) ([]domain.PositionSeed, error) {
	if len(wallets) == 0 {
		return []domain.PositionSeed{}, nil
	}

	reqs := make([]rpcRequest, 0, len(wallets))
	for i, wallet := range wallets {
		reqs = append(reqs, newRequest(i, methodClearinghouseState, map[string]string{"user": wallet}))
	}

	envs, err := c.callBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}

	seeds := make([]domain.PositionSeed, 0, len(wallets))
	for i, env := range envs {
		wallet := wallets[i]
		if env.Error != nil {
			slog.Warn("wallet state sub-query failed",
				"wallet", wallet, "code", env.Error.Code, "message", env.Error.Message)
			continue
		}

		var state clearinghouseState
		if err := json.Unmarshal(env.Result, &state); err != nil {
			return nil, &domain.UpstreamError{
				Source:  sourceName,
				Status:  http.StatusOK,
				Details: fmt.Sprintf("unexpected clearinghouse result shape for wallet %s: %s", wallet, snippet(env.Result)),
			}
		}

		for _, ap := range state.AssetPositions {
			pos := ap.Position
			szi, err := strconv.ParseFloat(pos.Szi, 64)
			if err != nil {
				slog.Warn("skipping position with unparsable size", "wallet", wallet, "coin", pos.Coin, "szi", pos.Szi)
				continue
			}
			entry, err := strconv.ParseFloat(pos.EntryPx, 64)
			if err != nil || entry <= 0 {
				slog.Warn("skipping position with unparsable entry price", "wallet", wallet, "coin", pos.Coin)
				continue
			}

			var liq float64
			if pos.LiquidationPx != nil {
				liq, _ = strconv.ParseFloat(*pos.LiquidationPx, 64)
			}

			seeds = append(seeds, domain.PositionSeed{
				Wallet:           wallet,
				Asset:            pos.Coin,
				Quantity:         szi,
				EntryPrice:       entry,
				LiquidationPrice: liq,
			})
		}
	}
	return seeds, nil
}

// LeaderboardSource derives the wallet list from the ranked leaderboard
// and then fetches their states. The batch waits for the ranking; the
// two calls have a real ordering dependency.
type LeaderboardSource struct {
	client *Client
	topN   int
}

func NewLeaderboardSource(client *Client, topN int) *LeaderboardSource {
	if topN <= 0 {
		topN = 10
	}
	return &LeaderboardSource{client: client, topN: topN}
}

func (s *LeaderboardSource) Name() string { return sourceName + ":leaderboard" }

func (s *LeaderboardSource) TopWallets(ctx context.Context, n int) ([]string, error) {
	result, err := s.client.call(ctx, methodLeaderboard, nil)
	if err != nil {
		return nil, err
	}

	var board struct {
		LeaderboardRows []struct {
			EthAddress   string `json:"ethAddress"`
			AccountValue string `json:"accountValue"`
		} `json:"leaderboardRows"`
	}
	if err := json.Unmarshal(result, &board); err != nil {
		return nil, malformedResult(methodLeaderboard, result)
	}

	wallets := make([]string, 0, n)
	for _, row := range board.LeaderboardRows {
		if row.EthAddress == "" {
			continue
		}
		wallets = append(wallets, row.EthAddress)
		if len(wallets) >= n {
			break
		}
	}
	return wallets, nil
}

func (s *LeaderboardSource) FetchPositions(ctx context.Context) ([]domain.PositionSeed, error) {
	wallets, err := s.TopWallets(ctx, s.topN)
	if err != nil {
		return nil, err
	}
	return s.client.fetchWalletStates(ctx, wallets)
}
