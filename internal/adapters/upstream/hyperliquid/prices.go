package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
)

// MidsSource reads the all-mid-prices query: a keyed object of symbol
// to numeric string.
type MidsSource struct {
	client *Client
}

func NewMidsSource(client *Client) port.PriceSource {
	return &MidsSource{client: client}
}

func (s *MidsSource) Name() string { return sourceName + ":allMids" }

func (s *MidsSource) FetchPrices(ctx context.Context, symbols []string) (*domain.PriceBook, error) {
	result, err := s.client.call(ctx, methodAllMids, nil)
	if err != nil {
		return nil, err
	}

	var mids map[string]string
	if err := json.Unmarshal(result, &mids); err != nil {
		return nil, malformedResult(methodAllMids, result)
	}

	book := domain.NewPriceBook(s.Name(), time.Now().Unix())
	wanted := symbolSet(symbols)
	for sym, priceStr := range mids {
		if wanted != nil && !wanted[sym] {
			continue
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			continue
		}
		book.Prices[sym] = price
	}
	return book, nil
}

// SnapshotSource reads the exchange snapshot query: an array of
// {coin, price} records.
type SnapshotSource struct {
	client *Client
}

func NewSnapshotSource(client *Client) port.PriceSource {
	return &SnapshotSource{client: client}
}

func (s *SnapshotSource) Name() string { return sourceName + ":snapshot" }

func (s *SnapshotSource) FetchPrices(ctx context.Context, symbols []string) (*domain.PriceBook, error) {
	result, err := s.client.call(ctx, methodExchangeSnapshot, nil)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Coin  string `json:"coin"`
		Price string `json:"price"`
	}
	if err := json.Unmarshal(result, &rows); err != nil {
		return nil, malformedResult(methodExchangeSnapshot, result)
	}

	book := domain.NewPriceBook(s.Name(), time.Now().Unix())
	wanted := symbolSet(symbols)
	for _, row := range rows {
		if wanted != nil && !wanted[row.Coin] {
			continue
		}
		price, err := strconv.ParseFloat(row.Price, 64)
		if err != nil || price <= 0 {
			continue
		}
		book.Prices[row.Coin] = price
	}
	return book, nil
}

// MetaSource reads the market-metadata query and looks prices up by
// symbol name inside the nested universe structure.
type MetaSource struct {
	client *Client
}

func NewMetaSource(client *Client) port.PriceSource {
	return &MetaSource{client: client}
}

func (s *MetaSource) Name() string { return sourceName + ":meta" }

func (s *MetaSource) FetchPrices(ctx context.Context, symbols []string) (*domain.PriceBook, error) {
	result, err := s.client.call(ctx, methodMeta, nil)
	if err != nil {
		return nil, err
	}

	var meta struct {
		Universe []struct {
			Name        string `json:"name"`
			MarkPx      string `json:"markPx"`
			SzDecimals  int    `json:"szDecimals"`
			MaxLeverage int    `json:"maxLeverage"`
		} `json:"universe"`
	}
	if err := json.Unmarshal(result, &meta); err != nil {
		return nil, malformedResult(methodMeta, result)
	}

	book := domain.NewPriceBook(s.Name(), time.Now().Unix())
	wanted := symbolSet(symbols)
	for _, entry := range meta.Universe {
		if wanted != nil && !wanted[entry.Name] {
			continue
		}
		price, err := strconv.ParseFloat(entry.MarkPx, 64)
		if err != nil || price <= 0 {
			continue
		}
		book.Prices[entry.Name] = price
	}
	return book, nil
}

func symbolSet(symbols []string) map[string]bool {
	if len(symbols) == 0 {
		return nil
	}
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}

func malformedResult(method string, result json.RawMessage) error {
	return &domain.UpstreamError{
		Source:  sourceName,
		Status:  http.StatusOK,
		Details: fmt.Sprintf("unexpected %s result shape: %s", method, snippet(result)),
	}
}
