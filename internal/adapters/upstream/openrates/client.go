// Package openrates reads an exchange-rate REST API as an alternative
// price source. Rates are quoted as units of the asset per USD, so
// price = 1 / rate.
package openrates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"perpboard/internal/core/domain"
	"perpboard/internal/core/port"
)

const sourceName = "openrates"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) port.PriceSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return sourceName }

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (c *Client) FetchPrices(ctx context.Context, symbols []string) (*domain.PriceBook, error) {
	u, err := url.Parse(c.BaseURL + "/latest")
	if err != nil {
		return nil, fmt.Errorf("invalid rates base URL: %w", err)
	}
	q := u.Query()
	q.Set("base", "USD")
	if len(symbols) > 0 {
		q.Set("symbols", strings.Join(symbols, ","))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: sourceName, Details: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: sourceName, Status: resp.StatusCode, Details: "failed to read response body: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		details := strings.TrimSpace(string(raw))
		if details == "" {
			details = fmt.Sprintf("rates API returned HTTP %d with empty body", resp.StatusCode)
		}
		return nil, &domain.UpstreamError{Source: sourceName, Status: resp.StatusCode, Details: details}
	}

	var parsed ratesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &domain.UpstreamError{
			Source:  sourceName,
			Status:  resp.StatusCode,
			Details: "unparsable rates body: " + strings.TrimSpace(string(raw)),
		}
	}

	book := domain.NewPriceBook(sourceName, time.Now().Unix())
	for sym, rate := range parsed.Rates {
		if rate <= 0 {
			continue
		}
		book.Prices[sym] = 1 / rate
	}
	return book, nil
}
