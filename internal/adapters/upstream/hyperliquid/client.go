// Package hyperliquid talks to the exchange's public info endpoint: a
// single JSON-RPC 2.0 POST URL multiplexing price, wallet-state and
// leaderboard queries.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"perpboard/internal/core/domain"

	"github.com/google/uuid"
)

const sourceName = "hyperliquid"

// Wire method names understood by the info endpoint.
const (
	methodMeta               = "meta"
	methodAllMids            = "allMids"
	methodExchangeSnapshot   = "exchangeSnapshot"
	methodClearinghouseState = "clearinghouseState"
	methodLeaderboard        = "leaderboard"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: base,
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 15 * time.Second}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

func (c *Client) Name() string { return sourceName }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

func newRequest(id int, method string, params any) rpcRequest {
	return rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
}

// post sends body to the info endpoint and returns the raw response
// bytes. The body is read exactly once; callers decode from the
// returned slice, never from the network.
func (c *Client) post(ctx context.Context, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	traceID := uuid.NewString()
	slog.Debug("upstream call", "source", sourceName, "trace_id", traceID, "bytes", len(payload))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: sourceName, Details: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: sourceName, Status: resp.StatusCode, Details: "failed to read response body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("upstream returned non-success status",
			"source", sourceName, "trace_id", traceID, "status", resp.StatusCode)
		return nil, &domain.UpstreamError{
			Source:  sourceName,
			Status:  resp.StatusCode,
			Details: errorDetails(raw, resp.StatusCode),
		}
	}

	return raw, nil
}

// call issues a single envelope and returns its result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	raw, err := c.post(ctx, newRequest(1, method, params))
	if err != nil {
		return nil, err
	}

	var env rpcResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.UpstreamError{
			Source:  sourceName,
			Status:  http.StatusOK,
			Details: "unparsable response body: " + snippet(raw),
		}
	}
	if env.Error != nil {
		return nil, &domain.UpstreamError{
			Source:  sourceName,
			Status:  http.StatusOK,
			Details: fmt.Sprintf("rpc error %d: %s", env.Error.Code, env.Error.Message),
		}
	}
	return env.Result, nil
}

// callBatch issues an ordered sequence of envelopes in one POST. The
// returned slice preserves request order; each element is matched back
// to its sub-query by position.
func (c *Client) callBatch(ctx context.Context, reqs []rpcRequest) ([]rpcResponse, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	raw, err := c.post(ctx, reqs)
	if err != nil {
		return nil, err
	}

	var envs []rpcResponse
	if err := json.Unmarshal(raw, &envs); err != nil {
		return nil, &domain.UpstreamError{
			Source:  sourceName,
			Status:  http.StatusOK,
			Details: "unparsable batch response body: " + snippet(raw),
		}
	}
	if len(envs) != len(reqs) {
		return nil, &domain.UpstreamError{
			Source:  sourceName,
			Status:  http.StatusOK,
			Details: fmt.Sprintf("batch size mismatch: sent %d sub-queries, got %d responses", len(reqs), len(envs)),
		}
	}
	return envs, nil
}

// errorDetails builds the failure message for a non-success response:
// parsed error detail first, then the raw text, then a generic message
// naming the status.
func errorDetails(raw []byte, status int) string {
	var env rpcResponse
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	var generic struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &generic); err == nil {
		if generic.Error != "" {
			return generic.Error
		}
		if generic.Message != "" {
			return generic.Message
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("upstream returned HTTP %d with empty body", status)
}

func snippet(raw []byte) string {
	const maxLen = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}
