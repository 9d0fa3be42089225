package openrates

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"perpboard/internal/core/domain"
)

func TestFetchPricesInvertsRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("base") != "USD" {
			t.Fatalf("expected base=USD, got %s", r.URL.Query().Get("base"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"base": "USD",
			"rates": map[string]float64{
				"BTC": 0.0000164,
				"ETH": 0.000333,
				"XXX": 0,
			},
		})
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second)
	book, err := src.FetchPrices(context.Background(), []string{"BTC", "ETH"})
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}

	if len(book.Prices) != 2 {
		t.Fatalf("zero rate must be skipped, got %d prices", len(book.Prices))
	}
	if math.Abs(book.Prices["BTC"]-1/0.0000164) > 1e-6 {
		t.Errorf("BTC inversion mismatch: %v", book.Prices["BTC"])
	}
}

func TestFetchPricesNonSuccessCarriesRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second)
	_, err := src.FetchPrices(context.Background(), nil)

	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("status mismatch: %d", upstream.Status)
	}
	if !strings.Contains(upstream.Details, "slow down") {
		t.Errorf("raw body not carried: %q", upstream.Details)
	}
}

func TestFetchPricesUnparsableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second)
	_, err := src.FetchPrices(context.Background(), nil)

	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !strings.Contains(upstream.Details, "not json at all") {
		t.Errorf("details should carry the raw text: %q", upstream.Details)
	}
}
