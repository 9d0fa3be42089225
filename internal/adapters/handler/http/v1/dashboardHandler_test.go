package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"perpboard/internal/core/domain"
)

type fakeDashboards struct {
	dash     *domain.Dashboard
	err      error
	panicMsg string

	priceStrategy    string
	positionStrategy string
	strategyErr      error
}

func (f *fakeDashboards) BuildDashboard(ctx context.Context) (*domain.Dashboard, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.dash, f.err
}

func (f *fakeDashboards) SetPriceStrategy(name string) error {
	if f.strategyErr != nil {
		return f.strategyErr
	}
	f.priceStrategy = name
	return nil
}

func (f *fakeDashboards) SetPositionStrategy(name string) error {
	if f.strategyErr != nil {
		return f.strategyErr
	}
	f.positionStrategy = name
	return nil
}

func (f *fakeDashboards) CurrentStrategies() (string, string) {
	return f.priceStrategy, f.positionStrategy
}

func (f *fakeDashboards) FailurePolicy() string { return "degrade" }

func emptyDashboard() *domain.Dashboard {
	return &domain.Dashboard{
		Markets:       []domain.Market{},
		OpenPositions: []domain.Position{},
	}
}

func checkCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("missing CORS origin header, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "OPTIONS") {
		t.Errorf("allowed methods must include OPTIONS, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Content-Type") {
		t.Errorf("allowed headers must include Content-Type, got %q", got)
	}
}

func TestOptionsPreflightShortCircuits(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboards{dash: emptyDashboard()}, time.Second)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight response must have no body, got %q", rec.Body.String())
	}
	checkCORS(t, rec)
}

func TestSuccessAlwaysCarriesBothArrays(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboards{dash: emptyDashboard()}, time.Second)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/api/dashboard", nil)
		rec := httptest.NewRecorder()
		h.GetDashboard(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", method, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: wrong content type %q", method, ct)
		}
		checkCORS(t, rec)

		var body map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: response is not valid JSON: %v", method, err)
		}
		for _, key := range []string{"markets", "openPositions"} {
			raw, ok := body[key]
			if !ok {
				t.Fatalf("%s: missing key %q", method, key)
			}
			if !strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
				t.Errorf("%s: %q must be an array, got %s", method, key, raw)
			}
		}
	}
}

func TestWarningSurvivesSerialization(t *testing.T) {
	dash := emptyDashboard()
	dash.Warning = "positions unavailable: batch failed"
	h := NewDashboardHandler(&fakeDashboards{dash: dash}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	var body struct {
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Warning != dash.Warning {
		t.Errorf("warning mismatch: %q", body.Warning)
	}
}

func TestUpstreamErrorMapsToBadGateway(t *testing.T) {
	upstreamErr := fmt.Errorf("price fetch failed: %w", &domain.UpstreamError{
		Source:  "hyperliquid",
		Status:  500,
		Details: "upstream exploded",
	})
	h := NewDashboardHandler(&fakeDashboards{err: upstreamErr}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	checkCORS(t, rec)

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error response is not valid JSON: %v", err)
	}
	if body.Error != "upstream_error" || body.Status != 500 || body.Details != "upstream exploded" {
		t.Errorf("error body mismatch: %+v", body)
	}
}

func TestInternalErrorMapsTo500(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboards{err: fmt.Errorf("something broke")}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	checkCORS(t, rec)

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error response is not valid JSON: %v", err)
	}
	if body.Details != "something broke" {
		t.Errorf("details mismatch: %q", body.Details)
	}
}

func TestPanicIsConvertedTo500(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboards{panicMsg: "nil map write"}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
	checkCORS(t, rec)

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error response is not valid JSON: %v", err)
	}
	if !strings.Contains(body.Details, "nil map write") {
		t.Errorf("panic text not carried in details: %q", body.Details)
	}
}

func TestModeHandlerSwitchAndReject(t *testing.T) {
	fake := &fakeDashboards{priceStrategy: "all-mids", positionStrategy: "simulated"}
	router := http.NewServeMux()
	SetDashboardRoutes(router, NewDashboardHandler(fake, time.Second), NewModeHandler(fake), nil)

	req := httptest.NewRequest(http.MethodPost, "/mode/prices/snapshot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.priceStrategy != "snapshot" {
		t.Errorf("strategy not switched: %s", fake.priceStrategy)
	}

	fake.strategyErr = fmt.Errorf("unknown price strategy: bogus")
	req = httptest.NewRequest(http.MethodPost, "/mode/prices/bogus", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown strategy, got %d", rec.Code)
	}
}
