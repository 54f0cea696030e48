package api

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"OilPulse/internal/domain/models"
	"OilPulse/internal/services/analytics"
	"OilPulse/internal/usecase"
	"OilPulse/pkg/cache"
	"OilPulse/pkg/config"

	"github.com/labstack/echo/v4"
)

type stubPriceStore struct{ series *models.Series }

func (s *stubPriceStore) Load(ctx context.Context, symbol string) (*models.Series, error) {
	return s.series, nil
}

type stubEventStore struct{ events []models.Event }

func (s *stubEventStore) Load(ctx context.Context) ([]models.Event, error) {
	return s.events, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordTickIngested(backend, symbol string)    {}
func (stubMetrics) RecordError(kind string)                      {}
func (stubMetrics) RecordLastPrice(symbol string, price float64) {}
func (stubMetrics) RecordLatency(op string, seconds float64)     {}
func (stubMetrics) RecordAnalysis(outcome string)                {}
func (stubMetrics) RecordCacheLookup(result string)              {}

func newTestHandler(t *testing.T) (*AnalysisEchoHandler, *echo.Echo) {
	t.Helper()
	rng := rand.New(rand.NewSource(3))
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, 101)
	points[0] = models.PricePoint{Date: start, Price: 100}
	for i := 0; i < 100; i++ {
		mean := 0.0
		if i >= 50 {
			mean = 0.04
		}
		points[i+1] = models.PricePoint{
			Date:  start.AddDate(0, 0, i+1),
			Price: points[i].Price * math.Exp(mean+0.004*rng.NormFloat64()),
		}
	}
	series := &models.Series{Symbol: "BRENT", Points: points}
	events := []models.Event{
		{StartDate: start.AddDate(0, 0, 52), Name: "Supply shock", Category: models.CategoryOPEC},
		{StartDate: start.AddDate(0, 0, -300), Name: "Out of range", Category: models.CategoryOther},
	}

	cfg := &config.Config{}
	cfg.Data.Symbol = "BRENT"
	cfg.Analysis.Draws = 600
	cfg.Analysis.Warmup = 300
	cfg.Analysis.Chains = 2
	cfg.Analysis.Seed = 42
	cfg.Analysis.MinSegmentLength = 2
	cfg.Analysis.CacheTTL = time.Minute
	cfg.Correlation.LagWindowDays = 30
	cfg.Correlation.PriceWindowDays = 7

	an := usecase.NewAnalyzer(
		analytics.NewDetector(nil),
		analytics.NewCorrelator(nil),
		&stubPriceStore{series: series},
		&stubEventStore{events: events},
		cache.NewMemoryCache(),
		stubMetrics{},
		cfg,
		nil,
	)
	if err := an.Init(context.Background()); err != nil {
		t.Fatalf("init analyzer: %v", err)
	}

	h := NewAnalysisEchoHandler(nil, an)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHistoricalPricesBareArray(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doGet(t, e, "/api/historical_prices")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("expected bare JSON array: %v", err)
	}
	if len(out) != 101 {
		t.Fatalf("expected 101 prices, got %d", len(out))
	}
	if _, ok := out[0]["Date"]; !ok {
		t.Fatalf("missing Date field: %v", out[0])
	}
	if _, ok := out[0]["Price"]; !ok {
		t.Fatalf("missing Price field: %v", out[0])
	}
}

func TestEventsBareArray(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doGet(t, e, "/api/events")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("expected bare JSON array: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 events, got %d", len(out))
	}
	for _, k := range []string{"Start_Date", "Event_Name", "Category"} {
		if _, ok := out[0][k]; !ok {
			t.Fatalf("missing %s field: %v", k, out[0])
		}
	}
}

func TestChangePointsEndpoint(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doGet(t, e, "/api/change_points")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var out []changePointDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("expected bare JSON array: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 change point, got %d", len(out))
	}
	if out[0].Index < 48 || out[0].Index > 52 {
		t.Fatalf("expected index near 50, got %d", out[0].Index)
	}
	if out[0].Confidence <= 0 || out[0].Confidence > 1 {
		t.Fatalf("confidence out of range: %v", out[0].Confidence)
	}
}

func TestChangePointsRejectsBadQuery(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doGet(t, e, "/api/change_points?model=bogus")
	if rec.Code != http.StatusOK {
		t.Fatalf("envelope errors ride a 200 body, got %d", rec.Code)
	}
	var env struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400 in envelope, got %d", env.Status)
	}
}

func TestAnalysisEndpointNullDeltaForOutOfRangeEvent(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doGet(t, e, "/api/analysis")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data analysisReportDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(env.Data.Impacts) != 2 {
		t.Fatalf("expected 2 impacts, got %d", len(env.Data.Impacts))
	}
	if env.Data.Impacts[0].PriceDeltaWindow == nil {
		t.Fatalf("in-range event must have a price delta")
	}
	if env.Data.Impacts[0].NearestChange == nil {
		t.Fatalf("event near the jump must match a change point")
	}
	if env.Data.Impacts[1].PriceDeltaWindow != nil {
		t.Fatalf("out-of-range event must serialize a null delta")
	}
	if len(env.Data.Warnings) == 0 {
		t.Fatalf("recovered errors must surface as warnings")
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doGet(t, e, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
