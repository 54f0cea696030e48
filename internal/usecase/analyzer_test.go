package usecase

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"OilPulse/internal/domain/models"
	"OilPulse/internal/services/analytics"
	"OilPulse/pkg/cache"
	"OilPulse/pkg/config"
)

type fakePriceStore struct {
	series *models.Series
	loads  int
}

func (f *fakePriceStore) Load(ctx context.Context, symbol string) (*models.Series, error) {
	f.loads++
	return f.series, nil
}

type fakeEventStore struct {
	events []models.Event
}

func (f *fakeEventStore) Load(ctx context.Context) ([]models.Event, error) {
	return f.events, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordTickIngested(backend, symbol string)      {}
func (nopMetrics) RecordError(kind string)                        {}
func (nopMetrics) RecordLastPrice(symbol string, price float64)   {}
func (nopMetrics) RecordLatency(op string, seconds float64)       {}
func (nopMetrics) RecordAnalysis(outcome string)                  {}
func (nopMetrics) RecordCacheLookup(result string)                {}

type countingDetector struct {
	inner *analytics.Detector
	calls int
}

func (d *countingDetector) Detect(ctx context.Context, rs *models.ReturnSeries, cfg models.DetectionConfig) (*models.DetectionResult, error) {
	d.calls++
	return d.inner.Detect(ctx, rs, cfg)
}

// jumpPriceSeries builds prices whose log-returns hold a mean shift at
// return index jumpAt.
func jumpPriceSeries(n, jumpAt int, seed int64) *models.Series {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n+1)
	points[0] = models.PricePoint{Date: start, Price: 100}
	for i := 0; i < n; i++ {
		mean := 0.0
		if i >= jumpAt {
			mean = 0.05
		}
		r := mean + 0.005*rng.NormFloat64()
		points[i+1] = models.PricePoint{
			Date:  start.AddDate(0, 0, i+1),
			Price: points[i].Price * math.Exp(r),
		}
	}
	return &models.Series{Symbol: "BRENT", Points: points}
}

func testAnalyzer(t *testing.T, det *countingDetector, events []models.Event) *Analyzer {
	t.Helper()
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

	a := NewAnalyzer(
		det,
		analytics.NewCorrelator(nil),
		&fakePriceStore{series: jumpPriceSeries(120, 60, 9)},
		&fakeEventStore{events: events},
		cache.NewMemoryCache(),
		nopMetrics{},
		cfg,
		nil,
	)
	if err := a.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return a
}

func TestChangePointsCachesByConfig(t *testing.T) {
	det := &countingDetector{inner: analytics.NewDetector(nil)}
	a := testAnalyzer(t, det, nil)
	req := models.ChangePointsRequest{NumChangePoints: 1, Model: models.ModelMean, MinSegmentLength: 2}

	first, err := a.ChangePoints(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := a.ChangePoints(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if det.calls != 1 {
		t.Fatalf("expected 1 detector call, got %d", det.calls)
	}
	if first.ChangePoints[0].Index != second.ChangePoints[0].Index {
		t.Fatalf("cached result differs: %d vs %d", first.ChangePoints[0].Index, second.ChangePoints[0].Index)
	}

	// A different configuration must not reuse the cached entry.
	req.Seed = 7
	if _, err := a.ChangePoints(context.Background(), req); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if det.calls != 2 {
		t.Fatalf("config change must bypass cache, got %d calls", det.calls)
	}
}

func TestChangePointsFindsJump(t *testing.T) {
	det := &countingDetector{inner: analytics.NewDetector(nil)}
	a := testAnalyzer(t, det, nil)

	res, err := a.ChangePoints(context.Background(), models.ChangePointsRequest{NumChangePoints: 1, Model: models.ModelMean, MinSegmentLength: 2})
	if err != nil {
		t.Fatalf("change points: %v", err)
	}
	if len(res.ChangePoints) != 1 {
		t.Fatalf("expected 1 change point, got %d", len(res.ChangePoints))
	}
	if idx := res.ChangePoints[0].Index; idx < 58 || idx > 62 {
		t.Fatalf("expected index near 60, got %d", idx)
	}
}

func TestAnalyzeCorrelatesEvents(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		{StartDate: start.AddDate(0, 0, 61), Name: "Supply shock", Category: models.CategoryOPEC},
		{StartDate: start.AddDate(0, 0, -500), Name: "Ancient history", Category: models.CategoryOther},
	}
	det := &countingDetector{inner: analytics.NewDetector(nil)}
	a := testAnalyzer(t, det, events)

	report, err := a.Analyze(context.Background(), models.AnalysisRequest{
		NumChangePoints: 1, Model: models.ModelMean, MinSegmentLength: 2,
		LagWindowDays: 30, PriceWindowDays: 7,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(report.Impacts) != 2 {
		t.Fatalf("expected 2 impacts, got %d", len(report.Impacts))
	}
	if report.Impacts[0].NearestChangePoint == nil {
		t.Fatalf("event near the jump must match a change point")
	}
	if !math.IsNaN(report.Impacts[1].PriceDeltaWindow) {
		t.Fatalf("out of range event must carry NaN delta")
	}
	if len(report.Warnings) == 0 {
		t.Fatalf("out of range event must surface a warning")
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	det := &countingDetector{inner: analytics.NewDetector(nil)}
	a := testAnalyzer(t, det, nil)

	_, err := a.Analyze(context.Background(), models.AnalysisRequest{
		NumChangePoints: 1, Model: models.ModelMean, MinSegmentLength: 100,
	})
	if err == nil {
		t.Fatalf("expected InsufficientDataError")
	}
	if _, ok := err.(*analytics.InsufficientDataError); !ok {
		t.Fatalf("unexpected error type %T", err)
	}
}
