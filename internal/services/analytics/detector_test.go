package analytics

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"OilPulse/internal/domain/models"
)

func syntheticReturns(values []float64) *models.ReturnSeries {
	dates := make([]time.Time, len(values))
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i+1)
	}
	return &models.ReturnSeries{Symbol: "BRENT", Values: values, Dates: dates}
}

func jumpSeries(n, k int, before, after, noise float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		mean := before
		if i >= k {
			mean = after
		}
		values[i] = mean + noise*rng.NormFloat64()
	}
	return values
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func testConfig() models.DetectionConfig {
	return models.DetectionConfig{
		NumChangePoints:  1,
		Model:            models.ModelMean,
		MinSegmentLength: 2,
		Draws:            1000,
		Warmup:           500,
		Chains:           2,
		Seed:             42,
	}
}

func TestDetectSharpJump(t *testing.T) {
	rs := syntheticReturns(jumpSeries(100, 50, 0.0, 1.0, 0.05, 7))
	res, err := NewDetector(nil).Detect(context.Background(), rs, testConfig())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(res.ChangePoints) != 1 {
		t.Fatalf("expected 1 change point, got %d", len(res.ChangePoints))
	}
	cp := res.ChangePoints[0]
	if cp.Index < 48 || cp.Index > 52 {
		t.Fatalf("expected index 50±2, got %d", cp.Index)
	}
	if math.Abs(cp.Delta-1.0) > 0.1 {
		t.Fatalf("expected delta ≈ 1.0, got %v", cp.Delta)
	}
	if cp.Confidence <= 0 || cp.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", cp.Confidence)
	}
	if !cp.Date.Equal(rs.Dates[cp.Index]) {
		t.Fatalf("date not mapped from index")
	}
}

func TestDetectMeanVarianceShift(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	values := make([]float64, 120)
	for i := range values {
		mean, sd := 0.0, 0.05
		if i >= 60 {
			mean, sd = 0.8, 0.3
		}
		values[i] = mean + sd*rng.NormFloat64()
	}
	rs := syntheticReturns(values)
	cfg := testConfig()
	cfg.Model = models.ModelMeanVariance

	res, err := NewDetector(nil).Detect(context.Background(), rs, cfg)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(res.ChangePoints) != 1 {
		t.Fatalf("expected 1 change point, got %d", len(res.ChangePoints))
	}
	cp := res.ChangePoints[0]
	if d := abs(cp.Index - 60); d > 3 {
		t.Fatalf("expected index 60±3, got %d", cp.Index)
	}
	if math.Abs(cp.Delta-0.8) > 0.2 {
		t.Fatalf("expected delta ≈ 0.8, got %v", cp.Delta)
	}
	if cp.Confidence <= 0 || cp.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", cp.Confidence)
	}
}

func TestDetectFlatSeriesRecovers(t *testing.T) {
	values := make([]float64, 80)
	res, err := NewDetector(nil).Detect(context.Background(), syntheticReturns(values), testConfig())
	if err != nil {
		t.Fatalf("flat series must not fail: %v", err)
	}
	if len(res.ChangePoints) != 0 {
		t.Fatalf("flat series must not assert an index, got %v", res.ChangePoints)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a degeneracy warning")
	}
}

func TestDetectNaNSeriesRecovers(t *testing.T) {
	values := jumpSeries(60, 30, 0.0, 0.5, 0.05, 3)
	values[10] = math.NaN()
	res, err := NewDetector(nil).Detect(context.Background(), syntheticReturns(values), testConfig())
	if err != nil {
		t.Fatalf("NaN series must not fail: %v", err)
	}
	if len(res.ChangePoints) != 0 || len(res.Warnings) == 0 {
		t.Fatalf("expected zero-confidence result with warning")
	}
}

func TestDetectInsufficientData(t *testing.T) {
	cfg := testConfig()
	cfg.MinSegmentLength = 10
	_, err := NewDetector(nil).Detect(context.Background(), syntheticReturns(jumpSeries(15, 7, 0, 1, 0.05, 1)), cfg)
	if err == nil {
		t.Fatalf("expected InsufficientDataError")
	}
	if _, ok := err.(*InsufficientDataError); !ok {
		t.Fatalf("unexpected error type: %T", err)
	}
}

func TestDetectIndexWithinBounds(t *testing.T) {
	cfg := testConfig()
	cfg.MinSegmentLength = 5
	rs := syntheticReturns(jumpSeries(40, 8, 0.0, 0.8, 0.3, 11))
	res, err := NewDetector(nil).Detect(context.Background(), rs, cfg)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	for _, cp := range res.ChangePoints {
		if cp.Index < cfg.MinSegmentLength || cp.Index > rs.Len()-cfg.MinSegmentLength {
			t.Fatalf("index %d outside [%d, %d]", cp.Index, cfg.MinSegmentLength, rs.Len()-cfg.MinSegmentLength)
		}
	}
}

func TestDetectIdempotentWithFixedSeed(t *testing.T) {
	rs := syntheticReturns(jumpSeries(120, 70, 0.0, 0.6, 0.1, 21))
	cfg := testConfig()
	first, err := NewDetector(nil).Detect(context.Background(), rs, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := NewDetector(nil).Detect(context.Background(), rs, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.ChangePoints[0].Index != second.ChangePoints[0].Index {
		t.Fatalf("modal index not reproducible: %d vs %d",
			first.ChangePoints[0].Index, second.ChangePoints[0].Index)
	}
	if first.ChangePoints[0].Confidence != second.ChangePoints[0].Confidence {
		t.Fatalf("confidence not reproducible with fixed seed")
	}
}

func TestDetectTwoChangePoints(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	values := make([]float64, 150)
	for i := range values {
		mean := 0.0
		switch {
		case i >= 100:
			mean = -1.0
		case i >= 50:
			mean = 1.0
		}
		values[i] = mean + 0.05*rng.NormFloat64()
	}
	cfg := testConfig()
	cfg.NumChangePoints = 2
	res, err := NewDetector(nil).Detect(context.Background(), syntheticReturns(values), cfg)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(res.ChangePoints) != 2 {
		t.Fatalf("expected 2 change points, got %d", len(res.ChangePoints))
	}
	if res.ChangePoints[0].Index >= res.ChangePoints[1].Index {
		t.Fatalf("estimates must be ordered by index")
	}
	if d := abs(res.ChangePoints[0].Index - 50); d > 3 {
		t.Fatalf("first split off by %d", d)
	}
	if d := abs(res.ChangePoints[1].Index - 100); d > 3 {
		t.Fatalf("second split off by %d", d)
	}
}

func TestDetectBudgetReturnsEstimate(t *testing.T) {
	cfg := testConfig()
	cfg.Draws = 100000
	cfg.Warmup = 50
	cfg.Budget = 50 * time.Millisecond
	rs := syntheticReturns(jumpSeries(100, 50, 0.0, 1.0, 0.05, 7))
	res, err := NewDetector(nil).Detect(context.Background(), rs, cfg)
	if err != nil {
		t.Fatalf("detect with budget: %v", err)
	}
	if len(res.ChangePoints) != 1 {
		t.Fatalf("budget run must still return the best estimate so far")
	}
}
