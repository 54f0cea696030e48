package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"OilPulse/internal/domain/models"
)

func linearSeries(start time.Time, n int, base, step float64) *models.Series {
	points := make([]models.PricePoint, n)
	for i := range points {
		points[i] = models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Price: base + step*float64(i),
		}
	}
	return &models.Series{Symbol: "BRENT", Points: points}
}

func TestCorrelateEventOnChangePointDate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := linearSeries(start, 120, 50, 0.5)
	cpDate := start.AddDate(0, 0, 60)
	cps := []models.ChangePointEstimate{{Index: 59, Date: cpDate, Confidence: 0.8}}
	events := []models.Event{{StartDate: cpDate, Name: "OPEC cut", Category: models.CategoryOPEC}}

	impacts, warnings, err := NewCorrelator(nil).Correlate(context.Background(), cps, events, series, 30, 7)
	if err != nil {
		t.Fatalf("correlate: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(impacts) != 1 {
		t.Fatalf("expected 1 impact, got %d", len(impacts))
	}
	imp := impacts[0]
	if imp.NearestChangePoint == nil {
		t.Fatalf("event on change point date must match")
	}
	if imp.LagDays != 0 {
		t.Fatalf("expected lag 0, got %d", imp.LagDays)
	}
	// ±7 day window over a 0.5/day ramp moves the price by 7.
	if math.Abs(imp.PriceDeltaWindow-7.0) > 1e-9 {
		t.Fatalf("expected price delta 7.0, got %v", imp.PriceDeltaWindow)
	}
}

func TestCorrelateEventBeyondLagWindow(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := linearSeries(start, 120, 50, 0.5)
	cps := []models.ChangePointEstimate{{Index: 10, Date: start.AddDate(0, 0, 11)}}
	events := []models.Event{{StartDate: start.AddDate(0, 0, 51), Name: "Sanctions", Category: models.CategoryGeopolitical}}

	impacts, _, err := NewCorrelator(nil).Correlate(context.Background(), cps, events, series, 30, 7)
	if err != nil {
		t.Fatalf("correlate: %v", err)
	}
	if impacts[0].NearestChangePoint != nil {
		t.Fatalf("event 40 days out must not match with a 30 day window")
	}
}

func TestCorrelateOutOfRangeEventRecovers(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := linearSeries(start, 60, 50, 0.5)
	events := []models.Event{
		{StartDate: start.AddDate(0, 0, -400), Name: "Old war", Category: models.CategoryGeopolitical},
		{StartDate: start.AddDate(0, 0, 30), Name: "Rate hike", Category: models.CategoryEconomic},
	}

	impacts, warnings, err := NewCorrelator(nil).Correlate(context.Background(), nil, events, series, 30, 7)
	if err != nil {
		t.Fatalf("out of range event must not abort the batch: %v", err)
	}
	if len(impacts) != 2 {
		t.Fatalf("expected 2 impacts, got %d", len(impacts))
	}
	if !math.IsNaN(impacts[0].PriceDeltaWindow) {
		t.Fatalf("out of range event must carry NaN delta")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if math.IsNaN(impacts[1].PriceDeltaWindow) {
		t.Fatalf("in-range event must still get a delta")
	}
}

func TestCorrelateManyEventsShareOneChangePoint(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := linearSeries(start, 200, 40, 0.1)
	cpDate := start.AddDate(0, 0, 100)
	cps := []models.ChangePointEstimate{{Index: 99, Date: cpDate}}
	events := []models.Event{
		{StartDate: cpDate.AddDate(0, 0, -5), Name: "A", Category: models.CategoryOther},
		{StartDate: cpDate.AddDate(0, 0, 10), Name: "B", Category: models.CategoryOther},
	}

	impacts, _, err := NewCorrelator(nil).Correlate(context.Background(), cps, events, series, 30, 7)
	if err != nil {
		t.Fatalf("correlate: %v", err)
	}
	if impacts[0].NearestChangePoint == nil || impacts[1].NearestChangePoint == nil {
		t.Fatalf("both events inside the lag window must match independently")
	}
	if impacts[0].LagDays != -5 || impacts[1].LagDays != 10 {
		t.Fatalf("unexpected lags: %d, %d", impacts[0].LagDays, impacts[1].LagDays)
	}
}
