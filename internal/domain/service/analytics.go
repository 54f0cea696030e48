package service

import (
	"context"

	"OilPulse/internal/domain/models"
)

// ChangePointDetector locates distributional shifts in a return series.
type ChangePointDetector interface {
	Detect(ctx context.Context, returns *models.ReturnSeries, cfg models.DetectionConfig) (*models.DetectionResult, error)
}

// EventCorrelator pairs detected change points with catalog events and
// quantifies the price move around each event.
type EventCorrelator interface {
	Correlate(ctx context.Context, changePoints []models.ChangePointEstimate, events []models.Event, series *models.Series, lagWindowDays, priceWindowDays int) ([]models.EventImpact, []string, error)
}
