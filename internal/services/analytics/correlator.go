package analytics

import (
	"context"
	"errors"
	"math"
	"sort"

	"OilPulse/internal/domain/models"
	domsvc "OilPulse/internal/domain/service"
	"OilPulse/pkg/logger"
	"OilPulse/pkg/util"
)

// Correlator pairs catalog events with detected change points and
// quantifies the price move in a window around each event. Events are
// reported independently: several events may share one change point.
type Correlator struct {
	log *logger.Logger
}

// NewCorrelator creates the event correlator.
func NewCorrelator(log *logger.Logger) *Correlator {
	return &Correlator{log: log}
}

var _ domsvc.EventCorrelator = (*Correlator)(nil)

// Correlate returns one EventImpact per event. NearestChangePoint is nil
// when no change point lies within lagWindowDays of the event. An event
// outside the series date range keeps a NaN price delta and adds a
// warning instead of failing the batch.
func (c *Correlator) Correlate(ctx context.Context, changePoints []models.ChangePointEstimate, events []models.Event, series *models.Series, lagWindowDays, priceWindowDays int) ([]models.EventImpact, []string, error) {
	if series == nil || len(series.Points) == 0 {
		return nil, nil, errors.New("correlate: empty price series")
	}
	if lagWindowDays <= 0 {
		lagWindowDays = 30
	}
	if priceWindowDays <= 0 {
		priceWindowDays = 7
	}

	impacts := make([]models.EventImpact, 0, len(events))
	var warnings []string

	for _, ev := range events {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		imp := models.EventImpact{Event: ev, PriceDeltaWindow: math.NaN()}

		// Nearest change point by absolute day distance; ties go to the
		// earlier change point since estimates are ordered by index.
		bestDist := 0
		var best *models.ChangePointEstimate
		for i := range changePoints {
			dist := util.AbsDays(changePoints[i].Date, ev.StartDate)
			if best == nil || dist < bestDist {
				best = &changePoints[i]
				bestDist = dist
			}
		}
		if best != nil && bestDist <= lagWindowDays {
			cp := *best
			imp.NearestChangePoint = &cp
			imp.LagDays = util.DaysBetween(cp.Date, ev.StartDate)
		}

		delta, err := priceDelta(series, ev, priceWindowDays)
		if err != nil {
			warnings = append(warnings, err.Error())
			if c.log != nil {
				c.log.Warn("event outside series range", logger.String("event", ev.Name))
			}
		} else {
			imp.PriceDeltaWindow = delta
		}
		impacts = append(impacts, imp)
	}
	return impacts, warnings, nil
}

// priceDelta computes price(after window) - price(before window) around
// the event date, snapping to the nearest trading days inside the series.
func priceDelta(series *models.Series, ev models.Event, windowDays int) (float64, error) {
	first, last := series.First(), series.Last()
	if ev.StartDate.Before(first) || ev.StartDate.After(last) {
		return 0, &OutOfRangeError{Event: ev.Name, Date: ev.StartDate, From: first, To: last}
	}

	lo := ev.StartDate.AddDate(0, 0, -windowDays)
	hi := ev.StartDate.AddDate(0, 0, windowDays)

	// Latest trading day at or before the window start.
	i := sort.Search(len(series.Points), func(k int) bool {
		return series.Points[k].Date.After(lo)
	})
	if i > 0 {
		i--
	}
	// Earliest trading day at or after the window end.
	j := sort.Search(len(series.Points), func(k int) bool {
		return !series.Points[k].Date.Before(hi)
	})
	if j >= len(series.Points) {
		j = len(series.Points) - 1
	}

	return series.Points[j].Price - series.Points[i].Price, nil
}
