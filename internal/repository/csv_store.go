package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"OilPulse/internal/domain/models"
	domrepo "OilPulse/internal/domain/repository"
	applogger "OilPulse/pkg/logger"
	"OilPulse/pkg/util"
)

// CSVPriceStore loads the daily price series from a two-column CSV
// (date, price). Rows with unparsable dates or prices are skipped with
// a warning so one bad row does not sink the whole dataset.
type CSVPriceStore struct {
	path string
	l    *applogger.Logger
}

func NewCSVPriceStore(path string, l *applogger.Logger) *CSVPriceStore {
	return &CSVPriceStore{path: path, l: l}
}

var _ domrepo.PriceStore = (*CSVPriceStore)(nil)

func (s *CSVPriceStore) Load(ctx context.Context, symbol string) (*models.Series, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open prices csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	series := &models.Series{Symbol: symbol, Points: make([]models.PricePoint, 0, 8192)}
	line := 0
	skipped := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read prices csv line %d: %w", line+1, err)
		}
		line++
		if len(rec) < 2 {
			skipped++
			continue
		}
		date, ok := util.ParseDate(rec[0])
		if !ok {
			// Header row lands here on line 1.
			skipped++
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}
		series.Points = append(series.Points, models.PricePoint{Date: date, Price: price})
	}

	// Historical exports are not always ordered and occasionally repeat a
	// trading day. Keep the last quote per date.
	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	deduped := series.Points[:0]
	for _, p := range series.Points {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			skipped++
			continue
		}
		deduped = append(deduped, p)
	}
	series.Points = deduped

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("prices csv %s: %w", s.path, err)
	}
	if s.l != nil {
		s.l.Info("price series loaded",
			applogger.String("path", s.path),
			applogger.Int("points", len(series.Points)),
			applogger.Int("skipped", skipped),
		)
	}
	return series, nil
}

// CSVEventStore loads the event catalog from a three-column CSV
// (start_date, event_name, category).
type CSVEventStore struct {
	path string
	l    *applogger.Logger
}

func NewCSVEventStore(path string, l *applogger.Logger) *CSVEventStore {
	return &CSVEventStore{path: path, l: l}
}

var _ domrepo.EventStore = (*CSVEventStore)(nil)

func (s *CSVEventStore) Load(ctx context.Context) ([]models.Event, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open events csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	events := make([]models.Event, 0, 64)
	line := 0
	skipped := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read events csv line %d: %w", line+1, err)
		}
		line++
		if len(rec) < 2 {
			skipped++
			continue
		}
		date, ok := util.ParseDate(rec[0])
		if !ok {
			skipped++
			continue
		}
		name := strings.TrimSpace(rec[1])
		if name == "" {
			skipped++
			continue
		}
		cat := models.CategoryOther
		if len(rec) > 2 {
			cat = models.ParseCategory(rec[2])
		}
		events = append(events, models.Event{StartDate: date, Name: name, Category: cat})
	}

	if s.l != nil {
		s.l.Info("event catalog loaded",
			applogger.String("path", s.path),
			applogger.Int("events", len(events)),
			applogger.Int("skipped", skipped),
		)
	}
	return events, nil
}
