package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"OilPulse/internal/domain/models"
	domrepo "OilPulse/internal/domain/repository"
	pkgch "OilPulse/pkg/clickhouse"
	applogger "OilPulse/pkg/logger"
	"OilPulse/pkg/util"
)

// ClickHousePriceStore reads the daily series from the tick table,
// aggregating the last tick of each day into a daily close.
type ClickHousePriceStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewClickHousePriceStore(ch *pkgch.Client, table string, l *applogger.Logger) *ClickHousePriceStore {
	return &ClickHousePriceStore{db: ch.DB(), table: table, l: l}
}

var _ domrepo.PriceStore = (*ClickHousePriceStore)(nil)

func (s *ClickHousePriceStore) Load(ctx context.Context, symbol string) (*models.Series, error) {
	start := time.Now()
	q := fmt.Sprintf(`
		SELECT toDate(ts) AS day, argMax(price, ts) AS close
		FROM %s
		WHERE symbol = ?
		GROUP BY day
		ORDER BY day ASC
	`, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily prices query error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load daily prices: %w", err)
	}
	defer rows.Close()

	series := &models.Series{Symbol: symbol, Points: make([]models.PricePoint, 0, 8192)}
	for rows.Next() {
		var day time.Time
		var close float64
		if err := rows.Scan(&day, &close); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		series.Points = append(series.Points, models.PricePoint{Date: util.Midnight(day), Price: close})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("daily prices for %s: %w", symbol, err)
	}
	if s.l != nil {
		s.l.Info("clickhouse daily prices ok",
			applogger.String("symbol", symbol),
			applogger.Int("points", len(series.Points)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}
