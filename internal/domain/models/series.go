package models

import (
	"fmt"
	"math"
	"time"
)

// PricePoint is one daily observation of the underlying price series.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Series is an ordered daily price series. Dates strictly increase and
// prices are positive; Validate enforces both before any derivation.
type Series struct {
	Symbol string
	Points []PricePoint
}

// Validate rejects malformed series before any computation starts.
func (s *Series) Validate() error {
	if len(s.Points) < 2 {
		return fmt.Errorf("series %q: need at least 2 points, got %d", s.Symbol, len(s.Points))
	}
	for i, p := range s.Points {
		if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return fmt.Errorf("series %q: invalid price %v at index %d", s.Symbol, p.Price, i)
		}
		if i > 0 && !s.Points[i-1].Date.Before(p.Date) {
			return fmt.Errorf("series %q: dates not strictly increasing at index %d", s.Symbol, i)
		}
	}
	return nil
}

// First returns the earliest date in the series.
func (s *Series) First() time.Time { return s.Points[0].Date }

// Last returns the latest date in the series.
func (s *Series) Last() time.Time { return s.Points[len(s.Points)-1].Date }

// LogReturns derives the immutable return series. Values[i] is
// ln(price[i+1]/price[i]); Dates[i] is the date of price i+1, so a
// change point at return index t reports the date the new regime
// first shows up in prices.
func (s *Series) LogReturns() (*ReturnSeries, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := len(s.Points) - 1
	rs := &ReturnSeries{
		Symbol: s.Symbol,
		Values: make([]float64, n),
		Dates:  make([]time.Time, n),
	}
	for i := 0; i < n; i++ {
		rs.Values[i] = math.Log(s.Points[i+1].Price) - math.Log(s.Points[i].Price)
		rs.Dates[i] = s.Points[i+1].Date
	}
	return rs, nil
}

// ReturnSeries is the derived log-return series, immutable once built.
type ReturnSeries struct {
	Symbol string
	Values []float64
	Dates  []time.Time
}

// Len returns the number of return observations.
func (r *ReturnSeries) Len() int { return len(r.Values) }

// Slice returns a view of returns [from, to). Dates are shared, not copied.
func (r *ReturnSeries) Slice(from, to int) *ReturnSeries {
	return &ReturnSeries{
		Symbol: r.Symbol,
		Values: r.Values[from:to],
		Dates:  r.Dates[from:to],
	}
}
