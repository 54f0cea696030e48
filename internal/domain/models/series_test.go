package models

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestLogReturns(t *testing.T) {
	s := &Series{Symbol: "BRENT", Points: []PricePoint{
		{Date: day(0), Price: 100},
		{Date: day(1), Price: 110},
		{Date: day(2), Price: 99},
	}}
	rs, err := s.LogReturns()
	if err != nil {
		t.Fatalf("log returns: %v", err)
	}
	if rs.Len() != 2 {
		t.Fatalf("expected 2 returns, got %d", rs.Len())
	}
	if got := rs.Values[0]; math.Abs(got-math.Log(1.1)) > 1e-12 {
		t.Fatalf("unexpected first return %v", got)
	}
	// Return i carries the date of price i+1.
	if !rs.Dates[0].Equal(day(1)) || !rs.Dates[1].Equal(day(2)) {
		t.Fatalf("return dates misaligned: %v", rs.Dates)
	}
}

func TestReturnSeriesSlice(t *testing.T) {
	rs := &ReturnSeries{
		Symbol: "BRENT",
		Values: []float64{0.1, 0.2, 0.3, 0.4, 0.5},
		Dates:  []time.Time{day(1), day(2), day(3), day(4), day(5)},
	}
	sub := rs.Slice(1, 4)
	if sub.Len() != 3 {
		t.Fatalf("expected 3 returns, got %d", sub.Len())
	}
	if sub.Values[0] != 0.2 || !sub.Dates[0].Equal(day(2)) {
		t.Fatalf("slice misaligned: %v %v", sub.Values[0], sub.Dates[0])
	}
	// Views share backing arrays with the parent.
	sub.Values[0] = 9
	if rs.Values[1] != 9 {
		t.Fatalf("slice must be a view, not a copy")
	}
}

func TestValidateRejectsUnorderedDates(t *testing.T) {
	s := &Series{Points: []PricePoint{
		{Date: day(1), Price: 100},
		{Date: day(0), Price: 101},
	}}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for unordered dates")
	}
}

func TestValidateRejectsBadPrice(t *testing.T) {
	s := &Series{Points: []PricePoint{
		{Date: day(0), Price: 100},
		{Date: day(1), Price: -3},
	}}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for non-positive price")
	}
}

func TestValidateRejectsShortSeries(t *testing.T) {
	s := &Series{Points: []PricePoint{{Date: day(0), Price: 100}}}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for single point series")
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"Geopolitical": CategoryGeopolitical,
		" economic ":   CategoryEconomic,
		"OPEC":         CategoryOPEC,
		"weather":      CategoryOther,
		"":             CategoryOther,
	}
	for in, want := range cases {
		if got := ParseCategory(in); got != want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
