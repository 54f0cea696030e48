package util

import (
	"strings"
	"time"
)

// dateLayouts lists accepted calendar-date layouts, most common first.
// The historical Brent dataset uses "20-May-87"; newer exports use ISO dates.
var dateLayouts = []string{
	"2-Jan-06",
	"02-Jan-06",
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

// ParseDate parses a calendar date in any supported layout, normalized to
// midnight UTC. Returns (t, true) if any layout worked.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Midnight(t), true
		}
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns def if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// Midnight truncates t to midnight UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// AbsDays returns the absolute number of whole days between a and b.
func AbsDays(a, b time.Time) int {
	d := DaysBetween(a, b)
	if d < 0 {
		return -d
	}
	return d
}
