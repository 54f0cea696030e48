package models

import (
	"strings"
	"time"
)

// Category classifies catalog events.
type Category string

const (
	CategoryGeopolitical Category = "geopolitical"
	CategoryEconomic     Category = "economic"
	CategoryOPEC         Category = "opec"
	CategoryOther        Category = "other"
)

// ParseCategory maps free-form catalog labels onto the known set.
// Unknown labels fall back to CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geopolitical":
		return CategoryGeopolitical
	case "economic":
		return CategoryEconomic
	case "opec":
		return CategoryOPEC
	default:
		return CategoryOther
	}
}

// Event is one externally sourced catalog entry, immutable after load.
type Event struct {
	StartDate time.Time
	Name      string
	Category  Category
}

// EventImpact pairs an event with the nearest detected change point.
// NearestChangePoint is nil when no change point falls inside the lag
// window. PriceDeltaWindow is NaN when the event lies outside the
// series date range.
type EventImpact struct {
	Event              Event
	NearestChangePoint *ChangePointEstimate
	LagDays            int
	PriceDeltaWindow   float64
}
