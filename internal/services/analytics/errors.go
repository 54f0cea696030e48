package analytics

import (
	"fmt"
	"time"
)

// InsufficientDataError is returned when the series is too short to
// support the requested segmentation. Fatal to the request.
type InsufficientDataError struct {
	N        int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d observations, need at least %d", e.N, e.Required)
}

// OutOfRangeError marks an event dated outside the series range. It is
// recovered per event: the impact carries a NaN price delta and the
// batch continues.
type OutOfRangeError struct {
	Event string
	Date  time.Time
	From  time.Time
	To    time.Time
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("event %q dated %s outside series range [%s, %s]",
		e.Event, e.Date.Format("2006-01-02"),
		e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
}

// NumericDegeneracyError marks a zero-variance or NaN-producing series.
// Recovered by returning a zero-confidence result instead of failing.
type NumericDegeneracyError struct {
	Reason string
}

func (e *NumericDegeneracyError) Error() string {
	return "numeric degeneracy: " + e.Reason
}
