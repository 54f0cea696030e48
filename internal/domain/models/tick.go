package models

import "time"

// Tick is a single live quote from the market feed.
type Tick struct {
	Symbol    string    `json:"s"`
	Price     float64   `json:"p"`
	Volume    float64   `json:"v"`
	Timestamp time.Time `json:"t"`
}
