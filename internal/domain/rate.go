package domain

import "time"

// RateSnapshot is one observation of gold/silver prices for a city.
// Prices are INR per gram (silver additionally per kg).
type RateSnapshot struct {
	City          string    `json:"city"`
	Gold24K       float64   `json:"gold24k"`
	Gold22K       float64   `json:"gold22k"`
	Gold18K       float64   `json:"gold18k"`
	SilverPerGram float64   `json:"silverPerGram"`
	SilverPerKg   float64   `json:"silverPerKg"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
}

// Valid reports whether all price fields are non-negative.
// A zero price is allowed: the upstream coerces unparseable fields to 0.
func (s RateSnapshot) Valid() bool {
	return s.Gold24K >= 0 && s.Gold22K >= 0 && s.Gold18K >= 0 &&
		s.SilverPerGram >= 0 && s.SilverPerKg >= 0
}
