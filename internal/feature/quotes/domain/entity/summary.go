// Package entity defines the query engine's result types.
package entity

import "time"

// Summary is the 52-week view over a symbol's most recent rows
// (up to 252 trading days).
type Summary struct {
	High52w  float64
	Low52w   float64
	AvgClose float64
}

// ComparePoint is one aligned point of a two-symbol comparison. Both
// normalized series start at 100 within the compared window.
type ComparePoint struct {
	Date        time.Time
	Normalized1 float64
	Normalized2 float64
}
