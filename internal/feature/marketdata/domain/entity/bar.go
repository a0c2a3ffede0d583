// Package entity defines the domain model for daily market data.
package entity

import "time"

// Bar is one trading day's raw OHLCV for a symbol.
// High is always >= max(Open, Close) and Low <= min(Open, Close);
// the synthetic generator enforces this, upstream data is assumed to.
type Bar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// MetricRow is a Bar extended with derived analytics. Rows are computed
// once by the ingest pipeline and never updated in place; the derived
// fields depend only on the row's own bar and the ascending-date prefix
// of the same symbol's history at computation time.
type MetricRow struct {
	Bar

	// DailyReturn is (Close - Open) / Open.
	DailyReturn float64
	// MA7 is the mean close over the trailing 7 rows.
	MA7 float64
	// RollingHigh is the max high over the trailing 252 rows.
	RollingHigh float64
	// RollingLow is the min low over the trailing 252 rows.
	RollingLow float64
	// Volatility is the stddev of the trailing 30 daily returns,
	// annualized by sqrt(252).
	Volatility float64
}

// DateLayout is how dates are persisted and rendered over HTTP.
const DateLayout = "2006-01-02"
