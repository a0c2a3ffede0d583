package dto

// ErrorResponse is the common error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CompaniesResponse lists every symbol with stored data.
type CompaniesResponse struct {
	Companies []string `json:"companies"`
}

// MetricRowResponse is one day of raw prices plus derived metrics.
type MetricRowResponse struct {
	Date        string  `json:"date"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      int64   `json:"volume"`
	DailyReturn float64 `json:"daily_return"`
	MA7         float64 `json:"ma_7"`
	RollingHigh float64 `json:"rolling_high"`
	RollingLow  float64 `json:"rolling_low"`
	Volatility  float64 `json:"volatility"`
	Symbol      string  `json:"symbol"`
}

// SeriesResponse wraps a symbol's recent rows.
type SeriesResponse struct {
	Symbol string              `json:"symbol"`
	Data   []MetricRowResponse `json:"data"`
}

// SummaryResponse is the 52-week summary.
type SummaryResponse struct {
	Symbol   string  `json:"symbol"`
	High52w  float64 `json:"high_52w"`
	Low52w   float64 `json:"low_52w"`
	AvgClose float64 `json:"avg_close"`
}

// CompareResponse holds the aligned, normalized comparison. Each data
// point carries the date plus one "<SYMBOL>_normalized" key per symbol,
// so the points are maps rather than a fixed struct.
type CompareResponse struct {
	Symbol1 string           `json:"symbol1"`
	Symbol2 string           `json:"symbol2"`
	Days    int              `json:"days"`
	Data    []map[string]any `json:"data"`
}
