// Package dto mirrors the Yahoo Finance chart API response.
package dto

// ChartResponse is the envelope returned by /v8/finance/chart/{symbol}.
// Quote arrays use *float64 because Yahoo emits JSON nulls for holidays
// and halted sessions.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []Quote `json:"quote"`
	} `json:"indicators"`
}

type Quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
