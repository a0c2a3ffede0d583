package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"stockintel/internal/feature/marketdata/adapters/yahoo/dto"
	"stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/marketdata/usecase"
)

// YahooMarket fetches daily bars from the Yahoo Finance chart API.
type YahooMarket struct {
	cfg    Config
	client *http.Client
}

// Compile-time check that YahooMarket implements MarketRepository.
var _ usecase.MarketRepository = (*YahooMarket)(nil)

// NewYahooMarket creates a YahooMarket with the given config. A nil
// client gets a default one with the configured timeout.
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &YahooMarket{cfg: cfg, client: client}
}

// GetDailyBars fetches the daily bar series for symbol over the given
// period (Yahoo range syntax: "1y", "2y", ...), sorted ascending by
// date. Null bars (holidays, halts) are skipped.
func (y *YahooMarket) GetDailyBars(ctx context.Context, symbol, period string) ([]entity.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		y.cfg.BaseURL, url.PathEscape(symbol), url.QueryEscape(period))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	res, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := body.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]entity.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo emits nulls for holidays and halts, and truncated
		// payloads can leave the quote arrays shorter than the
		// timestamp list. Skip any row missing a price field so a
		// malformed payload degrades to fewer bars, never a panic.
		open, okO := at(quote.Open, i)
		high, okH := at(quote.High, i)
		low, okL := at(quote.Low, i)
		cls, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		var vol int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		bars = append(bars, entity.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: vol,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func at(vals []*float64, i int) (float64, bool) {
	if i < len(vals) && vals[i] != nil {
		return *vals[i], true
	}
	return 0, false
}
