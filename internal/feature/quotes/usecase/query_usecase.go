// Package usecase implements the read-only query engine over the
// persisted metric rows.
package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"stockintel/internal/feature/marketdata/domain"
	marketentity "stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/quotes/domain/entity"
)

// summaryWindow approximates 52 weeks in trading days.
const summaryWindow = 252

// SeriesRepository is the read side of the persistence layer.
// Following Go convention: interfaces are defined by the consumer
// (usecase), not the provider (adapters).
type SeriesRepository interface {
	// DistinctSymbols returns the stored symbols ascending, deduplicated.
	DistinctSymbols(ctx context.Context) ([]string, error)
	// FindRecent returns the most recent limit rows for a symbol in
	// ascending date order. An unknown symbol yields an empty slice.
	FindRecent(ctx context.Context, symbol string, limit int) ([]marketentity.MetricRow, error)
	// HasSchema reports whether the store has been initialized.
	HasSchema(ctx context.Context) (bool, error)
}

// QueryConfig tunes the query engine.
type QueryConfig struct {
	// PositionalPairing pairs comparison rows by index instead of by
	// matching date. Legacy-compatibility mode: it silently misaligns
	// dates when the two symbols' trading calendars differ.
	PositionalPairing bool
}

// QueryUsecase serves symbol listing, windowed retrieval, 52-week
// summaries, and two-symbol normalized comparison. It never mutates
// the store.
type QueryUsecase struct {
	series SeriesRepository
	cfg    QueryConfig
}

// NewQueryUsecase creates a QueryUsecase.
func NewQueryUsecase(series SeriesRepository, cfg QueryConfig) *QueryUsecase {
	return &QueryUsecase{series: series, cfg: cfg}
}

// checkStore returns ErrStoreUninitialized before the first ingest.
func (qu *QueryUsecase) checkStore(ctx context.Context) error {
	ok, err := qu.series.HasSchema(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrStoreUninitialized
	}
	return nil
}

// ListSymbols returns every stored symbol, ascending, deduplicated.
func (qu *QueryUsecase) ListSymbols(ctx context.Context) ([]string, error) {
	if err := qu.checkStore(ctx); err != nil {
		return nil, err
	}
	return qu.series.DistinctSymbols(ctx)
}

// GetSeries returns the most recent limit rows for the symbol in
// ascending date order. An absent symbol yields an empty slice; the
// transport layer decides whether that is an error.
func (qu *QueryUsecase) GetSeries(ctx context.Context, symbol string, limit int) ([]marketentity.MetricRow, error) {
	if err := qu.checkStore(ctx); err != nil {
		return nil, err
	}
	return qu.series.FindRecent(ctx, symbol, limit)
}

// GetSummary computes the 52-week summary over the most recent
// min(252, available) rows. A symbol with no rows yields (nil, nil).
func (qu *QueryUsecase) GetSummary(ctx context.Context, symbol string) (*entity.Summary, error) {
	if err := qu.checkStore(ctx); err != nil {
		return nil, err
	}
	rows, err := qu.series.FindRecent(ctx, symbol, summaryWindow)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	s := entity.Summary{
		High52w: math.Inf(-1),
		Low52w:  math.Inf(1),
	}
	var closeSum float64
	for _, r := range rows {
		s.High52w = math.Max(s.High52w, r.High)
		s.Low52w = math.Min(s.Low52w, r.Low)
		closeSum += r.Close
	}
	s.AvgClose = closeSum / float64(len(rows))
	return &s, nil
}

// Compare aligns two symbols over the last `days` days before their
// common most-recent date, each series normalized to 100 at its first
// compared row. By default rows are joined on matching dates; the
// legacy positional mode pairs by index instead.
func (qu *QueryUsecase) Compare(ctx context.Context, symbol1, symbol2 string, days int) ([]entity.ComparePoint, error) {
	if err := qu.checkStore(ctx); err != nil {
		return nil, err
	}

	series1, err := qu.series.FindRecent(ctx, symbol1, 2*days)
	if err != nil {
		return nil, err
	}
	series2, err := qu.series.FindRecent(ctx, symbol2, 2*days)
	if err != nil {
		return nil, err
	}

	var missing []string
	if len(series1) == 0 {
		missing = append(missing, symbol1)
	}
	if len(series2) == 0 {
		missing = append(missing, symbol2)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no data for %s", domain.ErrNotFound, strings.Join(missing, ", "))
	}

	// Series are ascending, so the last row holds each symbol's most
	// recent date. The window ends at the earlier of the two.
	commonEnd := series1[len(series1)-1].Date
	if end2 := series2[len(series2)-1].Date; end2.Before(commonEnd) {
		commonEnd = end2
	}
	start := commonEnd.AddDate(0, 0, -days)

	w1 := fromDate(series1, start)
	w2 := fromDate(series2, start)
	if len(w1) == 0 || len(w2) == 0 {
		return nil, domain.ErrInsufficientData
	}

	if qu.cfg.PositionalPairing {
		return pairByIndex(w1, w2), nil
	}
	points := joinByDate(w1, w2)
	if len(points) == 0 {
		// Windows overlap in time but share no trading dates.
		return nil, domain.ErrInsufficientData
	}
	return points, nil
}

// fromDate returns the suffix of an ascending series with date >= start.
func fromDate(rows []marketentity.MetricRow, start time.Time) []marketentity.MetricRow {
	for i, r := range rows {
		if !r.Date.Before(start) {
			return rows[i:]
		}
	}
	return nil
}

// joinByDate pairs rows on matching calendar dates. Each series is
// normalized against its close on the first shared date, so both
// normalized values open at 100.
func joinByDate(w1, w2 []marketentity.MetricRow) []entity.ComparePoint {
	byDate := make(map[string]float64, len(w2))
	for _, r := range w2 {
		byDate[r.Date.Format(marketentity.DateLayout)] = r.Close
	}

	var (
		out              []entity.ComparePoint
		anchor1, anchor2 float64
	)
	for _, r := range w1 {
		c2, ok := byDate[r.Date.Format(marketentity.DateLayout)]
		if !ok {
			continue
		}
		if out == nil {
			anchor1, anchor2 = r.Close, c2
		}
		out = append(out, entity.ComparePoint{
			Date:        r.Date,
			Normalized1: round2(r.Close / anchor1 * 100),
			Normalized2: round2(c2 / anchor2 * 100),
		})
	}
	return out
}

// pairByIndex is the legacy mode: rows pair positionally up to the
// shorter series, normalized against each window's first row, with
// dates taken from the first series.
func pairByIndex(w1, w2 []marketentity.MetricRow) []entity.ComparePoint {
	n := min(len(w1), len(w2))
	out := make([]entity.ComparePoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.ComparePoint{
			Date:        w1[i].Date,
			Normalized1: round2(w1[i].Close / w1[0].Close * 100),
			Normalized2: round2(w2[i].Close / w2[0].Close * 100),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
