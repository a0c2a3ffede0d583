// Package usecase implements the market data ingest pipeline:
// fetch raw bars, derive metrics, persist.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stockintel/internal/feature/marketdata/domain"
	"stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/marketdata/metrics"
	"stockintel/internal/shared/ratelimiter"
)

const maxFetchAttempts = 3

// MarketRepository abstracts the upstream market data provider.
// Following Go convention: interfaces are defined by the consumer
// (usecase), not the provider (adapters).
type MarketRepository interface {
	GetDailyBars(ctx context.Context, symbol, period string) ([]entity.Bar, error)
}

// MetricStore is the write side of the persistence layer.
type MetricStore interface {
	// AppendBatch bulk-inserts rows, replacing on (symbol, date) conflict.
	AppendBatch(ctx context.Context, rows []entity.MetricRow) error
	// Clear deletes all rows for the symbol.
	Clear(ctx context.Context, symbol string) error
}

// FallbackGenerator produces a deterministic synthetic bar series when
// the upstream provider is exhausted.
type FallbackGenerator interface {
	Generate(symbol string, days int) []entity.Bar
}

// IngestConfig tunes the pipeline.
type IngestConfig struct {
	// Period is the upstream fetch range ("2y", "1y", ...).
	Period string
	// RetryUnit is the backoff unit between fetch attempts; the sleep
	// before retry n (1-based) is n*RetryUnit, so 2s/4s by default.
	RetryUnit time.Duration
	// Replace clears a symbol's rows before appending. The store's
	// (symbol, date) upsert already prevents duplicates either way.
	Replace bool
}

// IngestUsecase fetches bars for each symbol, derives metric rows, and
// persists them. A nil fallback disables synthetic data, in which case
// an exhausted upstream yields ErrDataUnavailable.
type IngestUsecase struct {
	market      MarketRepository
	store       MetricStore
	fallback    FallbackGenerator
	rateLimiter ratelimiter.RateLimiterInterface
	cfg         IngestConfig
}

// NewIngestUsecase creates an IngestUsecase. Zero-valued config fields
// get defaults (period "2y", retry unit 2s).
func NewIngestUsecase(market MarketRepository, store MetricStore, fallback FallbackGenerator,
	rl ratelimiter.RateLimiterInterface, cfg IngestConfig) *IngestUsecase {
	if cfg.Period == "" {
		cfg.Period = "2y"
	}
	if cfg.RetryUnit <= 0 {
		cfg.RetryUnit = 2 * time.Second
	}
	if rl == nil {
		rl = ratelimiter.Noop{}
	}
	return &IngestUsecase{market: market, store: store, fallback: fallback, rateLimiter: rl, cfg: cfg}
}

// daysForPeriod maps the fetch period to the synthetic series length.
func daysForPeriod(period string) int {
	switch period {
	case "2y":
		return 500
	case "1y":
		return 365
	default:
		return 250
	}
}

// fetchWithRetry tries the upstream up to maxFetchAttempts times,
// sleeping 1*RetryUnit, then 2*RetryUnit between attempts. A non-empty
// result ends the loop. When every attempt fails or comes back empty,
// the synthetic fallback takes over if enabled.
func (iu *IngestUsecase) fetchWithRetry(ctx context.Context, symbol string) ([]entity.Bar, error) {
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		bars, err := iu.market.GetDailyBars(ctx, symbol, iu.cfg.Period)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
		slog.Warn("upstream fetch failed",
			"symbol", symbol, "attempt", attempt+1, "max", maxFetchAttempts, "error", err)

		if attempt < maxFetchAttempts-1 {
			wait := time.Duration(attempt+1) * iu.cfg.RetryUnit
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	if iu.fallback == nil {
		return nil, fmt.Errorf("%w: %s after %d attempts", domain.ErrDataUnavailable, symbol, maxFetchAttempts)
	}
	slog.Warn("generating synthetic fallback series", "symbol", symbol, "period", iu.cfg.Period)
	return iu.fallback.Generate(symbol, daysForPeriod(iu.cfg.Period)), nil
}

// IngestOne runs the full pipeline for a single symbol.
func (iu *IngestUsecase) IngestOne(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(symbol)

	bars, err := iu.fetchWithRetry(ctx, symbol)
	if err != nil {
		return err
	}
	for i := range bars {
		bars[i].Symbol = symbol
	}

	rows := metrics.Derive(bars)

	if iu.cfg.Replace {
		if err := iu.store.Clear(ctx, symbol); err != nil {
			return fmt.Errorf("clear %s: %w", symbol, err)
		}
	}
	if err := iu.store.AppendBatch(ctx, rows); err != nil {
		return fmt.Errorf("append %s: %w", symbol, err)
	}

	slog.Info("ingested symbol", "symbol", symbol, "rows", len(rows))
	return nil
}

// IngestAll runs the pipeline for every symbol. A failure on one symbol
// is logged and does not abort the rest; the store keeps whatever the
// failed append left behind (no rollback).
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	for _, s := range symbols {
		iu.rateLimiter.WaitIfNeeded()
		if err := iu.IngestOne(ctx, s); err != nil {
			slog.Error("failed to ingest symbol", "symbol", s, "error", err)
			continue
		}
	}
	return nil
}
