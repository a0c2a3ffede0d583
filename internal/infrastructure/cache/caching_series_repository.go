// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/quotes/usecase"
)

// CachingSeriesRepository decorates a SeriesRepository with Redis
// caching. The write path runs in a separate process, so entries are
// invalidated by TTL rather than on write; TimeUntilNextHour aligns the
// TTL with the nightly ingest.
type CachingSeriesRepository struct {
	inner     usecase.SeriesRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.SeriesRepository = (*CachingSeriesRepository)(nil)

// NewCachingSeriesRepository decorates a SeriesRepository with Redis
// caching. If ttl is 0, it defaults to 5 minutes. If namespace is
// empty, it uses "series". A nil client disables caching entirely.
func NewCachingSeriesRepository(rdb *redis.Client, ttl time.Duration, inner usecase.SeriesRepository, namespace string) *CachingSeriesRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "series"
	}
	return &CachingSeriesRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindRecent retrieves rows, checking the cache first and falling back
// to the database.
func (c *CachingSeriesRepository) FindRecent(ctx context.Context, symbol string, limit int) ([]entity.MetricRow, error) {
	if c.rdb == nil {
		return c.inner.FindRecent(ctx, symbol, limit)
	}

	key := fmt.Sprintf("%s:%s:%d", c.namespace, safe(symbol), limit)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.MetricRow
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry.
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindRecent(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	// Store in cache (best effort).
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// DistinctSymbols retrieves the symbol list with the same cache-aside
// strategy as FindRecent.
func (c *CachingSeriesRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	if c.rdb == nil {
		return c.inner.DistinctSymbols(ctx)
	}

	key := c.namespace + ":symbols"

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []string
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.DistinctSymbols(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// HasSchema is never cached: a stale false would keep the API reporting
// an uninitialized store after the first ingest.
func (c *CachingSeriesRepository) HasSchema(ctx context.Context) (bool, error) {
	return c.inner.HasSchema(ctx)
}

// safe keeps cache keys free of the namespace separator.
func safe(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
