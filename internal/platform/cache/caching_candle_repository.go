package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"sim_backend/internal/feature/replay/domain/entity"
)

// CandleReader is the slice of the store the decorator wraps.
type CandleReader interface {
	ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error)
	ListIntervals(ctx context.Context, ticker string) ([]entity.Interval, error)
}

// CachingCandleRepository decorates a candle store with Redis caching of
// whole series reads. It is transparent: a nil client, a miss or any Redis
// failure falls through to the inner store, and cache writes are best
// effort. This sits beneath the in-memory warm-up cache and spares the
// multi-file disk scan across processes.
type CachingCandleRepository struct {
	inner     CandleReader
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingCandleRepository decorates a candle store with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "series".
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner CandleReader, namespace string) *CachingCandleRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "series"
	}
	return &CachingCandleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ReadSeries retrieves a series, checking Redis first then falling back to
// the inner store.
func (c *CachingCandleRepository) ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error) {
	if c.rdb == nil {
		return c.inner.ReadSeries(ctx, ticker, interval)
	}

	key := c.cacheKey(ticker, interval)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Series
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := c.inner.ReadSeries(ctx, ticker, interval)
	if err != nil {
		return entity.Series{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// ListIntervals passes through to the inner store; the listing is a cheap
// directory/index scan and not worth a cache entry.
func (c *CachingCandleRepository) ListIntervals(ctx context.Context, ticker string) ([]entity.Interval, error) {
	return c.inner.ListIntervals(ctx, ticker)
}

// InvalidateTicker deletes the cached series of one ticker across all
// intervals, best effort.
func (c *CachingCandleRepository) InvalidateTicker(ctx context.Context, ticker string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.keyPrefix(ticker)+"*")
}

func (c *CachingCandleRepository) cacheKey(ticker string, interval entity.Interval) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(ticker), safe(string(interval)))
}

func (c *CachingCandleRepository) keyPrefix(ticker string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(ticker))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
