// Package cache provides caching implementations for the replay core:
// an in-memory warm-up buffer cache and a Redis decorator for the
// candle store.
package cache

import (
	"math"
	"strings"
	"sync"
	"time"

	"sim_backend/internal/feature/replay/domain/entity"
)

const (
	// DefaultWarmupCacheSize is the maximum number of cached series.
	DefaultWarmupCacheSize = 10
	// DefaultWarmupCacheTTL is the lifetime of an entry from insertion.
	DefaultWarmupCacheTTL = 5 * time.Minute
)

// WarmupValue is the cached payload for one ticker:interval key — the
// fully assembled candle series plus how it was produced, so a cache hit
// can rebuild a LoadResult without re-reading the store.
type WarmupValue struct {
	Candles        []entity.Candle
	SourceInterval entity.Interval
	WasAggregated  bool
	SkippedRows    int
}

// WarmupStats is a point-in-time snapshot of cache effectiveness counters.
type WarmupStats struct {
	Hits      int     `json:"hits"`
	Misses    int     `json:"misses"`
	Evictions int     `json:"evictions"`
	Size      int     `json:"size"`
	HitRate   float64 `json:"hitRate"` // percentage, one decimal
}

type warmupEntry struct {
	value      WarmupValue
	insertedAt time.Time
}

// WarmupCache is a bounded, TTL-based in-memory cache for assembled
// warm-up series, keyed by "TICKER:interval". Expiry is lazy (checked on
// read); capacity overflow evicts the entry with the oldest insertion
// time. All methods are safe for concurrent use.
type WarmupCache struct {
	mu         sync.Mutex
	entries    map[string]warmupEntry
	maxEntries int
	ttl        time.Duration

	hits      int
	misses    int
	evictions int

	now func() time.Time // injectable clock for tests
}

// NewWarmupCache はWarmupCacheを生成します。
// maxEntries や ttl が0以下の場合はデフォルト値（10件、5分）を使用します。
func NewWarmupCache(maxEntries int, ttl time.Duration) *WarmupCache {
	if maxEntries <= 0 {
		maxEntries = DefaultWarmupCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultWarmupCacheTTL
	}
	return &WarmupCache{
		entries:    make(map[string]warmupEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func warmupKey(ticker string, interval entity.Interval) string {
	return ticker + ":" + string(interval)
}

// Get returns the cached series for ticker:interval. A present-but-expired
// entry is evicted as a side effect and counted as an eviction plus a miss.
// The returned candle slice is a copy; mutating it never affects the cache.
func (wc *WarmupCache) Get(ticker string, interval entity.Interval) (WarmupValue, bool) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	key := warmupKey(ticker, interval)
	e, ok := wc.entries[key]
	if !ok {
		wc.misses++
		return WarmupValue{}, false
	}
	if wc.now().Sub(e.insertedAt) >= wc.ttl {
		delete(wc.entries, key)
		wc.evictions++
		wc.misses++
		return WarmupValue{}, false
	}
	wc.hits++
	return copyValue(e.value), true
}

// Set inserts or replaces the series for ticker:interval. Inserting a new
// key at capacity first evicts the entry with the oldest insertion time.
func (wc *WarmupCache) Set(ticker string, interval entity.Interval, value WarmupValue) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	key := warmupKey(ticker, interval)
	if _, exists := wc.entries[key]; !exists && len(wc.entries) >= wc.maxEntries {
		wc.evictOldestLocked()
	}
	wc.entries[key] = warmupEntry{value: copyValue(value), insertedAt: wc.now()}
}

// Invalidate clears entries for one ticker across all intervals.
func (wc *WarmupCache) Invalidate(ticker string) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	for key := range wc.entries {
		if strings.HasPrefix(key, ticker+":") {
			delete(wc.entries, key)
		}
	}
}

// InvalidateAll clears every entry.
func (wc *WarmupCache) InvalidateAll() {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.entries = make(map[string]warmupEntry)
}

// Stats returns the current counters. HitRate is hits/(hits+misses)*100
// rounded to one decimal, 0 when there have been no requests.
func (wc *WarmupCache) Stats() WarmupStats {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	total := wc.hits + wc.misses
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(wc.hits)/float64(total)*1000) / 10
	}
	return WarmupStats{
		Hits:      wc.hits,
		Misses:    wc.misses,
		Evictions: wc.evictions,
		Size:      len(wc.entries),
		HitRate:   rate,
	}
}

func (wc *WarmupCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range wc.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
			first = false
		}
	}
	if !first {
		delete(wc.entries, oldestKey)
		wc.evictions++
	}
}

func copyValue(v WarmupValue) WarmupValue {
	out := v
	out.Candles = make([]entity.Candle, len(v.Candles))
	copy(out.Candles, v.Candles)
	return out
}
