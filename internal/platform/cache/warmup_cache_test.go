package cache

import (
	"fmt"
	"testing"
	"time"

	"sim_backend/internal/feature/replay/domain/entity"
)

func sampleValue(n int) WarmupValue {
	candles := make([]entity.Candle, 0, n)
	for i := 0; i < n; i++ {
		candles = append(candles, entity.Candle{Time: int64(i) * 60_000, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10})
	}
	return WarmupValue{Candles: candles, SourceInterval: entity.Interval1m}
}

// fakeClock は手動で進められるテスト用クロックです。
type fakeClock struct {
	now time.Time
}

func (fc *fakeClock) Now() time.Time { return fc.now }

func (fc *fakeClock) Advance(d time.Duration) { fc.now = fc.now.Add(d) }

func newTestCache(maxEntries int, ttl time.Duration) (*WarmupCache, *fakeClock) {
	wc := NewWarmupCache(maxEntries, ttl)
	fc := &fakeClock{now: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
	wc.now = fc.Now
	return wc, fc
}

func TestWarmupCache_HitAndMiss(t *testing.T) {
	wc, _ := newTestCache(10, 5*time.Minute)

	if _, ok := wc.Get("ADRO", entity.Interval1m); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	wc.Set("ADRO", entity.Interval1m, sampleValue(5))
	got, ok := wc.Get("ADRO", entity.Interval1m)
	if !ok {
		t.Fatal("expected a hit immediately after Set")
	}
	if len(got.Candles) != 5 {
		t.Errorf("expected 5 candles, got %d", len(got.Candles))
	}

	stats := wc.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 50.0 {
		t.Errorf("expected hitRate 50.0, got %v", stats.HitRate)
	}
}

// TestWarmupCache_TTLExpiry はTTL経過後の読み取りがミスになり、
// 遅延削除がエビクションとして数えられることをテストします。
func TestWarmupCache_TTLExpiry(t *testing.T) {
	wc, fc := newTestCache(10, 5*time.Minute)

	wc.Set("ADRO", entity.Interval1m, sampleValue(3))
	fc.Advance(5*time.Minute + time.Second)

	if _, ok := wc.Get("ADRO", entity.Interval1m); ok {
		t.Fatal("expected a miss after the TTL elapsed")
	}
	stats := wc.Stats()
	if stats.Evictions != 1 {
		t.Errorf("lazy expiry must count as an eviction, got %d", stats.Evictions)
	}
	if stats.Misses != 1 {
		t.Errorf("expired read must count as a miss, got %d", stats.Misses)
	}
	if stats.Size != 0 {
		t.Errorf("expired entry must be removed, size=%d", stats.Size)
	}
}

// TestWarmupCache_CapacityEviction は11個目のキー挿入時に、挿入時刻が
// 最も古いエントリだけが追い出されることをテストします。
func TestWarmupCache_CapacityEviction(t *testing.T) {
	wc, fc := newTestCache(10, time.Hour)

	for i := 0; i < 10; i++ {
		wc.Set(fmt.Sprintf("T%02d", i), entity.Interval1m, sampleValue(1))
		fc.Advance(time.Second)
	}

	wc.Set("T10", entity.Interval1m, sampleValue(1))

	if _, ok := wc.Get("T00", entity.Interval1m); ok {
		t.Error("oldest entry T00 should have been evicted")
	}
	for i := 1; i <= 10; i++ {
		if _, ok := wc.Get(fmt.Sprintf("T%02d", i), entity.Interval1m); !ok {
			t.Errorf("entry T%02d should still be cached", i)
		}
	}
	if stats := wc.Stats(); stats.Evictions != 1 || stats.Size != 10 {
		t.Errorf("expected 1 eviction and size 10, got %d / %d", stats.Evictions, stats.Size)
	}
}

func TestWarmupCache_ReplaceDoesNotEvict(t *testing.T) {
	wc, fc := newTestCache(2, time.Hour)

	wc.Set("A", entity.Interval1m, sampleValue(1))
	fc.Advance(time.Second)
	wc.Set("B", entity.Interval1m, sampleValue(1))
	fc.Advance(time.Second)

	// 既存キーの置き換えは満杯でもエビクションしない
	wc.Set("A", entity.Interval1m, sampleValue(2))
	if stats := wc.Stats(); stats.Evictions != 0 || stats.Size != 2 {
		t.Errorf("replace must not evict, got evictions=%d size=%d", stats.Evictions, stats.Size)
	}
}

func TestWarmupCache_Invalidate(t *testing.T) {
	wc, _ := newTestCache(10, time.Hour)

	wc.Set("ADRO", entity.Interval1m, sampleValue(1))
	wc.Set("ADRO", entity.Interval5m, sampleValue(1))
	wc.Set("BBCA.JK", entity.Interval1m, sampleValue(1))

	wc.Invalidate("ADRO")

	if _, ok := wc.Get("ADRO", entity.Interval1m); ok {
		t.Error("ADRO:1m should be invalidated")
	}
	if _, ok := wc.Get("ADRO", entity.Interval5m); ok {
		t.Error("ADRO:5m should be invalidated")
	}
	if _, ok := wc.Get("BBCA.JK", entity.Interval1m); !ok {
		t.Error("BBCA.JK:1m should survive a per-ticker invalidation")
	}

	wc.InvalidateAll()
	if stats := wc.Stats(); stats.Size != 0 {
		t.Errorf("expected empty cache after InvalidateAll, size=%d", stats.Size)
	}
}

func TestWarmupCache_StatsHitRateRounding(t *testing.T) {
	wc, _ := newTestCache(10, time.Hour)

	if rate := wc.Stats().HitRate; rate != 0 {
		t.Errorf("hitRate with no requests must be 0, got %v", rate)
	}

	wc.Set("A", entity.Interval1m, sampleValue(1))
	wc.Get("A", entity.Interval1m) // hit
	wc.Get("B", entity.Interval1m) // miss
	wc.Get("C", entity.Interval1m) // miss

	// 1/3 = 33.333...% → 33.3
	if rate := wc.Stats().HitRate; rate != 33.3 {
		t.Errorf("expected hitRate 33.3, got %v", rate)
	}
}

// TestWarmupCache_CopySemantics は取得したスライスを変更しても
// キャッシュ内部が汚染されないことをテストします。
func TestWarmupCache_CopySemantics(t *testing.T) {
	wc, _ := newTestCache(10, time.Hour)

	original := sampleValue(2)
	wc.Set("A", entity.Interval1m, original)

	got, _ := wc.Get("A", entity.Interval1m)
	got.Candles[0].Open = 999

	again, _ := wc.Get("A", entity.Interval1m)
	if again.Candles[0].Open == 999 {
		t.Error("mutating a returned slice must not affect the cached entry")
	}

	// Set後に呼び出し元のスライスを変更しても影響しない
	original.Candles[1].Close = -1
	again, _ = wc.Get("A", entity.Interval1m)
	if again.Candles[1].Close == -1 {
		t.Error("mutating the caller's slice after Set must not affect the cached entry")
	}
}
