// Package usecase はリプレイ（ローソク足再生）機能のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"sim_backend/internal/feature/replay/domain"
	"sim_backend/internal/feature/replay/domain/entity"
	"sim_backend/internal/platform/cache"
)

const (
	// MaxWarmupCount はウォームアップバッファの最大件数です。
	MaxWarmupCount = 5000
)

// CandleRepository はローソク足データの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// ReadSeries returns the full ordered series for ticker+interval,
	// timestamps normalized to epoch-ms UTC. domain.ErrNotFound when the
	// series does not exist.
	ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error)
	// ListIntervals reports which interval series exist for the ticker.
	ListIntervals(ctx context.Context, ticker string) ([]entity.Interval, error)
}

// WarmupBufferCache memoizes assembled series per ticker:interval.
type WarmupBufferCache interface {
	Get(ticker string, interval entity.Interval) (cache.WarmupValue, bool)
	Set(ticker string, interval entity.Interval, value cache.WarmupValue)
}

// LoaderUsecase resolves a (ticker, date, interval, warmupCount) request
// into a warm-up history buffer and a forward-playing simulation queue,
// aggregating from a finer source interval when the exact one is missing.
type LoaderUsecase struct {
	store CandleRepository
	cache WarmupBufferCache
	clock *SessionClock
	group singleflight.Group
}

// NewLoaderUsecase はLoaderUsecaseの新しいインスタンスを生成します。
// キャッシュはプロセス全体で共有されるため、シングルトンではなく明示的に注入します。
func NewLoaderUsecase(store CandleRepository, warmupCache WarmupBufferCache, clock *SessionClock) *LoaderUsecase {
	return &LoaderUsecase{store: store, cache: warmupCache, clock: clock}
}

// Load は指定された銘柄・日付・時間足のリプレイ用データを組み立てます。
// 同一 ticker:interval キーへの並行呼び出しは1つの計算に合流します。
func (lu *LoaderUsecase) Load(ctx context.Context, ticker, date string, interval entity.Interval, warmupCount int) (entity.LoadResult, error) {
	if err := ValidateDate(date); err != nil {
		return entity.LoadResult{}, err
	}
	if warmupCount < 0 {
		warmupCount = 0
	}
	if warmupCount > MaxWarmupCount {
		warmupCount = MaxWarmupCount
	}

	value, err := lu.series(ctx, ticker, date, interval)
	if err != nil {
		return entity.LoadResult{}, err
	}

	history, queue := lu.partition(value.Candles, date, warmupCount)
	if len(queue) == 0 {
		// Cached series may predate this date; reassemble once before
		// concluding there is no session data.
		value, err = lu.refresh(ctx, ticker, date, interval)
		if err != nil {
			return entity.LoadResult{}, err
		}
		history, queue = lu.partition(value.Candles, date, warmupCount)
		if len(queue) == 0 {
			return entity.LoadResult{}, fmt.Errorf("%w: %s %s %s", domain.ErrNotFound, ticker, date, interval)
		}
	}

	return entity.LoadResult{
		Ticker:          ticker,
		Date:            date,
		Interval:        interval,
		SourceInterval:  value.SourceInterval,
		WasAggregated:   value.WasAggregated,
		HistoryBuffer:   history,
		SimulationQueue: queue,
		HistoryCount:    len(history),
		SimulationCount: len(queue),
		TotalCandles:    len(history) + len(queue),
		SkippedRows:     value.SkippedRows,
	}, nil
}

// series returns the assembled full series for ticker:interval, consulting
// the cache first. The singleflight group guarantees a single in-flight
// computation per key; the cache is only written on complete success.
func (lu *LoaderUsecase) series(ctx context.Context, ticker, date string, interval entity.Interval) (cache.WarmupValue, error) {
	key := ticker + ":" + string(interval)
	v, err, _ := lu.group.Do(key, func() (any, error) {
		if cached, ok := lu.cache.Get(ticker, interval); ok {
			return cached, nil
		}
		value, err := lu.assemble(ctx, ticker, date, interval)
		if err != nil {
			return nil, err
		}
		lu.cache.Set(ticker, interval, value)
		return value, nil
	})
	if err != nil {
		return cache.WarmupValue{}, err
	}
	return v.(cache.WarmupValue), nil
}

// refresh bypasses the cached value and reassembles for the given date.
func (lu *LoaderUsecase) refresh(ctx context.Context, ticker, date string, interval entity.Interval) (cache.WarmupValue, error) {
	key := ticker + ":" + string(interval) + ":refresh"
	v, err, _ := lu.group.Do(key, func() (any, error) {
		value, err := lu.assemble(ctx, ticker, date, interval)
		if err != nil {
			return nil, err
		}
		lu.cache.Set(ticker, interval, value)
		return value, nil
	})
	if err != nil {
		return cache.WarmupValue{}, err
	}
	return v.(cache.WarmupValue), nil
}

// assemble reads the exact interval when it covers the requested date, and
// otherwise aggregates from the available finer interval that divides the
// target with the smallest factor (least data read).
func (lu *LoaderUsecase) assemble(ctx context.Context, ticker, date string, target entity.Interval) (cache.WarmupValue, error) {
	exact, err := lu.store.ReadSeries(ctx, ticker, target)
	if err == nil && lu.coversDate(exact.Candles, date) {
		return cache.WarmupValue{
			Candles:        exact.Candles,
			SourceInterval: target,
			WasAggregated:  false,
			SkippedRows:    exact.SkippedRows,
		}, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return cache.WarmupValue{}, err
	}

	available, err := lu.store.ListIntervals(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return cache.WarmupValue{}, fmt.Errorf("%w: %s", domain.ErrNotFound, ticker)
		}
		return cache.WarmupValue{}, err
	}

	for _, src := range divisorsByFactor(available, target) {
		fine, err := lu.store.ReadSeries(ctx, ticker, src)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return cache.WarmupValue{}, err
		}
		if !lu.coversDate(fine.Candles, date) {
			continue
		}
		factor, _ := src.FactorTo(target)
		// Intraday files of illiquid names have gaps; tolerate them here
		// rather than failing the whole load.
		coarse, err := Aggregate(fine.Candles, src, factor, true)
		if err != nil {
			return cache.WarmupValue{}, err
		}
		slog.Info("aggregated replay series",
			"ticker", ticker, "source", src, "target", target, "factor", factor,
			"fine", len(fine.Candles), "coarse", len(coarse))
		return cache.WarmupValue{
			Candles:        coarse,
			SourceInterval: src,
			WasAggregated:  true,
			SkippedRows:    fine.SkippedRows,
		}, nil
	}

	return cache.WarmupValue{}, fmt.Errorf("%w: %s %s %s", domain.ErrNotFound, ticker, date, target)
}

// partition splits the contiguous series into the in-session simulation
// queue for the date and the warm-up history immediately preceding it.
// The backward scan is a simple index walk, so insufficient same-day
// history naturally spills into prior calendar dates.
func (lu *LoaderUsecase) partition(candles []entity.Candle, date string, warmupCount int) (history, queue []entity.Candle) {
	firstIdx := -1
	for i, c := range candles {
		if lu.clock.InSession(c.Time, date) {
			if firstIdx < 0 {
				firstIdx = i
			}
			queue = append(queue, c)
		}
	}
	if firstIdx < 0 {
		return nil, nil
	}
	start := firstIdx - warmupCount
	if start < 0 {
		start = 0
	}
	history = append(history, candles[start:firstIdx]...)
	return history, queue
}

// coversDate reports whether the series has at least one in-session candle
// on the requested exchange-local date.
func (lu *LoaderUsecase) coversDate(candles []entity.Candle, date string) bool {
	for _, c := range candles {
		if lu.clock.InSession(c.Time, date) {
			return true
		}
	}
	return false
}

// divisorsByFactor returns the available intervals that are strictly finer
// than target and divide it evenly, ordered by ascending aggregation factor.
func divisorsByFactor(available []entity.Interval, target entity.Interval) []entity.Interval {
	type candidate struct {
		interval entity.Interval
		factor   int
	}
	var cands []candidate
	for _, iv := range available {
		if factor, ok := iv.FactorTo(target); ok {
			cands = append(cands, candidate{iv, factor})
		}
	}
	out := make([]entity.Interval, 0, len(cands))
	for len(cands) > 0 {
		best := 0
		for i := 1; i < len(cands); i++ {
			if cands[i].factor < cands[best].factor {
				best = i
			}
		}
		out = append(out, cands[best].interval)
		cands = append(cands[:best], cands[best+1:]...)
	}
	return out
}
