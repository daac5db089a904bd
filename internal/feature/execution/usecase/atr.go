package usecase

import (
	"math"

	"github.com/montanaflynn/stats"

	replayentity "sim_backend/internal/feature/replay/domain/entity"
)

// DefaultATRPeriod は ATR 計算のデフォルト期間です。
const DefaultATRPeriod = 14

// ATR returns the Average True Range over the last `period` candles:
// true range = max(h-l, |h-prevClose|, |l-prevClose|), averaged with a
// simple mean. With fewer than period+1 candles there are not enough true
// ranges, so it falls back to the last candle's h-l span.
func ATR(candles []replayentity.Candle, period int) float64 {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period+1 {
		last := candles[len(candles)-1]
		return last.High - last.Low
	}

	trueRanges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	mean, err := stats.Mean(trueRanges[len(trueRanges)-period:])
	if err != nil {
		return 0
	}
	return mean
}

// ATRPercent expresses ATR relative to the last close, as a percentage.
// Returns 0 when the last close is 0 (no meaningful reference price).
func ATRPercent(candles []replayentity.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	lastClose := candles[len(candles)-1].Close
	if lastClose == 0 {
		return 0
	}
	return ATR(candles, period) / lastClose * 100
}
