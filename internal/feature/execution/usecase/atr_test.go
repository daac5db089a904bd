package usecase

import (
	"testing"

	replayentity "sim_backend/internal/feature/replay/domain/entity"
)

func flatCandles(n int, high, low, close float64) []replayentity.Candle {
	out := make([]replayentity.Candle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, replayentity.Candle{
			Time:  int64(i) * 60_000,
			Open:  close,
			High:  high,
			Low:   low,
			Close: close,
		})
	}
	return out
}

func TestATR(t *testing.T) {
	tests := []struct {
		name     string
		candles  []replayentity.Candle
		period   int
		expected float64
	}{
		{
			name:     "no candles",
			candles:  nil,
			period:   14,
			expected: 0,
		},
		{
			// 期間に満たない場合は最後の足のh-lにフォールバック
			name:     "single candle falls back to high minus low",
			candles:  []replayentity.Candle{{High: 10, Low: 8, Close: 9}},
			period:   14,
			expected: 2,
		},
		{
			name:     "too few candles for the period",
			candles:  flatCandles(10, 105, 95, 100),
			period:   14,
			expected: 10,
		},
		{
			// h-l=10で一定、前日終値も範囲内なのでTR=10が続く
			name:     "constant range averages to the range",
			candles:  flatCandles(20, 105, 95, 100),
			period:   14,
			expected: 10,
		},
		{
			name:     "non-positive period uses the default",
			candles:  flatCandles(20, 105, 95, 100),
			period:   0,
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ATR(tt.candles, tt.period); !almostEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestATR_GapDominates は前日終値からのギャップがh-lより大きい場合に
// トゥルーレンジとして採用されることをテストします。
func TestATR_GapDominates(t *testing.T) {
	candles := []replayentity.Candle{
		{High: 101, Low: 99, Close: 100},
		// 前日終値100から110へギャップアップ: TR = |111-100| = 11
		{High: 111, Low: 109, Close: 110},
	}
	if got := ATR(candles, 1); !almostEqual(got, 11) {
		t.Errorf("expected 11, got %v", got)
	}
}

func TestATRPercent(t *testing.T) {
	candles := flatCandles(20, 105, 95, 100)
	// ATR=10、終値100 → 10%
	if got := ATRPercent(candles, 14); !almostEqual(got, 10) {
		t.Errorf("expected 10, got %v", got)
	}

	if got := ATRPercent(nil, 14); got != 0 {
		t.Errorf("expected 0 for empty candles, got %v", got)
	}

	zeroClose := []replayentity.Candle{{High: 10, Low: 8, Close: 0}}
	if got := ATRPercent(zeroClose, 14); got != 0 {
		t.Errorf("expected 0 when the last close is 0, got %v", got)
	}
}
