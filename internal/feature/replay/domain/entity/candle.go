// Package entity defines the domain models for the replay feature.
package entity

// Candle represents one OHLCV (Open, High, Low, Close, Volume) price bar.
// Time is the bucket start in epoch milliseconds UTC, matching the layout
// of the simulation data files.
type Candle struct {
	Time   int64   `json:"t"` // Bucket start, epoch milliseconds UTC
	Open   float64 `json:"o"` // Opening price
	High   float64 `json:"h"` // Highest price during this bucket
	Low    float64 `json:"l"` // Lowest price during this bucket
	Close  float64 `json:"c"` // Closing price
	Volume float64 `json:"v"` // Traded volume
}

// Series is an ordered candle sequence for one ticker and interval,
// timestamps strictly ascending, one candle per bucket.
// SkippedRows counts source rows dropped because their time field
// failed to parse; the skip is reported, never silent.
type Series struct {
	Ticker      string
	Interval    Interval
	Candles     []Candle
	SkippedRows int
}

// LoadResult is the outcome of assembling a replay session:
// a warm-up history buffer and the session's simulation queue.
// HistoryBuffer ends strictly before the first queue candle.
type LoadResult struct {
	Ticker          string
	Date            string // exchange-local calendar date, "YYYY-MM-DD"
	Interval        Interval
	SourceInterval  Interval
	WasAggregated   bool
	HistoryBuffer   []Candle
	SimulationQueue []Candle
	HistoryCount    int
	SimulationCount int
	TotalCandles    int
	SkippedRows     int
}
