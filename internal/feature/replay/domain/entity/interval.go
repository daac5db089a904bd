package entity

import "fmt"

// Interval is a candle bucket width. The set is fixed and ordered from
// finest to coarsest; a coarser interval can only be built from a finer
// one whose width divides it evenly.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
)

// Intervals lists all supported intervals, finest first.
var Intervals = []Interval{Interval1m, Interval5m, Interval15m, Interval30m, Interval1h}

var intervalMinutes = map[Interval]int{
	Interval1m:  1,
	Interval5m:  5,
	Interval15m: 15,
	Interval30m: 30,
	Interval1h:  60,
}

// ParseInterval は文字列を Interval に変換します。未知の値はエラーになります。
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if _, ok := intervalMinutes[iv]; !ok {
		return "", fmt.Errorf("unknown interval %q", s)
	}
	return iv, nil
}

// Minutes returns the bucket width in minutes.
func (iv Interval) Minutes() int {
	return intervalMinutes[iv]
}

// Millis returns the bucket width in milliseconds.
func (iv Interval) Millis() int64 {
	return int64(intervalMinutes[iv]) * 60 * 1000
}

// FactorTo returns target/iv as an integer aggregation factor and whether
// iv divides target evenly (and is strictly finer than it).
func (iv Interval) FactorTo(target Interval) (int, bool) {
	src := intervalMinutes[iv]
	dst := intervalMinutes[target]
	if src == 0 || dst == 0 || src >= dst || dst%src != 0 {
		return 0, false
	}
	return dst / src, true
}
