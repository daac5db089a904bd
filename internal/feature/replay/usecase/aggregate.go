package usecase

import (
	"fmt"

	"sim_backend/internal/feature/replay/domain"
	"sim_backend/internal/feature/replay/domain/entity"
)

// Aggregate merges consecutive fine-interval candles into coarser candles.
// The fine series must be ascending; candles are partitioned into
// interval-aligned buckets of `factor` candles each. An interior bucket
// holding fewer than `factor` candles means the source has a gap and fails
// with ErrIncompleteAggregationWindow unless tolerateGaps is set; only the
// trailing bucket may legitimately be short.
//
// Per bucket: t/o come from the first candle, c from the last,
// h/l are the extremes and v is the sum. Pure function: identical input
// yields identical output.
func Aggregate(fine []entity.Candle, srcInterval entity.Interval, factor int, tolerateGaps bool) ([]entity.Candle, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidAggregationFactor, factor)
	}
	if len(fine) == 0 {
		return nil, nil
	}
	if factor == 1 {
		out := make([]entity.Candle, len(fine))
		copy(out, fine)
		return out, nil
	}

	bucketMs := srcInterval.Millis() * int64(factor)
	out := make([]entity.Candle, 0, len(fine)/factor+1)

	var cur entity.Candle
	var curBucket int64
	var curCount int

	flush := func(trailing bool) error {
		if curCount == 0 {
			return nil
		}
		if curCount < factor && !trailing && !tolerateGaps {
			return fmt.Errorf("%w: bucket at t=%d has %d of %d candles",
				domain.ErrIncompleteAggregationWindow, cur.Time, curCount, factor)
		}
		out = append(out, cur)
		curCount = 0
		return nil
	}

	for _, c := range fine {
		bucket := c.Time / bucketMs
		if curCount > 0 && bucket != curBucket {
			if err := flush(false); err != nil {
				return nil, err
			}
		}
		if curCount == 0 {
			cur = c
			curBucket = bucket
			curCount = 1
			continue
		}
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
		curCount++
	}
	if err := flush(true); err != nil {
		return nil, err
	}
	return out, nil
}
