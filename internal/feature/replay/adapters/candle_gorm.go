// Package adapters provides storage implementations for the replay feature.
package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sim_backend/internal/feature/replay/domain"
	"sim_backend/internal/feature/replay/domain/entity"
)

type candleGorm struct {
	db *gorm.DB
}

// NewCandleRepository はgormベースのローソク足ストアを生成します。
func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

// CandleModel is the persisted candle row. Time is epoch milliseconds UTC,
// the same normalization the rest of the core expects.
type CandleModel struct {
	ID       uint   `gorm:"primaryKey"`
	Ticker   string `gorm:"size:32;not null;uniqueIndex:candle_tkr_int_time,priority:1"`
	Interval string `gorm:"size:8;not null;uniqueIndex:candle_tkr_int_time,priority:2"`
	Time     int64  `gorm:"not null;uniqueIndex:candle_tkr_int_time,priority:3"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume float64 `gorm:"not null;default:0"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(ticker string, interval entity.Interval, c entity.Candle) CandleModel {
	return CandleModel{
		Ticker:   ticker,
		Interval: string(interval),
		Time:     c.Time,
		Open:     c.Open,
		High:     c.High,
		Low:      c.Low,
		Close:    c.Close,
		Volume:   c.Volume,
	}
}

// UpsertBatch inserts or updates candles for one ticker+interval series.
func (r *candleGorm) UpsertBatch(ctx context.Context, ticker string, interval entity.Interval, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, c := range candles {
		ms = append(ms, toModel(ticker, interval, c))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "interval"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

// ReadSeries returns the full ascending series for ticker+interval.
func (r *candleGorm) ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error) {
	var rows []CandleModel
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND `interval` = ?", ticker, string(interval)).
		Order("`time` ASC").
		Find(&rows).Error
	if err != nil {
		return entity.Series{}, err
	}
	if len(rows) == 0 {
		return entity.Series{}, fmt.Errorf("%w: %s %s", domain.ErrNotFound, ticker, interval)
	}
	out := entity.Series{Ticker: ticker, Interval: interval, Candles: make([]entity.Candle, 0, len(rows))}
	for _, m := range rows {
		out.Candles = append(out.Candles, entity.Candle{
			Time:   m.Time,
			Open:   m.Open,
			High:   m.High,
			Low:    m.Low,
			Close:  m.Close,
			Volume: m.Volume,
		})
	}
	return out, nil
}

// ListIntervals reports which interval series exist for the ticker.
func (r *candleGorm) ListIntervals(ctx context.Context, ticker string) ([]entity.Interval, error) {
	var raw []string
	err := r.db.WithContext(ctx).Model(&CandleModel{}).
		Distinct("`interval`").
		Where("ticker = ?", ticker).
		Pluck("interval", &raw).Error
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ticker)
	}
	found := map[entity.Interval]bool{}
	for _, s := range raw {
		if iv, err := entity.ParseInterval(s); err == nil {
			found[iv] = true
		}
	}
	var out []entity.Interval
	for _, iv := range entity.Intervals {
		if found[iv] {
			out = append(out, iv)
		}
	}
	return out, nil
}

// List enumerates every stored ticker with its available intervals.
func (r *candleGorm) List(ctx context.Context) (map[string][]entity.Interval, error) {
	var rows []struct {
		Ticker   string
		Interval string
	}
	err := r.db.WithContext(ctx).Model(&CandleModel{}).
		Distinct("ticker", "`interval`").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	found := map[string]map[entity.Interval]bool{}
	for _, row := range rows {
		iv, err := entity.ParseInterval(row.Interval)
		if err != nil {
			continue
		}
		if found[row.Ticker] == nil {
			found[row.Ticker] = map[entity.Interval]bool{}
		}
		found[row.Ticker][iv] = true
	}
	out := make(map[string][]entity.Interval, len(found))
	for ticker, ivs := range found {
		for _, iv := range entity.Intervals {
			if ivs[iv] {
				out[ticker] = append(out[ticker], iv)
			}
		}
	}
	return out, nil
}
