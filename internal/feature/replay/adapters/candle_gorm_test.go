package adapters

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sim_backend/internal/feature/replay/domain"
	"sim_backend/internal/feature/replay/domain/entity"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&CandleModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCandles(n int) []entity.Candle {
	out := make([]entity.Candle, 0, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		out = append(out, entity.Candle{
			Time:   1736906400000 + int64(i)*60_000,
			Open:   p,
			High:   p + 1,
			Low:    p - 1,
			Close:  p + 0.5,
			Volume: 10,
		})
	}
	return out
}

func TestCandleGorm_UpsertAndRead(t *testing.T) {
	repo := NewCandleRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, "BBCA.JK", entity.Interval1m, seedCandles(5)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.ReadSeries(ctx, "BBCA.JK", entity.Interval1m)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Candles) != 5 {
		t.Fatalf("expected 5 candles, got %d", len(got.Candles))
	}
	for i := 1; i < len(got.Candles); i++ {
		if got.Candles[i].Time <= got.Candles[i-1].Time {
			t.Fatal("series must be ascending by time")
		}
	}
}

// TestCandleGorm_UpsertIsIdempotent は同一キーの再投入が行を増やさず、
// 値を上書きすることをテストします。
func TestCandleGorm_UpsertIsIdempotent(t *testing.T) {
	repo := NewCandleRepository(newTestDB(t))
	ctx := context.Background()

	candles := seedCandles(3)
	if err := repo.UpsertBatch(ctx, "BBCA.JK", entity.Interval1m, candles); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	candles[0].Close = 999
	if err := repo.UpsertBatch(ctx, "BBCA.JK", entity.Interval1m, candles); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.ReadSeries(ctx, "BBCA.JK", entity.Interval1m)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Candles) != 3 {
		t.Errorf("re-upsert must not duplicate rows, got %d", len(got.Candles))
	}
	if got.Candles[0].Close != 999 {
		t.Errorf("re-upsert must update values, got close=%v", got.Candles[0].Close)
	}
}

func TestCandleGorm_NotFound(t *testing.T) {
	repo := NewCandleRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.ReadSeries(ctx, "XXXX", entity.Interval1m); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ReadSeries: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.ListIntervals(ctx, "XXXX"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ListIntervals: expected ErrNotFound, got %v", err)
	}
}

func TestCandleGorm_Listings(t *testing.T) {
	repo := NewCandleRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, "BBCA.JK", entity.Interval5m, seedCandles(2)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertBatch(ctx, "BBCA.JK", entity.Interval1m, seedCandles(2)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertBatch(ctx, "ADRO", entity.Interval1h, seedCandles(2)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	ivs, err := repo.ListIntervals(ctx, "BBCA.JK")
	if err != nil {
		t.Fatalf("list intervals: %v", err)
	}
	// 細かい足から順に返る
	if len(ivs) != 2 || ivs[0] != entity.Interval1m || ivs[1] != entity.Interval5m {
		t.Errorf("expected [1m 5m], got %v", ivs)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 tickers, got %d", len(all))
	}
	if len(all["BBCA.JK"]) != 2 || len(all["ADRO"]) != 1 {
		t.Errorf("unexpected listing: %v", all)
	}
}
