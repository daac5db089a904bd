// Package usecase はローソク足データファイルの取り込みロジックを実装します。
package usecase

import (
	"context"
	"log/slog"

	"sim_backend/internal/feature/replay/domain/entity"
)

// SourceStore は取り込み元（生のデータファイル群）を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SourceStore interface {
	// List enumerates available tickers and their interval series.
	List(ctx context.Context) (map[string][]entity.Interval, error)
	// ReadSeries returns the merged, normalized series for one
	// ticker+interval, timestamps in epoch-ms UTC.
	ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error)
}

// CandleWriter は取り込み先（データベース）を抽象化します。
type CandleWriter interface {
	UpsertBatch(ctx context.Context, ticker string, interval entity.Interval, candles []entity.Candle) error
}

// IngestUsecase merges raw day files into full series and persists them,
// so the server can read one indexed store instead of re-scanning the
// data directory per request.
type IngestUsecase struct {
	source SourceStore
	sink   CandleWriter
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(source SourceStore, sink CandleWriter) *IngestUsecase {
	return &IngestUsecase{source: source, sink: sink}
}

// ingestOne は1銘柄・1時間足の全ローソク足を読み込み、一括でupsertします。
func (iu *IngestUsecase) ingestOne(ctx context.Context, ticker string, interval entity.Interval) (int, error) {
	s, err := iu.source.ReadSeries(ctx, ticker, interval)
	if err != nil {
		return 0, err
	}
	if s.SkippedRows > 0 {
		slog.Warn("source rows skipped during ingest",
			"ticker", ticker, "interval", interval, "skipped", s.SkippedRows)
	}
	if err := iu.sink.UpsertBatch(ctx, ticker, interval, s.Candles); err != nil {
		return 0, err
	}
	return len(s.Candles), nil
}

// IngestAll はデータディレクトリ内の全銘柄・全時間足を取り込みます。
// 1系列でエラーが発生しても処理を止めずにログに出力し、次の系列を続けます。
func (iu *IngestUsecase) IngestAll(ctx context.Context) error {
	listing, err := iu.source.List(ctx)
	if err != nil {
		return err
	}
	for ticker, intervals := range listing {
		for _, interval := range intervals {
			n, err := iu.ingestOne(ctx, ticker, interval)
			if err != nil {
				slog.Error("failed to ingest series", "ticker", ticker, "interval", interval, "error", err)
				continue // 次のintervalまたはtickerへ
			}
			slog.Info("ingested series", "ticker", ticker, "interval", interval, "candles", n)
		}
	}
	return nil
}
