// Package usecase はシミュレーション可能な銘柄一覧のロジックを実装します。
package usecase

import (
	"context"
	"sort"

	"sim_backend/internal/feature/replay/domain/entity"
	symbolentity "sim_backend/internal/feature/symbols/domain/entity"
)

// SymbolRepository は銘柄一覧の読み取りレイヤーを抽象化します。
type SymbolRepository interface {
	List(ctx context.Context) (map[string][]entity.Interval, error)
}

type symbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase はsymbolUsecaseの新しいインスタンスを生成します。
func NewSymbolUsecase(repo SymbolRepository) *symbolUsecase {
	return &symbolUsecase{repo: repo}
}

// ListSymbols はシミュレーション可能な銘柄と利用可能な時間足を返します。
// 出力はticker昇順で安定しています。
func (su *symbolUsecase) ListSymbols(ctx context.Context) ([]symbolentity.Symbol, error) {
	listing, err := su.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]symbolentity.Symbol, 0, len(listing))
	for ticker, intervals := range listing {
		ivs := make([]string, 0, len(intervals))
		for _, iv := range intervals {
			ivs = append(ivs, string(iv))
		}
		out = append(out, symbolentity.Symbol{Ticker: ticker, Intervals: ivs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}
