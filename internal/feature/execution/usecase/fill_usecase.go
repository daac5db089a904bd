// Package usecase は約定シミュレーション機能のビジネスロジックを実装します。
package usecase

import (
	"fmt"
	"math"

	"sim_backend/internal/feature/execution/domain"
	"sim_backend/internal/feature/execution/domain/entity"
)

// FillUsecase simulates market-order execution against a synthetic depth
// ladder. It is a pure computation with no shared state and is safe to
// invoke concurrently.
type FillUsecase struct{}

// NewFillUsecase はFillUsecaseの新しいインスタンスを生成します。
func NewFillUsecase() *FillUsecase {
	return &FillUsecase{}
}

// Fill walks the depth ladder from the best price, consuming up to each
// level's quantity until the order or the depth is exhausted.
// The expected price is the best level's price; average fill price and
// slippage are zero-division guarded. Empty depth yields a zero-filled
// result, not an error. Buys require ascending level prices, sells
// descending; anything else is ErrInvalidDepthOrdering.
func (fu *FillUsecase) Fill(orderSize float64, depth []entity.OrderBookLevel, side entity.Side) (entity.FillResult, error) {
	if orderSize <= 0 {
		return entity.FillResult{}, fmt.Errorf("%w: got %v", domain.ErrInvalidOrderSize, orderSize)
	}
	if side != entity.SideBuy && side != entity.SideSell {
		return entity.FillResult{}, fmt.Errorf("%w: got %q", domain.ErrInvalidSide, side)
	}
	if err := validateDepthOrdering(depth, side); err != nil {
		return entity.FillResult{}, err
	}

	var (
		totalFilled float64
		totalCost   float64
		details     []entity.OrderBookLevel
	)
	remaining := orderSize
	for _, level := range depth {
		if remaining <= 0 {
			break
		}
		qty := level.Quantity
		if qty > remaining {
			qty = remaining
		}
		if qty <= 0 {
			continue
		}
		details = append(details, entity.OrderBookLevel{Price: level.Price, Quantity: qty})
		totalFilled += qty
		totalCost += level.Price * qty
		remaining -= qty
	}

	expectedPrice := 0.0
	if len(depth) > 0 {
		expectedPrice = depth[0].Price
	}
	avgFillPrice := 0.0
	if totalFilled > 0 {
		avgFillPrice = totalCost / totalFilled
	}
	slippage := 0.0
	if expectedPrice > 0 && totalFilled > 0 {
		slippage = math.Abs(avgFillPrice-expectedPrice) / expectedPrice * 100
	}

	return entity.FillResult{
		TotalFilled:     totalFilled,
		AvgFillPrice:    avgFillPrice,
		SlippagePercent: slippage,
		PartialFill:     totalFilled < orderSize,
		FillDetails:     details,
	}, nil
}

// validateDepthOrdering checks prices are strictly monotonic in the
// direction unfavorable to the side: rising for buys, falling for sells.
func validateDepthOrdering(depth []entity.OrderBookLevel, side entity.Side) error {
	for i := 1; i < len(depth); i++ {
		prev, cur := depth[i-1].Price, depth[i].Price
		if side == entity.SideBuy && cur <= prev {
			return fmt.Errorf("%w: level %d price %v after %v for buy", domain.ErrInvalidDepthOrdering, i, cur, prev)
		}
		if side == entity.SideSell && cur >= prev {
			return fmt.Errorf("%w: level %d price %v after %v for sell", domain.ErrInvalidDepthOrdering, i, cur, prev)
		}
	}
	return nil
}
