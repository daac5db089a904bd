package usecase

import (
	"sim_backend/internal/feature/execution/domain/entity"
)

// DepthConfig holds tunables for the synthetic depth ladder.
type DepthConfig struct {
	Levels        int     // number of price levels
	BaseQuantity  float64 // quantity at the best level before thinning
	SpreadPercent float64 // half-spread as % of the reference price, floor
}

// DefaultDepthConfig returns ladder parameters for a typical IDX name.
func DefaultDepthConfig() DepthConfig {
	return DepthConfig{
		Levels:        10,
		BaseQuantity:  100,
		SpreadPercent: 0.05,
	}
}

// BuildDepth builds a deterministic synthetic one-sided depth ladder
// around a reference price. Volatility widens the spread and the level
// step and thins the quantities, so slippage behaves realistically on
// jumpy names: the half-spread is the configured floor plus a tenth of
// the ATR percent, and each level away from the best carries 10% less
// quantity. Prices rise for buys (ask side) and fall for sells (bid side).
func BuildDepth(referencePrice, atrPercent float64, side entity.Side, cfg DepthConfig) []entity.OrderBookLevel {
	if referencePrice <= 0 || cfg.Levels <= 0 {
		return nil
	}
	if atrPercent < 0 {
		atrPercent = 0
	}

	halfSpreadPct := cfg.SpreadPercent + atrPercent/10
	step := referencePrice * halfSpreadPct / 100
	if step <= 0 {
		return nil
	}

	direction := 1.0
	if side == entity.SideSell {
		direction = -1.0
	}

	qty := cfg.BaseQuantity / (1 + atrPercent/100)
	out := make([]entity.OrderBookLevel, 0, cfg.Levels)
	for i := 0; i < cfg.Levels; i++ {
		price := referencePrice + direction*step*float64(i+1)
		if price <= 0 {
			break
		}
		out = append(out, entity.OrderBookLevel{Price: price, Quantity: qty})
		qty *= 0.9
	}
	return out
}
