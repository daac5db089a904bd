package usecase

import (
	"reflect"
	"testing"

	"sim_backend/internal/feature/execution/domain/entity"
)

func TestBuildDepth_BuyLadderRises(t *testing.T) {
	cfg := DefaultDepthConfig()
	depth := BuildDepth(1000, 0, entity.SideBuy, cfg)

	if len(depth) != cfg.Levels {
		t.Fatalf("expected %d levels, got %d", cfg.Levels, len(depth))
	}
	if depth[0].Price <= 1000 {
		t.Errorf("best ask must sit above the reference, got %v", depth[0].Price)
	}
	for i := 1; i < len(depth); i++ {
		if depth[i].Price <= depth[i-1].Price {
			t.Fatalf("buy ladder must rise: level %d price %v after %v", i, depth[i].Price, depth[i-1].Price)
		}
		if depth[i].Quantity >= depth[i-1].Quantity {
			t.Fatalf("quantities must thin away from the best level: %v then %v", depth[i-1].Quantity, depth[i].Quantity)
		}
	}
}

func TestBuildDepth_SellLadderFalls(t *testing.T) {
	depth := BuildDepth(1000, 0, entity.SideSell, DefaultDepthConfig())

	if depth[0].Price >= 1000 {
		t.Errorf("best bid must sit below the reference, got %v", depth[0].Price)
	}
	for i := 1; i < len(depth); i++ {
		if depth[i].Price >= depth[i-1].Price {
			t.Fatalf("sell ladder must fall: level %d price %v after %v", i, depth[i].Price, depth[i-1].Price)
		}
	}
}

// TestBuildDepth_VolatilityWidensAndThins はATRが大きいほどスプレッドが
// 広がり、数量が薄くなることをテストします。
func TestBuildDepth_VolatilityWidensAndThins(t *testing.T) {
	cfg := DefaultDepthConfig()
	calm := BuildDepth(1000, 1, entity.SideBuy, cfg)
	jumpy := BuildDepth(1000, 10, entity.SideBuy, cfg)

	calmSpread := calm[0].Price - 1000
	jumpySpread := jumpy[0].Price - 1000
	if jumpySpread <= calmSpread {
		t.Errorf("higher volatility must widen the spread: %v vs %v", jumpySpread, calmSpread)
	}
	if jumpy[0].Quantity >= calm[0].Quantity {
		t.Errorf("higher volatility must thin the book: %v vs %v", jumpy[0].Quantity, calm[0].Quantity)
	}
}

func TestBuildDepth_Deterministic(t *testing.T) {
	cfg := DefaultDepthConfig()
	first := BuildDepth(1000, 2.5, entity.SideBuy, cfg)
	second := BuildDepth(1000, 2.5, entity.SideBuy, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce an identical ladder")
	}
}

func TestBuildDepth_DegenerateInputs(t *testing.T) {
	cfg := DefaultDepthConfig()

	if got := BuildDepth(0, 1, entity.SideBuy, cfg); got != nil {
		t.Errorf("non-positive reference price must yield no ladder, got %d levels", len(got))
	}
	if got := BuildDepth(1000, 1, entity.SideBuy, DepthConfig{Levels: 0}); got != nil {
		t.Errorf("zero levels must yield no ladder, got %d levels", len(got))
	}

	// 負のATRは0として扱う
	neg := BuildDepth(1000, -5, entity.SideBuy, cfg)
	flat := BuildDepth(1000, 0, entity.SideBuy, cfg)
	if !reflect.DeepEqual(neg, flat) {
		t.Error("negative volatility must behave like zero volatility")
	}
}
