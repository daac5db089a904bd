package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"sim_backend/internal/feature/replay/domain/entity"
	symbolentity "sim_backend/internal/feature/symbols/domain/entity"
)

type stubSymbolRepo struct {
	listing map[string][]entity.Interval
	err     error
}

func (s *stubSymbolRepo) List(ctx context.Context) (map[string][]entity.Interval, error) {
	return s.listing, s.err
}

func TestSymbolUsecase_ListSymbols(t *testing.T) {
	repo := &stubSymbolRepo{listing: map[string][]entity.Interval{
		"TLKM":    {entity.Interval1m},
		"ADRO":    {entity.Interval1m, entity.Interval5m},
		"BBCA.JK": {entity.Interval1h},
	}}
	su := NewSymbolUsecase(repo)

	got, err := su.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []symbolentity.Symbol{
		{Ticker: "ADRO", Intervals: []string{"1m", "5m"}},
		{Ticker: "BBCA.JK", Intervals: []string{"1h"}},
		{Ticker: "TLKM", Intervals: []string{"1m"}},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
}

func TestSymbolUsecase_ListSymbols_Error(t *testing.T) {
	su := NewSymbolUsecase(&stubSymbolRepo{err: errors.New("scan failed")})
	if _, err := su.ListSymbols(context.Background()); err == nil {
		t.Error("expected the repository error to propagate")
	}
}
