// Package dto defines the replay feature's HTTP payloads.
package dto

import "sim_backend/internal/feature/replay/domain/entity"

// LoadResponse はリプレイ組み立て結果のレスポンスDTOです。
// ローソク足は t/o/h/l/c/v キーのコンパクト形式（データファイルと同じ）で返します。
type LoadResponse struct {
	Ticker          string          `json:"ticker"`
	Date            string          `json:"date"`
	Interval        string          `json:"interval"`
	SourceInterval  string          `json:"sourceInterval"`
	WasAggregated   bool            `json:"wasAggregated"`
	HistoryCount    int             `json:"historyCount"`
	SimulationCount int             `json:"simulationCount"`
	TotalCandles    int             `json:"totalCandles"`
	SkippedRows     int             `json:"skippedRows"`
	HistoryBuffer   []entity.Candle `json:"historyBuffer"`
	SimulationQueue []entity.Candle `json:"simulationQueue"`
}

// FromLoadResult はLoadResultをレスポンスDTOに変換します。
func FromLoadResult(r entity.LoadResult) LoadResponse {
	history := r.HistoryBuffer
	if history == nil {
		history = []entity.Candle{}
	}
	queue := r.SimulationQueue
	if queue == nil {
		queue = []entity.Candle{}
	}
	return LoadResponse{
		Ticker:          r.Ticker,
		Date:            r.Date,
		Interval:        string(r.Interval),
		SourceInterval:  string(r.SourceInterval),
		WasAggregated:   r.WasAggregated,
		HistoryCount:    r.HistoryCount,
		SimulationCount: r.SimulationCount,
		TotalCandles:    r.TotalCandles,
		SkippedRows:     r.SkippedRows,
		HistoryBuffer:   history,
		SimulationQueue: queue,
	}
}
