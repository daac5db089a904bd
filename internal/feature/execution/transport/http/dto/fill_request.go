// Package dto defines the execution feature's HTTP payloads.
package dto

import "sim_backend/internal/feature/execution/domain/entity"

// FillRequest is a simulated market order. Depth may be supplied
// explicitly; when omitted, ticker (and optionally interval/atrPeriod)
// select the series whose volatility sizes a synthetic ladder.
type FillRequest struct {
	OrderSize float64                 `json:"orderSize"`
	Side      string                  `json:"side"`
	Depth     []entity.OrderBookLevel `json:"depth"`
	Ticker    string                  `json:"ticker"`
	Interval  string                  `json:"interval"`
	ATRPeriod int                     `json:"atrPeriod"`
}

// FillResponse is the execution outcome; SyntheticDepth marks results
// computed against a generated ladder rather than caller-provided depth.
type FillResponse struct {
	entity.FillResult
	SyntheticDepth bool    `json:"syntheticDepth"`
	ATRPercent     float64 `json:"atrPercent,omitempty"`
}

// VolatilityResponse is the ATR estimate for one series.
type VolatilityResponse struct {
	Ticker     string  `json:"ticker"`
	Interval   string  `json:"interval"`
	Period     int     `json:"period"`
	ATR        float64 `json:"atr"`
	ATRPercent float64 `json:"atrPercent"`
	Candles    int     `json:"candles"`
}
