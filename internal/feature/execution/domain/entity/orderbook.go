// Package entity defines the domain models for the execution feature.
package entity

// Side is the direction of a simulated market order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderBookLevel is one price level of synthetic depth on a single side of
// the book, best price first. Walking away from the best price, prices
// must move against the order: upward for buys (asks), downward for sells
// (bids).
type OrderBookLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// FillResult describes a simulated market-order execution against a depth
// ladder. Sum of FillDetails quantities always equals TotalFilled, and
// PartialFill holds exactly when TotalFilled < the requested size.
type FillResult struct {
	TotalFilled     float64          `json:"totalFilled"`
	AvgFillPrice    float64          `json:"avgFillPrice"`
	SlippagePercent float64          `json:"slippagePercent"`
	PartialFill     bool             `json:"partialFill"`
	FillDetails     []OrderBookLevel `json:"fillDetails"`
}
