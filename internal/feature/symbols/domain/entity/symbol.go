// Package entity defines the domain models for the symbols feature.
package entity

// Symbol is one simulatable ticker and the interval series available
// for it on disk.
type Symbol struct {
	Ticker    string   `json:"ticker"`
	Intervals []string `json:"intervals"`
}
