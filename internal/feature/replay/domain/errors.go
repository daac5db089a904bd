// Package domain defines domain-level errors for the replay feature.
package domain

import "errors"

// Domain errors for replay data assembly.
// These represent recoverable data conditions and are mapped to user-facing
// responses by the transport layer; anything else is a server error.
var (
	// ErrNotFound indicates that no candle data can produce the requested
	// ticker/date/interval combination.
	ErrNotFound = errors.New("no candle data for the requested ticker, date and interval")

	// ErrInvalidAggregationFactor indicates the target interval is not a
	// positive integer multiple of the source interval.
	ErrInvalidAggregationFactor = errors.New("aggregation factor must be a positive integer")

	// ErrIncompleteAggregationWindow indicates an interior group of fine
	// candles was short, i.e. the source series has a gap. Aggregation
	// aborts rather than producing silently wrong coarse candles.
	ErrIncompleteAggregationWindow = errors.New("incomplete aggregation window: source series has an interior gap")
)
