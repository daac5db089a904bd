// Package domain defines domain-level errors for the execution feature.
package domain

import "errors"

var (
	// ErrInvalidOrderSize is returned when the requested order size is not
	// strictly positive.
	ErrInvalidOrderSize = errors.New("order size must be positive")

	// ErrInvalidSide is returned for a side other than buy or sell.
	ErrInvalidSide = errors.New("side must be buy or sell")

	// ErrInvalidDepthOrdering is returned when the depth ladder is not
	// sorted in the direction unfavorable to the order's side. Mismatched
	// depth would otherwise produce a silently misleading slippage figure.
	ErrInvalidDepthOrdering = errors.New("depth levels not ordered away from best price for this side")
)
