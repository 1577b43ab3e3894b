package models

import "math"

// CounterKind names one of the independent id counters.
type CounterKind string

const (
	CounterProperty CounterKind = "property"
	CounterListing  CounterKind = "listing"
	CounterOffer    CounterKind = "offer"
)

// NextID returns current+1, or false when the increment would overflow.
// Counters start at zero so the first allocated id is 1.
func NextID(current uint64) (uint64, bool) {
	return NextIDWithin(current, math.MaxUint64)
}

// NextIDWithin is NextID against a backend-specific ceiling.
func NextIDWithin(current, ceiling uint64) (uint64, bool) {
	if current >= ceiling {
		return 0, false
	}
	return current + 1, true
}
