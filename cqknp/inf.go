package cqknp

import "math"

// Inf is the sentinel for +∞ bounds and objective values; -Inf is -∞.
//
// It is the largest finite float64, so it never collides with the IEEE
// infinity produced by an overflow. Inputs at or beyond ±Inf (IEEE
// infinities included) are read as infinite.
const Inf = math.MaxFloat64

// End selects every item up to the last one when passed as stop.
const End = math.MaxInt

// IsPosInf reports whether v denotes +∞.
func IsPosInf(v float64) bool {
	return v >= Inf
}

// IsNegInf reports whether v denotes -∞.
func IsNegInf(v float64) bool {
	return v <= -Inf
}

// Canon maps any infinite value to the ±Inf sentinel and leaves finite
// values untouched.
func Canon(v float64) float64 {
	switch {
	case IsPosInf(v):
		return Inf
	case IsNegInf(v):
		return -Inf
	default:
		return v
	}
}

// ToEngine translates a sentinel value to an engine whose infinity is inf.
func ToEngine(v, inf float64) float64 {
	switch {
	case IsPosInf(v):
		return inf
	case IsNegInf(v):
		return -inf
	default:
		return v
	}
}

// FromEngine translates a value read from an engine whose infinity is inf
// back to the sentinel.
func FromEngine(v, inf float64) float64 {
	switch {
	case v >= inf:
		return Inf
	case v <= -inf:
		return -Inf
	default:
		return v
	}
}
