// Package fixedpoint implements 17.14 signed fixed-point arithmetic, the
// representation the MLFQ scheduler uses for load_avg and recent_cpu so that
// priority decisions stay deterministic without a floating-point unit.
package fixedpoint

// Q is a 17.14 fixed-point value: 17 integer bits, 14 fractional bits, stored
// in a plain int64 scaled by 1<<fracBits.
type Q int64

const fracBits = 14

// scale is 1 in fixed-point representation (1 << 14).
const scale = Q(1 << fracBits)

// Zero is the additive identity.
const Zero Q = 0

// FromInt converts an integer to fixed-point.
func FromInt(n int) Q {
	return Q(n) * scale
}

// ToIntTrunc converts to an integer, truncating toward zero.
func (q Q) ToIntTrunc() int {
	return int(q / scale)
}

// ToIntRound converts to an integer, rounding to nearest (ties away from zero).
func (q Q) ToIntRound() int {
	if q >= 0 {
		return int((q + scale/2) / scale)
	}
	return int((q - scale/2) / scale)
}

// Add returns q + other.
func (q Q) Add(other Q) Q {
	return q + other
}

// AddInt returns q + n.
func (q Q) AddInt(n int) Q {
	return q + FromInt(n)
}

// Sub returns q - other.
func (q Q) Sub(other Q) Q {
	return q - other
}

// Mul returns q * other, with the product rescaled back to 17.14.
func (q Q) Mul(other Q) Q {
	return Q((int64(q) * int64(other)) / int64(scale))
}

// MulInt returns q * n.
func (q Q) MulInt(n int) Q {
	return q * Q(n)
}

// Div returns q / other, rescaled back to 17.14.
func (q Q) Div(other Q) Q {
	return Q((int64(q) * int64(scale)) / int64(other))
}

// DivInt returns q / n.
func (q Q) DivInt(n int) Q {
	return q / Q(n)
}
