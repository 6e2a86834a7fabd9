// Package lamports centralizes the numeric-safety policy for currency
// and token amounts: every conversion between widths, and every signed
// magnitude extraction, goes through here so the clamping rules are
// auditable in one place.
package lamports

import "math/big"

// PerSOL is the number of lamports in one SOL.
const PerSOL = 1_000_000_000

// ToSOL converts a signed lamport amount to SOL.
func ToSOL(v int64) float64 {
	return float64(v) / PerSOL
}

// AbsSOL converts a signed lamport amount to its absolute SOL value.
func AbsSOL(v int64) float64 {
	s := ToSOL(v)
	if s < 0 {
		return -s
	}
	return s
}

// Positive returns v as an unsigned magnitude when v is positive, else 0.
func Positive(v int64) uint64 {
	if v > 0 {
		return uint64(v)
	}
	return 0
}

// Negative returns -v as an unsigned magnitude when v is negative, else 0.
func Negative(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return 0
}

// ClampBig clamps an arbitrary-width intermediate into the int64 range.
// Balance deltas are computed in wide arithmetic first; the stored field
// saturates instead of wrapping.
func ClampBig(v *big.Int) int64 {
	if v.IsInt64() {
		return v.Int64()
	}
	if v.Sign() > 0 {
		return 1<<63 - 1
	}
	return -1 << 63
}

// DiffU64 returns post−pre as a signed delta, clamped into int64.
func DiffU64(post, pre uint64) int64 {
	if post >= pre {
		d := post - pre
		if d > 1<<63-1 {
			return 1<<63 - 1
		}
		return int64(d)
	}
	d := pre - post
	if d >= 1<<63 {
		return -1 << 63
	}
	return -int64(d)
}

// SaturatingAdd adds two unsigned amounts, saturating at the maximum.
func SaturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return 1<<64 - 1
}

// SaturatingSub subtracts b from a, saturating at zero.
func SaturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
