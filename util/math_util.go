package util

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// AddInt64 adds a list of non-negative int64s together, returning the sum and
// an error if the sum overflows int64 or any of the terms is negative.
func AddInt64(ns ...int64) (sum int64, err error) {
	for _, n := range ns {
		var ok bool
		if sum, ok = SafeAdd(sum, n); !ok {
			return 0, fmt.Errorf("int64 sum overflow: %v", ns)
		}
	}
	return sum, nil
}

// SafeAdd returns a+b and checks for overflow, both arguments must be non-negative.
func SafeAdd(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// SafeSub returns a-b and checks for underflow below zero.
func SafeSub(a, b int64) (int64, bool) {
	if b < 0 || a < b {
		return 0, false
	}
	return a - b, true
}

/*
MulDivCeil returns ceil(a*b/d). The product is calculated in 256 bits so it
never wraps, the boolean is false when arguments are out of domain (negative a
or b, non-positive d) or when the result does not fit into int64.
*/
func MulDivCeil(a, b, d int64) (int64, bool) {
	if a < 0 || b < 0 || d <= 0 {
		return 0, false
	}
	prod := new(uint256.Int).Mul(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	div := uint256.NewInt(uint64(d))
	q, r := new(uint256.Int).DivMod(prod, div, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	if !q.IsUint64() || q.Uint64() > math.MaxInt64 {
		return 0, false
	}
	return int64(q.Uint64()), true
}
