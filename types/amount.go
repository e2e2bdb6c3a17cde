package types

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of decimal places of all amounts and prices,
	// same as the native scale of the ledgers.
	Decimals = 7
	// ScaleFactor is the fixed-point representation of a single whole unit.
	ScaleFactor int64 = 10_000_000
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

/*
ParseAmount converts decimal string ("200.5") into fixed-point integer with
Decimals places. More fractional digits than Decimals is an error, the value
is never rounded.
*/
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, Decimals)
	}
	if scaled.Abs().GreaterThan(maxAmount) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return scaled.IntPart(), nil
}

// FormatAmount renders fixed-point amount with all Decimals places, ie "200.0000000".
func FormatAmount(v int64) string {
	return decimal.New(v, -Decimals).StringFixed(Decimals)
}
