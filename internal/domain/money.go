package domain

import (
	"fmt"
	"math"
)

// All monetary amounts in this system are int64 cents. Conversions to and
// from float64 dollars happen only at the API boundary, so arithmetic on
// balances and trade totals is exact.

// DollarsToCents converts a float64 dollar amount to int64 cents.
// It validates that the input has at most 2 decimal places and returns
// an error if more precision is provided. Uses math.Round after
// multiplying by 100 to handle floating-point representation issues.
func DollarsToCents(f float64) (int64, error) {
	// Multiply by 1000 to check for a third decimal place.
	// Round to avoid floating-point artifacts (e.g., 1.10 * 1000 = 1099.9999...).
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("monetary values must have at most 2 decimal places")
	}

	cents := math.Round(f * 100)
	return int64(cents), nil
}

// CentsToDollars converts an int64 cents value to a float64 dollar amount.
func CentsToDollars(c int64) float64 {
	return float64(c) / 100.0
}

// RoundToCents converts a float64 dollar amount of arbitrary precision to
// the nearest whole cent. Used for values produced outside the system
// (external quotes report four decimal places, simulated prices are the
// result of a percentage perturbation).
func RoundToCents(f float64) int64 {
	return int64(math.Round(f * 100))
}
