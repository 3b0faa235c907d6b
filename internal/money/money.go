// Package money holds the fixed-point conventions shared by every ledger
// computation: amounts carry two fractional digits and compare within a cent.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept on every amount.
const Places = 2

var (
	// Hundred is used for percentage arithmetic.
	Hundred = decimal.NewFromInt(100)
	// Tolerance is the largest difference still treated as equal.
	Tolerance = decimal.New(1, -Places)
)

// Round rounds half away from zero to two decimals.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Equal reports whether a and b differ by no more than Tolerance.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// HasExcessPrecision reports whether d carries more than two decimals.
func HasExcessPrecision(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(Places))
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Parse reads a user-supplied amount. Blank input is zero; thousands
// separators are accepted.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders d with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
