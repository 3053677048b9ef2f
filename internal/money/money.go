// Package money holds the decimal helpers shared by the ledger and reports.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits stored for amounts.
const Scale = 2

// Sum adds amount(item) over items.
func Sum[T any](items []T, amount func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(amount(item))
	}
	return total
}

// Parse reads a decimal amount and rejects more than Scale fractional digits.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.Exponent() < -Scale && !d.Equal(d.Round(Scale)) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimal places", s, Scale)
	}
	return d, nil
}

// Format renders an amount with exactly Scale fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Float converts an amount for spreadsheet cells and validators.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
