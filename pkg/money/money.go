// Package money holds the currency arithmetic shared by the basket, the
// consolidator and the order service. Amounts are exact decimals; rounding
// to two places (half-up) happens once, on totals.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits of the campus currency.
const Places = 2

func init() {
	// Money travels as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Parse reads a decimal amount from user or file input.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(raw string) decimal.Decimal {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// Extend multiplies a unit price by a quantity without rounding.
func Extend(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Round applies the half-up rule at two places. Amounts are never negative
// here, so decimal's half-away-from-zero rounding is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Line is anything with a unit price and quantity.
type Line interface {
	Price() decimal.Decimal
	Qty() int
}

// Total sums price x quantity over lines and rounds the result once.
func Total[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(Extend(l.Price(), l.Qty()))
	}
	return Round(sum)
}

// Key is a canonical string for a price so that 25 and 25.00 compare equal
// when used in map keys.
func Key(d decimal.Decimal) string {
	return d.String()
}

// Format renders an amount with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
