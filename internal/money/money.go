// Package money holds the exact-decimal arithmetic used for order pricing.
// Both sides of every price comparison go through the same functions so the
// result never depends on binary floating point.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept for money amounts.
const Places = 2

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal returns round2(unitPrice * quantity).
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Sum adds already-rounded line totals and rounds the result again.
func Sum(lines ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l)
	}
	return Round2(total)
}

// Equal compares two amounts after rounding both to two places.
func Equal(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}
