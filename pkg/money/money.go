// Package money does price arithmetic in decimal so that line prices and
// order totals never pick up float rounding noise.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept on stored amounts.
const Places = 2

// Times returns unit × quantity rounded to Places.
func Times(unit float64, quantity int) float64 {
	return decimal.NewFromFloat(unit).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(Places).
		InexactFloat64()
}

// Unit splits a line total back into its unit price, rounded to Places.
// Only for lines that never recorded their unit price.
func Unit(line float64, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	return decimal.NewFromFloat(line).
		Div(decimal.NewFromInt(int64(quantity))).
		Round(Places).
		InexactFloat64()
}
