// Package precision holds the fixed-precision rounding rules shared by every
// accounting calculation: monetary amounts are kept to two places and unit
// prices and averages to seven.
package precision

import "github.com/shopspring/decimal"

const (
	MoneyPlaces int32 = 2
	UnitPlaces  int32 = 7
)

// Money rounds a monetary amount to two places, half to even.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}

// Unit rounds a per-unit price or an average to seven places, half to even.
func Unit(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(UnitPlaces)
}

// WeightedAverage folds qty units at price into a running average of vol units.
// When vol+qty is zero there is nothing to average over: the previous average
// is returned unchanged and ok is false.
func WeightedAverage(avg, vol, price, qty decimal.Decimal) (decimal.Decimal, bool) {
	den := vol.Add(qty)
	if den.IsZero() {
		return avg, false
	}
	num := avg.Mul(vol).Add(price.Mul(qty))
	return Unit(num.Div(den)), true
}
