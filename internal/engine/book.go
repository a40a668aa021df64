package engine

import (
	"positions/internal/precision"
	"positions/types"

	"github.com/shopspring/decimal"
)

// book holds the averaging accumulators of one lifecycle of a position. It is
// never patched across lifecycles: a flip or a reopen replaces it with a fresh
// book built by newBook.
type book struct {
	buys     decimal.Decimal
	sells    decimal.Decimal
	avgBot   decimal.Decimal
	avgSld   decimal.Decimal
	avgPrice decimal.Decimal
	totalBot decimal.Decimal
	totalSld decimal.Decimal
}

// newBook opens a lifecycle with qty units at price on the given stance.
func newBook(stance types.Direction, qty, price, contractSize decimal.Decimal) book {
	avg := precision.Unit(price)
	notional := precision.Money(qty.Mul(contractSize).Mul(price))

	b := book{avgPrice: avg}
	if stance == types.DirectionShort {
		b.sells = qty
		b.avgSld = avg
		b.totalSld = notional
	} else {
		b.buys = qty
		b.avgBot = avg
		b.totalBot = notional
	}
	return b
}

func (b *book) net() decimal.Decimal {
	return b.buys.Sub(b.sells)
}

// fill books qty units at price on side. extends tells whether the side
// extends the stance, in which case the cost-basis average moves too.
func (b *book) fill(side types.Side, qty, price, contractSize decimal.Decimal, extends bool) {
	if side == types.SideTypeBuy {
		b.avgBot, _ = precision.WeightedAverage(b.avgBot, b.buys, price, qty)
		if extends {
			b.avgPrice, _ = precision.WeightedAverage(b.avgPrice, b.buys, price, qty)
		}
		b.buys = b.buys.Add(qty)
		b.totalBot = precision.Money(b.buys.Mul(b.avgBot).Mul(contractSize))
		return
	}
	b.avgSld, _ = precision.WeightedAverage(b.avgSld, b.sells, price, qty)
	if extends {
		b.avgPrice, _ = precision.WeightedAverage(b.avgPrice, b.sells, price, qty)
	}
	b.sells = b.sells.Add(qty)
	b.totalSld = precision.Money(b.sells.Mul(b.avgSld).Mul(contractSize))
}
