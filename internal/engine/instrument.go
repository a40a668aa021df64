package engine

import (
	"fmt"

	"positions/internal/precision"
	"positions/types"

	"github.com/shopspring/decimal"
)

// instrument is the accounting that differs between asset classes. It is
// chosen once, from the asset class, when the position is created.
type instrument interface {
	// seed builds the accumulators of a new lifecycle.
	seed(stance types.Direction, qty, price, contractSize decimal.Decimal) book
	// markToMarket revalues the held quantity at price.
	markToMarket(p *Position, price decimal.Decimal)
	// realize books the PnL of the reducing side of the current lifecycle.
	realize(p *Position)
}

func instrumentFor(class types.AssetClass, strike decimal.NullDecimal) (instrument, error) {
	switch {
	case class.EquityLike():
		return equity{}, nil
	case class == types.AssetClassFuture:
		return future{}, nil
	case class == types.AssetClassOption:
		if !strike.Valid {
			return nil, ErrMissingStrike
		}
		return option{strike: strike.Decimal}, nil
	default:
		return nil, fmt.Errorf("%q: %w", class, ErrUnsupportedAssetClass)
	}
}

// averageCost is the weighted-average-cost seeding and realization shared by
// every instrument.
type averageCost struct{}

func (averageCost) seed(stance types.Direction, qty, price, contractSize decimal.Decimal) book {
	return newBook(stance, qty, price, contractSize)
}

// realize measures the spread between the two sides' averages over the
// quantity that reduced the position: sells while long, buys while short.
func (averageCost) realize(p *Position) {
	reduced := p.book.sells
	if p.action == types.DirectionShort {
		reduced = p.book.buys
	}
	spread := p.book.avgSld.Sub(p.book.avgBot)
	lifecycle := precision.Money(spread.Mul(reduced).Mul(p.contractSize))
	p.realizedPnL = p.realizedCarry.Add(lifecycle)
}

// equity covers stocks, certificates, funds and ETFs.
type equity struct{ averageCost }

func (equity) markToMarket(p *Position, price decimal.Decimal) {
	p.marketValue = precision.Money(p.quantity.Mul(p.contractSize).Mul(price))
	p.exposure = p.marketValue
	if p.action == types.DirectionLong {
		p.unrealizedPnL = precision.Money(p.marketValue.Sub(p.costBasis))
	} else {
		p.unrealizedPnL = precision.Money(p.costBasis.Abs().Sub(p.marketValue.Abs()))
	}
}

// future keeps the notional in exposure and reports its unrealized PnL as the
// market value, since a future is settled on its variation margin.
type future struct{ averageCost }

func (future) markToMarket(p *Position, price decimal.Decimal) {
	p.exposure = precision.Money(p.quantity.Mul(p.contractSize).Mul(price))
	if p.action == types.DirectionLong {
		p.unrealizedPnL = precision.Money(p.exposure.Sub(p.costBasis))
	} else {
		p.unrealizedPnL = precision.Money(p.costBasis.Abs().Sub(p.exposure.Abs()))
	}
	p.marketValue = p.unrealizedPnL
}

// option prices are per unit of underlying; the contract size scales them to
// the premium of one contract.
type option struct {
	averageCost
	strike decimal.Decimal
}

// markToMarket needs no stance switch: cost basis and market value both carry
// the sign of the quantity.
func (option) markToMarket(p *Position, price decimal.Decimal) {
	p.marketValue = precision.Money(p.quantity.Mul(p.contractSize).Mul(price))
	p.exposure = p.marketValue
	p.unrealizedPnL = precision.Money(p.marketValue.Sub(p.costBasis))
}
