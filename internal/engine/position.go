package engine

import (
	"fmt"
	"time"

	"positions/internal/precision"
	"positions/types"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Position tracks the holding of one instrument under a single
// weighted-average-cost model. Quantity is signed: buys minus sells of the
// current lifecycle.
type Position struct {
	key          string
	assetClass   types.AssetClass
	currency     string
	entryDate    time.Time
	contractSize decimal.Decimal
	strike       decimal.NullDecimal
	model        instrument

	action        types.Direction
	book          book
	quantity      decimal.Decimal
	netTotal      decimal.Decimal
	costBasis     decimal.Decimal
	marketValue   decimal.Decimal
	exposure      decimal.Decimal
	unrealizedPnL decimal.Decimal
	realizedPnL   decimal.Decimal
	// realizedCarry is the PnL booked by earlier lifecycles of this position.
	realizedCarry decimal.Decimal

	log Log
}

// NewPosition opens a position of quantity units at price. For options the
// price is the premium of one contract and is divided by the contract size.
func NewPosition(
	stance types.Direction,
	key string,
	quantity decimal.Decimal,
	price decimal.Decimal,
	assetClass types.AssetClass,
	currency string,
	date time.Time,
	contractSize decimal.Decimal,
	strike decimal.NullDecimal,
) (*Position, error) {
	if !stance.Valid() {
		return nil, fmt.Errorf("%s: stance %q: %w", key, stance, ErrUnknownSide)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%s: initial quantity %s: %w", key, quantity, ErrInvalidQuantity)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%s: price %s: %w", key, price, ErrInvalidPrice)
	}
	if !contractSize.IsPositive() {
		return nil, fmt.Errorf("%s: contract size %s: %w", key, contractSize, ErrInvalidContractSize)
	}
	if err := validateCurrency(currency); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	model, err := instrumentFor(assetClass, strike)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if assetClass == types.AssetClassOption {
		price = price.Div(contractSize)
	} else {
		strike = decimal.NullDecimal{}
	}

	p := &Position{
		key:          key,
		assetClass:   assetClass,
		currency:     currency,
		entryDate:    date,
		contractSize: contractSize,
		strike:       strike,
		model:        model,
	}
	p.open(stance, quantity, price, date)
	return p, nil
}

// open starts a lifecycle: the book is rebuilt from scratch and the PnL
// realized so far is carried into it.
func (p *Position) open(stance types.Direction, qty, price decimal.Decimal, date time.Time) {
	p.realizedCarry = p.realizedPnL
	p.action = stance
	p.book = p.model.seed(stance, qty, price, p.contractSize)
	p.refresh()
	p.realizedPnL = p.realizedCarry
	p.unrealizedPnL = decimal.Zero
	p.model.markToMarket(p, price)
	p.record(date, price, types.LogInception)
}

// Transact books a trade of quantity units at price. A zero quantity only
// revalues the position. An opposing trade larger than the held quantity
// closes the position and opens the opposite stance with the remainder.
//
// A trade on a flat position opens a new lifecycle on the trade's side with a
// single Inception row, whichever side the old lifecycle was on. The Close row
// already ended the previous one, so no second Close is written and averages
// are never blended with the closed lifecycle's.
func (p *Position) Transact(side types.Side, quantity, price decimal.Decimal, date time.Time) error {
	if !side.Valid() {
		return fmt.Errorf("%s: side %q: %w", p.key, side, ErrUnknownSide)
	}
	if quantity.IsNegative() {
		return fmt.Errorf("%s: quantity %s: %w", p.key, quantity, ErrInvalidQuantity)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%s: price %s: %w", p.key, price, ErrInvalidPrice)
	}

	if p.quantity.IsZero() && quantity.IsPositive() {
		p.open(side.Direction(), quantity, price, date)
		return nil
	}

	closing := quantity
	remainder := decimal.Zero
	flip := side.Direction() != p.action && quantity.GreaterThan(p.quantity.Abs())
	if flip {
		closing = p.quantity.Abs()
		remainder = quantity.Sub(closing)
	}

	extends := side.Direction() == p.action
	p.book.fill(side, closing, price, p.contractSize, extends)
	p.refresh()
	p.model.realize(p)
	p.model.markToMarket(p, price)

	switch {
	case p.marketValue.IsZero() && p.unrealizedPnL.IsZero():
		p.record(date, price, types.LogClose)
	case closing.IsZero():
		p.record(date, price, types.LogMarketUpdate)
	default:
		p.record(date, price, types.LogTrade)
	}

	if flip {
		p.open(side.Direction(), remainder, price, date)
	}
	return nil
}

// Quote revalues the position at price and logs it without trading.
func (p *Position) Quote(price decimal.Decimal, date time.Time) error {
	return p.Transact(p.action.Side(), decimal.Zero, price, date)
}

// UpdateMarketValue revalues the position at price. Nothing is logged.
func (p *Position) UpdateMarketValue(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%s: price %s: %w", p.key, price, ErrInvalidPrice)
	}
	p.model.markToMarket(p, price)
	return nil
}

func (p *Position) refresh() {
	p.quantity = p.book.net()
	p.netTotal = precision.Money(p.book.totalSld.Sub(p.book.totalBot))
	p.costBasis = precision.Money(p.quantity.Mul(p.contractSize).Mul(p.book.avgPrice))
}

func (p *Position) record(date time.Time, price decimal.Decimal, kind types.LogEventKind) {
	unitCost := precision.Money(p.costBasis)
	if !p.quantity.IsZero() {
		unitCost = precision.Unit(p.costBasis.Div(p.quantity.Mul(p.contractSize)))
	}
	p.log.append(types.LogEntry{
		Date:          date,
		Quantity:      valid(precision.Money(p.quantity)),
		Price:         valid(precision.Unit(price)),
		MarketValue:   precision.Money(p.marketValue),
		UnitCost:      valid(unitCost),
		CostBasis:     precision.Money(p.costBasis),
		UnrealizedPnL: valid(precision.Money(p.unrealizedPnL)),
		RealizedPnL:   valid(precision.Money(p.realizedPnL)),
		Currency:      p.currency,
		Event:         kind,
	})
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func validateCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("%q: %w", code, ErrInvalidCurrency)
	}
	return nil
}

func (p *Position) Key() string                    { return p.key }
func (p *Position) AssetClass() types.AssetClass   { return p.assetClass }
func (p *Position) Currency() string               { return p.currency }
func (p *Position) EntryDate() time.Time           { return p.entryDate }
func (p *Position) ContractSize() decimal.Decimal  { return p.contractSize }
func (p *Position) Strike() decimal.NullDecimal    { return p.strike }
func (p *Position) Action() types.Direction        { return p.action }
func (p *Position) Quantity() decimal.Decimal      { return p.quantity }
func (p *Position) Net() decimal.Decimal           { return p.book.net() }
func (p *Position) Buys() decimal.Decimal          { return p.book.buys }
func (p *Position) Sells() decimal.Decimal         { return p.book.sells }
func (p *Position) AvgBot() decimal.Decimal        { return p.book.avgBot }
func (p *Position) AvgSld() decimal.Decimal        { return p.book.avgSld }
func (p *Position) AvgPrice() decimal.Decimal      { return p.book.avgPrice }
func (p *Position) TotalBot() decimal.Decimal      { return p.book.totalBot }
func (p *Position) TotalSld() decimal.Decimal      { return p.book.totalSld }
func (p *Position) NetTotal() decimal.Decimal      { return p.netTotal }
func (p *Position) CostBasis() decimal.Decimal     { return p.costBasis }
func (p *Position) MarketValue() decimal.Decimal   { return p.marketValue }
func (p *Position) Exposure() decimal.Decimal      { return p.exposure }
func (p *Position) UnrealizedPnL() decimal.Decimal { return p.unrealizedPnL }
func (p *Position) RealizedPnL() decimal.Decimal   { return p.realizedPnL }

// Log returns the position's history. Callers can read it but not append.
func (p *Position) Log() *Log { return &p.log }

// Closed reports whether the last row logged is Close, meaning nothing is
// left to mark. A future marked at its cost is Closed while still held.
func (p *Position) Closed() bool {
	last, ok := p.log.Last()
	return ok && last.Event == types.LogClose
}

func (p *Position) Snapshot() types.PositionSnapshot {
	return types.PositionSnapshot{
		Key:           p.key,
		AssetClass:    p.assetClass,
		Currency:      p.currency,
		Action:        p.action,
		Quantity:      p.quantity,
		AvgPrice:      p.book.avgPrice,
		CostBasis:     p.costBasis,
		MarketValue:   p.marketValue,
		Exposure:      p.exposure,
		UnrealizedPnL: p.unrealizedPnL,
		RealizedPnL:   p.realizedPnL,
		ContractSize:  p.contractSize,
		Strike:        p.strike,
	}
}
