package engine

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"positions/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

// Portfolio owns every position and cash balance and keeps the aggregate PnL
// over them. It is not safe for concurrent use; callers serialise mutations.
type Portfolio struct {
	positions map[string]*Position
	closed    map[string][]*Position
	cash      map[string]*Cash

	equity        decimal.Decimal
	unrealizedPnL decimal.Decimal
	realizedPnL   decimal.Decimal

	closedPolicy ClosedPolicy
	logger       *zap.Logger
}

func NewPortfolio(config *PortfolioConfig) *Portfolio {
	if config == nil {
		config = NewPortfolioConfig(RetainClosed, nil)
	}
	return &Portfolio{
		positions:    make(map[string]*Position),
		closed:       make(map[string][]*Position),
		cash:         make(map[string]*Cash),
		closedPolicy: config.closedPolicy,
		logger:       config.logger,
	}
}

// Apply dispatches an event to Transact, Quote or TransactCash.
func (p *Portfolio) Apply(ev types.Event) error {
	switch {
	case ev.Type == types.EventTypeTrade && ev.Trade != nil:
		return p.Transact(*ev.Trade)
	case ev.Type == types.EventTypeQuote && ev.Quote != nil:
		return p.Quote(*ev.Quote)
	case ev.Type == types.EventTypeCash && ev.Cash != nil:
		return p.TransactCash(*ev.Cash)
	default:
		return p.reject(ev.Key(), fmt.Errorf("%q: %w", ev.Type, ErrUnknownEvent))
	}
}

// Transact opens a position for an unseen key and trades the existing one
// otherwise.
func (p *Portfolio) Transact(t types.TradeEvent) error {
	if _, ok := p.positions[t.Key]; !ok {
		return p.Open(t)
	}
	return p.Modify(t)
}

// Open creates the position for t.Key from its first trade.
func (p *Portfolio) Open(t types.TradeEvent) error {
	if _, ok := p.positions[t.Key]; ok {
		return p.reject(t.Key, fmt.Errorf("instrument %s: %w", t.Key, ErrDuplicateInstrument))
	}
	if !t.Side.Valid() {
		return p.reject(t.Key, fmt.Errorf("%s: side %q: %w", t.Key, t.Side, ErrUnknownSide))
	}
	contractSize := t.ContractSize
	if contractSize.IsZero() {
		contractSize = one
	}
	pos, err := NewPosition(t.Side.Direction(), t.Key, t.Quantity, t.Price, t.AssetClass, t.Currency, t.Date, contractSize, t.Strike)
	if err != nil {
		return p.reject(t.Key, err)
	}
	p.positions[t.Key] = pos
	p.logger.Debug("position opened",
		zap.String("key", t.Key),
		zap.String("action", string(pos.Action())),
		zap.Stringer("quantity", pos.Quantity()),
	)
	p.updatePortfolio()
	return nil
}

// Modify trades an existing position. History-feed option prices are quoted
// per contract and are brought back to a unit price first.
func (p *Portfolio) Modify(t types.TradeEvent) error {
	pos, ok := p.positions[t.Key]
	if !ok {
		return p.reject(t.Key, fmt.Errorf("instrument %s: %w", t.Key, ErrUnknownInstrument))
	}
	if !t.ContractSize.IsZero() && !t.ContractSize.Equal(pos.ContractSize()) {
		return p.reject(t.Key, fmt.Errorf("%s: %s != %s: %w", t.Key, t.ContractSize, pos.ContractSize(), ErrContractSizeMismatch))
	}
	price := t.Price
	if t.History && pos.AssetClass() == types.AssetClassOption {
		price = price.Div(pos.ContractSize())
	}
	return p.trade(pos, t.Side, t.Quantity, price, t.Date)
}

// Quote refreshes the price of an existing position. A quote whose quantity
// matches the held quantity books nothing; otherwise the difference is
// traded.
func (p *Portfolio) Quote(q types.QuoteEvent) error {
	pos, ok := p.positions[q.Key]
	if !ok {
		return p.reject(q.Key, fmt.Errorf("instrument %s: %w", q.Key, ErrUnknownInstrument))
	}
	side, qty := pos.Action().Side(), decimal.Zero
	if !q.Quantity.Equal(pos.Quantity()) {
		delta := q.Quantity.Sub(pos.Quantity())
		side, qty = types.SideTypeBuy, delta.Abs()
		if delta.IsNegative() {
			side = types.SideTypeSell
		}
	}
	return p.trade(pos, side, qty, q.Price, q.Date)
}

func (p *Portfolio) trade(pos *Position, side types.Side, qty, price decimal.Decimal, date time.Time) error {
	before := pos.Action()
	if err := pos.Transact(side, qty, price, date); err != nil {
		return p.reject(pos.Key(), err)
	}
	if pos.Action() != before {
		p.logger.Debug("position flipped",
			zap.String("key", pos.Key()),
			zap.String("action", string(pos.Action())),
			zap.Stringer("quantity", pos.Quantity()),
		)
	}
	// A future marked at its cost logs Close while still held; only a flat
	// position is done.
	if pos.Closed() && pos.Quantity().IsZero() {
		p.logger.Debug("position closed",
			zap.String("key", pos.Key()),
			zap.Stringer("realized_pnl", pos.RealizedPnL()),
		)
		if p.closedPolicy == ArchiveClosed {
			delete(p.positions, pos.Key())
			p.closed[pos.Key()] = append(p.closed[pos.Key()], pos)
		}
	}
	p.updatePortfolio()
	return nil
}

// TransactCash creates or updates the balance of a currency.
func (p *Portfolio) TransactCash(c types.CashEvent) error {
	if cash, ok := p.cash[c.Currency]; ok {
		cash.Update(c.MarketValue, c.CostBasis, c.Date)
		return nil
	}
	cash, err := NewCash(c.Currency, c.MarketValue, c.CostBasis, c.Date)
	if err != nil {
		return p.reject(c.Currency, err)
	}
	p.cash[c.Currency] = cash
	return nil
}

func (p *Portfolio) reject(key string, err error) error {
	p.logger.Warn("event rejected", zap.String("key", key), zap.Error(err))
	return err
}

func (p *Portfolio) resetValues() {
	p.equity = decimal.Zero
	p.unrealizedPnL = decimal.Zero
	p.realizedPnL = decimal.Zero
}

// updatePortfolio recomputes the totals from every position. Archived
// positions still count for the PnL they realized. Cash carries no PnL and
// is left out.
func (p *Portfolio) updatePortfolio() {
	p.resetValues()
	add := func(pos *Position) {
		p.unrealizedPnL = p.unrealizedPnL.Add(pos.UnrealizedPnL())
		p.realizedPnL = p.realizedPnL.Add(pos.RealizedPnL())
		pnlDiff := pos.RealizedPnL().Sub(pos.UnrealizedPnL())
		p.equity = p.equity.Add(pos.MarketValue().Sub(pos.CostBasis()).Add(pnlDiff))
	}
	for _, pos := range p.positions {
		add(pos)
	}
	for _, lifecycles := range p.closed {
		for _, pos := range lifecycles {
			add(pos)
		}
	}
}

func (p *Portfolio) Equity() decimal.Decimal        { return p.equity }
func (p *Portfolio) UnrealizedPnL() decimal.Decimal { return p.unrealizedPnL }
func (p *Portfolio) RealizedPnL() decimal.Decimal   { return p.realizedPnL }

// Position returns the open position for key.
func (p *Portfolio) Position(key string) (*Position, bool) {
	pos, ok := p.positions[key]
	return pos, ok
}

// Closed returns the archived positions for key, oldest first.
func (p *Portfolio) Closed(key string) []*Position {
	return slices.Clone(p.closed[key])
}

func (p *Portfolio) Cash(currency string) (*Cash, bool) {
	c, ok := p.cash[currency]
	return c, ok
}

// Keys returns the keys of the open positions in lexical order.
func (p *Portfolio) Keys() []string {
	return slices.Sorted(maps.Keys(p.positions))
}

// ClosedKeys returns the keys having at least one archived position.
func (p *Portfolio) ClosedKeys() []string {
	return slices.Sorted(maps.Keys(p.closed))
}

func (p *Portfolio) Currencies() []string {
	return slices.Sorted(maps.Keys(p.cash))
}

func (p *Portfolio) GetPortfolioSnapshot(curTime time.Time) types.PortfolioView {
	view := types.PortfolioView{
		Equity:        p.equity,
		UnrealizedPnL: p.unrealizedPnL,
		RealizedPnL:   p.realizedPnL,
		Positions:     make(map[string]types.PositionSnapshot, len(p.positions)),
		Cash:          make(map[string]types.CashSnapshot, len(p.cash)),
		Time:          curTime,
	}
	for key, pos := range p.positions {
		view.Positions[key] = pos.Snapshot()
	}
	for cur, c := range p.cash {
		view.Cash[cur] = c.Snapshot()
	}
	return view
}
