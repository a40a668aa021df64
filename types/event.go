package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeTrade EventType = "TRADE"
	EventTypeQuote EventType = "QUOTE"
	EventTypeCash  EventType = "CASH"
)

// TradeEvent is a fill on an instrument. ContractSize may be left zero, in
// which case new positions use 1 and existing positions keep their own.
// History marks events read from history feeds, whose option prices are
// quoted per contract instead of per unit.
type TradeEvent struct {
	Key          string
	Side         Side
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Date         time.Time
	AssetClass   AssetClass
	Currency     string
	ContractSize decimal.Decimal
	Strike       decimal.NullDecimal
	History      bool
}

// QuoteEvent carries the latest price of an instrument together with the
// size the feed believes is held.
type QuoteEvent struct {
	Key        string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Date       time.Time
	AssetClass AssetClass
	Currency   string
}

// CashEvent is a balance reading of a currency account.
type CashEvent struct {
	Currency    string
	MarketValue decimal.Decimal
	CostBasis   decimal.Decimal
	Date        time.Time
}

// Event is one of TradeEvent, QuoteEvent or CashEvent, selected by Type.
type Event struct {
	Type  EventType
	Trade *TradeEvent
	Quote *QuoteEvent
	Cash  *CashEvent
}

func NewTradeEvent(
	key string,
	side Side,
	quantity decimal.Decimal,
	price decimal.Decimal,
	date time.Time,
	assetClass AssetClass,
	currency string,
) TradeEvent {
	return TradeEvent{
		Key:        key,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Date:       date,
		AssetClass: assetClass,
		Currency:   currency,
	}
}

func TradeOf(t TradeEvent) Event { return Event{Type: EventTypeTrade, Trade: &t} }
func QuoteOf(q QuoteEvent) Event { return Event{Type: EventTypeQuote, Quote: &q} }
func CashOf(c CashEvent) Event   { return Event{Type: EventTypeCash, Cash: &c} }

// Date returns the date of the wrapped event, or the zero time when empty.
func (e Event) Date() time.Time {
	switch {
	case e.Trade != nil:
		return e.Trade.Date
	case e.Quote != nil:
		return e.Quote.Date
	case e.Cash != nil:
		return e.Cash.Date
	}
	return time.Time{}
}

// Key returns the instrument key, or the currency for cash events.
func (e Event) Key() string {
	switch {
	case e.Trade != nil:
		return e.Trade.Key
	case e.Quote != nil:
		return e.Quote.Key
	case e.Cash != nil:
		return e.Cash.Currency
	}
	return ""
}
