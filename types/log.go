package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// LogEventKind labels a row of a position log.
type LogEventKind string

const (
	LogInception    LogEventKind = "Inception"
	LogTrade        LogEventKind = "Trade"
	LogMarketUpdate LogEventKind = "Market_Update"
	LogClose        LogEventKind = "Close"
	LogCashUpdate   LogEventKind = "Update"
)

// LogEntry is one row of a position or cash log. Cash rows leave the
// trading columns invalid and set Currency.
type LogEntry struct {
	Date          time.Time
	Quantity      decimal.NullDecimal
	Price         decimal.NullDecimal
	MarketValue   decimal.Decimal
	UnitCost      decimal.NullDecimal
	CostBasis     decimal.Decimal
	UnrealizedPnL decimal.NullDecimal
	RealizedPnL   decimal.NullDecimal
	Currency      string
	Event         LogEventKind
}
