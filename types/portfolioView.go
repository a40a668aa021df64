package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioView is a point-in-time copy of the registry totals and of every
// open position and cash balance.
type PortfolioView struct {
	Equity        decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
	Positions     map[string]PositionSnapshot
	Cash          map[string]CashSnapshot
	Time          time.Time
}

type PositionSnapshot struct {
	Key           string
	AssetClass    AssetClass
	Currency      string
	Action        Direction
	Quantity      decimal.Decimal
	AvgPrice      decimal.Decimal
	CostBasis     decimal.Decimal
	MarketValue   decimal.Decimal
	Exposure      decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
	ContractSize  decimal.Decimal
	Strike        decimal.NullDecimal
}

type CashSnapshot struct {
	Currency    string
	MarketValue decimal.Decimal
	CostBasis   decimal.Decimal
}
