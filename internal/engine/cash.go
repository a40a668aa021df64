package engine

import (
	"fmt"
	"time"

	"positions/internal/precision"
	"positions/types"

	"github.com/shopspring/decimal"
)

// Cash is a currency balance. It has no trade mechanics and no PnL, but its
// log rows line up with position rows.
type Cash struct {
	currency    string
	marketValue decimal.Decimal
	costBasis   decimal.Decimal
	log         Log
}

// NewCash opens a balance. costBasis is its value in the reporting currency,
// equal to marketValue for the reporting currency itself.
func NewCash(currency string, marketValue, costBasis decimal.Decimal, date time.Time) (*Cash, error) {
	if err := validateCurrency(currency); err != nil {
		return nil, fmt.Errorf("cash: %w", err)
	}
	c := &Cash{currency: currency}
	c.Update(marketValue, costBasis, date)
	return c, nil
}

func (c *Cash) Update(marketValue, costBasis decimal.Decimal, date time.Time) {
	c.marketValue = marketValue
	c.costBasis = costBasis
	c.log.append(types.LogEntry{
		Date:        date,
		MarketValue: precision.Money(marketValue),
		CostBasis:   precision.Money(costBasis),
		Currency:    c.currency,
		Event:       types.LogCashUpdate,
	})
}

func (c *Cash) Currency() string             { return c.currency }
func (c *Cash) MarketValue() decimal.Decimal { return c.marketValue }
func (c *Cash) CostBasis() decimal.Decimal   { return c.costBasis }
func (c *Cash) Log() *Log                    { return &c.log }

func (c *Cash) Snapshot() types.CashSnapshot {
	return types.CashSnapshot{
		Currency:    c.currency,
		MarketValue: c.marketValue,
		CostBasis:   c.costBasis,
	}
}
