package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"positions/types"

	"github.com/shopspring/decimal"
)

// writeLogsCSVFile writes every log of p to a CSV file at the given path.
func writeLogsCSVFile(path string, p *Portfolio) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create logs file: %w", err)
	}
	defer f.Close()

	return WriteLogsCSV(f, p)
}

// WriteLogsCSV writes the logs of p to any io.Writer as CSV. With keys, only
// those instruments (or currencies) are written; otherwise open positions,
// then archived ones, then cash. Null fields are empty cells.
func WriteLogsCSV(w io.Writer, p *Portfolio, keys ...string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"key",
		"asset_class",
		"lifecycle",
		"date", // YYYY-MM-DD
		"quantity",
		"price",
		"market_value",
		"unit_cost",
		"cost_basis",
		"unrealized_pnl",
		"realized_pnl",
		"currency",
		"event",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	wanted := func(key string) bool {
		return len(keys) == 0 || slices.Contains(keys, key)
	}

	for _, key := range p.Keys() {
		if !wanted(key) {
			continue
		}
		pos, _ := p.Position(key)
		lifecycle := len(p.closed[key])
		if err := writeLogRows(cw, key, pos.AssetClass(), lifecycle, pos.Log()); err != nil {
			return err
		}
	}
	for _, key := range p.ClosedKeys() {
		if !wanted(key) {
			continue
		}
		for i, pos := range p.Closed(key) {
			if err := writeLogRows(cw, key, pos.AssetClass(), i, pos.Log()); err != nil {
				return err
			}
		}
	}
	for _, cur := range p.Currencies() {
		if !wanted(cur) {
			continue
		}
		c, _ := p.Cash(cur)
		if err := writeLogRows(cw, cur, types.AssetClassCash, 0, c.Log()); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeLogRows(cw *csv.Writer, key string, class types.AssetClass, lifecycle int, l *Log) error {
	for _, entry := range l.All() {
		record := []string{
			key,
			string(class),
			strconv.Itoa(lifecycle),
			entry.Date.Format(time.DateOnly),
			nullString(entry.Quantity),
			nullString(entry.Price),
			entry.MarketValue.String(),
			nullString(entry.UnitCost),
			entry.CostBasis.String(),
			nullString(entry.UnrealizedPnL),
			nullString(entry.RealizedPnL),
			entry.Currency,
			string(entry.Event),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
