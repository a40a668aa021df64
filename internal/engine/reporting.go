package engine

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"positions/types"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Report struct {
	RunID uuid.UUID

	// Meta / period info
	StartDate   time.Time
	EndDate     time.Time
	TotalEvents int
	Rejected    int
	EventCounts map[types.LogEventKind]int

	// Totals
	Equity        decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal

	OpenPositions   int
	ClosedPositions int
	Positions       []types.PositionSnapshot
	Cash            []types.CashSnapshot
}

func (e *Engine) generateReport(result *ReplayResult) *Report {
	p := e.portfolio
	report := &Report{
		RunID:         e.runID,
		StartDate:     result.Start,
		EndDate:       result.End,
		TotalEvents:   result.Applied + len(result.Rejected),
		Rejected:      len(result.Rejected),
		EventCounts:   make(map[types.LogEventKind]int),
		Equity:        p.Equity(),
		UnrealizedPnL: p.UnrealizedPnL(),
		RealizedPnL:   p.RealizedPnL(),
	}

	count := func(l *Log) {
		for _, entry := range l.All() {
			report.EventCounts[entry.Event]++
		}
	}
	for _, key := range p.Keys() {
		pos, _ := p.Position(key)
		count(pos.Log())
		if pos.Quantity().IsZero() {
			report.ClosedPositions++
		} else {
			report.OpenPositions++
		}
		report.Positions = append(report.Positions, pos.Snapshot())
	}
	for _, key := range p.ClosedKeys() {
		for _, pos := range p.Closed(key) {
			count(pos.Log())
			report.ClosedPositions++
		}
	}
	for _, cur := range p.Currencies() {
		c, _ := p.Cash(cur)
		count(c.Log())
		report.Cash = append(report.Cash, c.Snapshot())
	}
	return report
}

func printReport(w io.Writer, name string, report *Report) {
	title := "Position Report"
	if name != "" {
		title = name
	}
	fmt.Fprintf(w, "===== %s =====\n", title)
	fmt.Fprintf(w, "Run:                   %s\n", report.RunID)
	fmt.Fprintf(w, "Period:                %s - %s\n", report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Events:                %d (%d rejected)\n", report.TotalEvents, report.Rejected)

	fmt.Fprintln(w, "\n-- Log Rows --")
	kinds := make([]string, 0, len(report.EventCounts))
	for kind := range report.EventCounts {
		kinds = append(kinds, string(kind))
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "%-23s%d\n", kind+":", report.EventCounts[types.LogEventKind(kind)])
	}

	fmt.Fprintln(w, "\n-- Totals --")
	fmt.Fprintf(w, "Equity:                %s\n", report.Equity.StringFixed(2))
	fmt.Fprintf(w, "Unrealized PnL:        %s\n", report.UnrealizedPnL.StringFixed(2))
	fmt.Fprintf(w, "Realized PnL:          %s\n", report.RealizedPnL.StringFixed(2))
	fmt.Fprintf(w, "Open Positions:        %d\n", report.OpenPositions)
	fmt.Fprintf(w, "Closed Positions:      %d\n", report.ClosedPositions)

	if len(report.Positions) > 0 {
		fmt.Fprintln(w, "\n-- Positions --")
		for _, pos := range report.Positions {
			fmt.Fprintf(w, "%-10s %-6s %12s  mv %14s  upnl %14s  rpnl %14s\n",
				pos.Key,
				pos.Action,
				pos.Quantity.String(),
				formatAmount(pos.MarketValue, pos.Currency),
				formatAmount(pos.UnrealizedPnL, pos.Currency),
				formatAmount(pos.RealizedPnL, pos.Currency),
			)
		}
	}
	if len(report.Cash) > 0 {
		fmt.Fprintln(w, "\n-- Cash --")
		for _, c := range report.Cash {
			fmt.Fprintf(w, "%-10s %14s\n", c.Currency, formatAmount(c.MarketValue, c.Currency))
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", len(title)+12))
}

// formatAmount renders amount in the display format of the currency, falling
// back to the plain decimal for codes go-money does not know.
func formatAmount(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).RoundBank(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
