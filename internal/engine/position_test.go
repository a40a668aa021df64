package engine

import (
	"errors"
	"testing"
	"time"

	"positions/types"

	"github.com/shopspring/decimal"
)

type step struct {
	side  types.Side
	qty   string
	price string
}

type wantState struct {
	action        types.Direction
	quantity      string
	costBasis     string
	marketValue   string
	unrealizedPnL string
	realizedPnL   string
}

func TestPositionTransact(t *testing.T) {
	tests := []struct {
		name     string
		stance   types.Direction
		qty      string
		price    string
		steps    []step
		want     wantState
		wantLogs []types.LogEventKind
	}{
		{
			name:   "open long",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "74.78",
			want: wantState{
				action:        types.DirectionLong,
				quantity:      "100",
				costBasis:     "7478",
				marketValue:   "7478",
				unrealizedPnL: "0",
				realizedPnL:   "0",
			},
			wantLogs: []types.LogEventKind{types.LogInception},
		},
		{
			name:   "scale-in long (avg cost updates)",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "74.78",
			steps: []step{
				{types.SideTypeBuy, "200", "74.63"},
				{types.SideTypeBuy, "150", "74.62"},
			},
			want: wantState{
				action:        types.DirectionLong,
				quantity:      "450",
				costBasis:     "33597",
				marketValue:   "33579",
				unrealizedPnL: "-18",
				realizedPnL:   "0",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogTrade, types.LogTrade},
		},
		{
			name:   "reduce long",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "74.78",
			steps: []step{
				{types.SideTypeBuy, "200", "74.63"},
				{types.SideTypeBuy, "150", "74.62"},
				{types.SideTypeSell, "200", "74.58"},
			},
			want: wantState{
				action:        types.DirectionLong,
				quantity:      "250",
				costBasis:     "18665",
				marketValue:   "18645",
				unrealizedPnL: "-20",
				realizedPnL:   "-16",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogTrade, types.LogTrade, types.LogTrade},
		},
		{
			name:   "long round trip",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "74.78",
			steps: []step{
				{types.SideTypeBuy, "200", "74.63"},
				{types.SideTypeBuy, "150", "74.62"},
				{types.SideTypeSell, "200", "74.58"},
				{types.SideTypeSell, "250", "75.26"},
				// quote after close
				{types.SideTypeBuy, "0", "77.75"},
			},
			want: wantState{
				action:        types.DirectionLong,
				quantity:      "0",
				costBasis:     "0",
				marketValue:   "0",
				unrealizedPnL: "0",
				realizedPnL:   "134",
			},
			wantLogs: []types.LogEventKind{
				types.LogInception, types.LogTrade, types.LogTrade, types.LogTrade, types.LogClose, types.LogClose,
			},
		},
		{
			name:   "flip long -> short",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "10",
			steps: []step{
				{types.SideTypeSell, "150", "12"},
			},
			want: wantState{
				action:        types.DirectionShort,
				quantity:      "-50",
				costBasis:     "-600",
				marketValue:   "-600",
				unrealizedPnL: "0",
				realizedPnL:   "200",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogClose, types.LogInception},
		},
		{
			name:   "flip then cover keeps realized pnl",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "10",
			steps: []step{
				{types.SideTypeSell, "150", "12"},
				{types.SideTypeBuy, "50", "11"},
			},
			want: wantState{
				action:        types.DirectionShort,
				quantity:      "0",
				costBasis:     "0",
				marketValue:   "0",
				unrealizedPnL: "0",
				realizedPnL:   "250",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogClose, types.LogInception, types.LogClose},
		},
		{
			name:   "short marked in profit",
			stance: types.DirectionShort,
			qty:    "100",
			price:  "50",
			steps: []step{
				{types.SideTypeSell, "0", "45"},
			},
			want: wantState{
				action:        types.DirectionShort,
				quantity:      "-100",
				costBasis:     "-5000",
				marketValue:   "-4500",
				unrealizedPnL: "500",
				realizedPnL:   "0",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogMarketUpdate},
		},
		{
			name:   "short round trip",
			stance: types.DirectionShort,
			qty:    "100",
			price:  "50",
			steps: []step{
				{types.SideTypeBuy, "100", "45"},
			},
			want: wantState{
				action:        types.DirectionShort,
				quantity:      "0",
				costBasis:     "0",
				marketValue:   "0",
				unrealizedPnL: "0",
				realizedPnL:   "500",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogClose},
		},
		{
			name:   "zero opposite quantity only revalues",
			stance: types.DirectionLong,
			qty:    "100",
			price:  "10",
			steps: []step{
				{types.SideTypeSell, "0", "11"},
			},
			want: wantState{
				action:        types.DirectionLong,
				quantity:      "100",
				costBasis:     "1000",
				marketValue:   "1100",
				unrealizedPnL: "100",
				realizedPnL:   "0",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogMarketUpdate},
		},
		{
			name:   "trade after close reopens",
			stance: types.DirectionLong,
			qty:    "10",
			price:  "100",
			steps: []step{
				{types.SideTypeSell, "10", "110"},
				{types.SideTypeBuy, "5", "120"},
			},
			want: wantState{
				action:        types.DirectionLong,
				quantity:      "5",
				costBasis:     "600",
				marketValue:   "600",
				unrealizedPnL: "0",
				realizedPnL:   "100",
			},
			wantLogs: []types.LogEventKind{types.LogInception, types.LogClose, types.LogInception},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := NewPosition(tc.stance, "XOM", dec(tc.qty), dec(tc.price), types.AssetClassStock, "USD", day(1), dec("1"), decimal.NullDecimal{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, s := range tc.steps {
				if err := pos.Transact(s.side, dec(s.qty), dec(s.price), day(i+2)); err != nil {
					t.Fatalf("step %d: unexpected error: %v", i, err)
				}
				assertBookInvariants(t, pos)
			}
			assertState(t, pos, tc.want)

			if got := pos.Log().Len(); got != len(tc.wantLogs) {
				t.Fatalf("log length mismatch: got %d want %d", got, len(tc.wantLogs))
			}
			for i, entry := range pos.Log().All() {
				if entry.Event != tc.wantLogs[i] {
					t.Fatalf("log row %d: got %s want %s", i, entry.Event, tc.wantLogs[i])
				}
			}
		})
	}
}

func TestPositionRoundTripAverages(t *testing.T) {
	pos := newStock(t, types.DirectionLong, "100", "74.78")
	mustTransact(t, pos, types.SideTypeBuy, "200", "74.63")
	mustTransact(t, pos, types.SideTypeBuy, "150", "74.62")

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"avg bot", pos.AvgBot(), "74.66"},
		{"avg price", pos.AvgPrice(), "74.66"},
		{"buys", pos.Buys(), "450"},
		{"total bot", pos.TotalBot(), "33597"},
		{"net total", pos.NetTotal(), "-33597"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s mismatch: got %s want %s", c.name, c.got, c.want)
		}
	}

	mustTransact(t, pos, types.SideTypeSell, "200", "74.58")
	mustTransact(t, pos, types.SideTypeSell, "250", "75.26")

	checks = []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"avg sld", pos.AvgSld(), "74.9577778"},
		{"sells", pos.Sells(), "450"},
		{"total sld", pos.TotalSld(), "33731"},
		{"net total", pos.NetTotal(), "134"},
		{"realized", pos.RealizedPnL(), "134"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s mismatch: got %s want %s", c.name, c.got, c.want)
		}
	}
	if !pos.Closed() {
		t.Fatalf("expected position to be closed")
	}
}

func TestPositionFlipRebuildsBook(t *testing.T) {
	pos := newStock(t, types.DirectionLong, "100", "10")
	mustTransact(t, pos, types.SideTypeSell, "150", "12")

	if !pos.Buys().IsZero() {
		t.Fatalf("buys not reset: got %s", pos.Buys())
	}
	if !pos.Sells().Equal(dec("50")) {
		t.Fatalf("sells mismatch: got %s want 50", pos.Sells())
	}
	if !pos.AvgSld().Equal(dec("12")) || !pos.AvgPrice().Equal(dec("12")) {
		t.Fatalf("averages mismatch: avg sld %s avg price %s", pos.AvgSld(), pos.AvgPrice())
	}

	closeRow := pos.Log().At(1)
	if !closeRow.RealizedPnL.Decimal.Equal(dec("200")) || !closeRow.Quantity.Decimal.IsZero() {
		t.Fatalf("close row mismatch: %+v", closeRow)
	}
	inception, _ := pos.Log().Last()
	if !inception.Quantity.Decimal.Equal(dec("-50")) || !inception.CostBasis.Equal(dec("-600")) {
		t.Fatalf("inception row mismatch: %+v", inception)
	}
	if !inception.UnitCost.Decimal.Equal(dec("12")) {
		t.Fatalf("unit cost mismatch: got %s want 12", inception.UnitCost.Decimal)
	}
}

func TestPositionReopenStartsFreshBook(t *testing.T) {
	pos := newStock(t, types.DirectionLong, "10", "100")
	mustTransact(t, pos, types.SideTypeSell, "10", "110")
	mustTransact(t, pos, types.SideTypeSell, "4", "90")

	if pos.Action() != types.DirectionShort {
		t.Fatalf("action mismatch: got %s want SHORT", pos.Action())
	}
	if !pos.AvgSld().Equal(dec("90")) || !pos.AvgBot().IsZero() {
		t.Fatalf("book not rebuilt: avg sld %s avg bot %s", pos.AvgSld(), pos.AvgBot())
	}
	if !pos.RealizedPnL().Equal(dec("100")) {
		t.Fatalf("realized mismatch: got %s want 100", pos.RealizedPnL())
	}
}

func TestPositionLogRow(t *testing.T) {
	pos := newStock(t, types.DirectionLong, "100", "74.78")
	row, ok := pos.Log().Last()
	if !ok {
		t.Fatalf("empty log")
	}

	want := types.LogEntry{
		Date:          day(1),
		Quantity:      valid(dec("100")),
		Price:         valid(dec("74.78")),
		MarketValue:   dec("7478"),
		UnitCost:      valid(dec("74.78")),
		CostBasis:     dec("7478"),
		UnrealizedPnL: valid(dec("0")),
		RealizedPnL:   valid(dec("0")),
		Currency:      "USD",
		Event:         types.LogInception,
	}
	if !row.Date.Equal(want.Date) || row.Currency != want.Currency || row.Event != want.Event {
		t.Fatalf("row header mismatch: got %+v", row)
	}
	nulls := []struct {
		name      string
		got, want decimal.NullDecimal
	}{
		{"quantity", row.Quantity, want.Quantity},
		{"price", row.Price, want.Price},
		{"unit cost", row.UnitCost, want.UnitCost},
		{"unrealized", row.UnrealizedPnL, want.UnrealizedPnL},
		{"realized", row.RealizedPnL, want.RealizedPnL},
	}
	for _, n := range nulls {
		if !n.got.Valid || !n.got.Decimal.Equal(n.want.Decimal) {
			t.Errorf("%s mismatch: got %v want %s", n.name, n.got, n.want.Decimal)
		}
	}
	if !row.MarketValue.Equal(want.MarketValue) || !row.CostBasis.Equal(want.CostBasis) {
		t.Errorf("values mismatch: mv %s cb %s", row.MarketValue, row.CostBasis)
	}

	// Entries hands out a copy.
	entries := pos.Log().Entries()
	entries[0].Event = types.LogClose
	if pos.Log().At(0).Event != types.LogInception {
		t.Fatalf("log mutated through Entries")
	}
}

func TestPositionUpdateMarketValueDoesNotLog(t *testing.T) {
	pos := newStock(t, types.DirectionLong, "10", "100")
	if err := pos.UpdateMarketValue(dec("105")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Log().Len() != 1 {
		t.Fatalf("log grew: got %d rows", pos.Log().Len())
	}
	if !pos.MarketValue().Equal(dec("1050")) || !pos.UnrealizedPnL().Equal(dec("50")) {
		t.Fatalf("revalue mismatch: mv %s upnl %s", pos.MarketValue(), pos.UnrealizedPnL())
	}
	if err := pos.UpdateMarketValue(decimal.Zero); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("got error %v, want %v", err, ErrInvalidPrice)
	}
}

func TestNewPositionValidation(t *testing.T) {
	strike := decimal.NewNullDecimal(dec("50"))
	tests := []struct {
		name         string
		stance       types.Direction
		qty          string
		price        string
		class        types.AssetClass
		currency     string
		contractSize string
		strike       decimal.NullDecimal
		wantErr      error
	}{
		{"unknown stance", types.Direction("FLAT"), "1", "1", types.AssetClassStock, "USD", "1", decimal.NullDecimal{}, ErrUnknownSide},
		{"zero quantity", types.DirectionLong, "0", "1", types.AssetClassStock, "USD", "1", decimal.NullDecimal{}, ErrInvalidQuantity},
		{"negative price", types.DirectionLong, "1", "-1", types.AssetClassStock, "USD", "1", decimal.NullDecimal{}, ErrInvalidPrice},
		{"zero contract size", types.DirectionLong, "1", "1", types.AssetClassFuture, "USD", "0", decimal.NullDecimal{}, ErrInvalidContractSize},
		{"unknown currency", types.DirectionLong, "1", "1", types.AssetClassStock, "ZZZ", "1", decimal.NullDecimal{}, ErrInvalidCurrency},
		{"option without strike", types.DirectionLong, "1", "1", types.AssetClassOption, "USD", "100", decimal.NullDecimal{}, ErrMissingStrike},
		{"cash is not a position", types.DirectionLong, "1", "1", types.AssetClassCash, "USD", "1", strike, ErrUnsupportedAssetClass},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPosition(tc.stance, "K", dec(tc.qty), dec(tc.price), tc.class, tc.currency, day(1), dec(tc.contractSize), tc.strike)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestPositionTransactValidation(t *testing.T) {
	tests := []struct {
		name    string
		side    types.Side
		qty     string
		price   string
		wantErr error
	}{
		{"unknown side", types.Side("HOLD"), "1", "10", ErrUnknownSide},
		{"negative quantity", types.SideTypeBuy, "-1", "10", ErrInvalidQuantity},
		{"zero price", types.SideTypeSell, "1", "0", ErrInvalidPrice},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := newStock(t, types.DirectionLong, "10", "10")
			err := pos.Transact(tc.side, dec(tc.qty), dec(tc.price), day(2))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
			if pos.Log().Len() != 1 {
				t.Fatalf("rejected trade was logged")
			}
		})
	}
}

func TestNewPositionClearsStrikeForEquities(t *testing.T) {
	pos, err := NewPosition(types.DirectionLong, "XOM", dec("1"), dec("10"), types.AssetClassStock, "USD", day(1), dec("1"), decimal.NewNullDecimal(dec("50")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Strike().Valid {
		t.Fatalf("strike kept on a stock: %s", pos.Strike().Decimal)
	}
}

func assertState(t *testing.T, pos *Position, want wantState) {
	t.Helper()
	if pos.Action() != want.action {
		t.Fatalf("action mismatch: got %s want %s", pos.Action(), want.action)
	}
	fields := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"quantity", pos.Quantity(), want.quantity},
		{"cost basis", pos.CostBasis(), want.costBasis},
		{"market value", pos.MarketValue(), want.marketValue},
		{"unrealized pnl", pos.UnrealizedPnL(), want.unrealizedPnL},
		{"realized pnl", pos.RealizedPnL(), want.realizedPnL},
	}
	for _, f := range fields {
		if !f.got.Equal(dec(f.want)) {
			t.Errorf("%s mismatch: got %s want %s", f.name, f.got, f.want)
		}
	}
}

func assertBookInvariants(t *testing.T, pos *Position) {
	t.Helper()
	if !pos.Quantity().Equal(pos.Buys().Sub(pos.Sells())) {
		t.Fatalf("quantity %s != buys %s - sells %s", pos.Quantity(), pos.Buys(), pos.Sells())
	}
	if !pos.NetTotal().Equal(pos.TotalSld().Sub(pos.TotalBot())) {
		t.Fatalf("net total %s != total sld %s - total bot %s", pos.NetTotal(), pos.TotalSld(), pos.TotalBot())
	}
	if pos.Quantity().IsZero() && !pos.CostBasis().IsZero() {
		t.Fatalf("flat position with cost basis %s", pos.CostBasis())
	}
}

func newStock(t *testing.T, stance types.Direction, qty, price string) *Position {
	t.Helper()
	pos, err := NewPosition(stance, "XOM", dec(qty), dec(price), types.AssetClassStock, "USD", day(1), dec("1"), decimal.NullDecimal{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pos
}

func mustTransact(t *testing.T, pos *Position, side types.Side, qty, price string) {
	t.Helper()
	if err := pos.Transact(side, dec(qty), dec(price), day(pos.Log().Len()+1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}
