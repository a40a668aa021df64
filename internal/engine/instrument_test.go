package engine

import (
	"errors"
	"testing"

	"positions/types"

	"github.com/shopspring/decimal"
)

func TestFutureMarkToMarket(t *testing.T) {
	tests := []struct {
		name         string
		stance       types.Direction
		qty          string
		price        string
		contractSize string
		quote        string
		wantExposure string
		wantMV       string
		wantUPnL     string
	}{
		{
			name:         "long at entry",
			stance:       types.DirectionLong,
			qty:          "2",
			price:        "100",
			contractSize: "50",
			quote:        "100",
			wantExposure: "10000",
			wantMV:       "0",
			wantUPnL:     "0",
		},
		{
			name:         "long marked up",
			stance:       types.DirectionLong,
			qty:          "2",
			price:        "100",
			contractSize: "50",
			quote:        "102",
			wantExposure: "10200",
			wantMV:       "200",
			wantUPnL:     "200",
		},
		{
			name:         "short marked down",
			stance:       types.DirectionShort,
			qty:          "1",
			price:        "100",
			contractSize: "10",
			quote:        "90",
			wantExposure: "-900",
			wantMV:       "100",
			wantUPnL:     "100",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := NewPosition(tc.stance, "ES", dec(tc.qty), dec(tc.price), types.AssetClassFuture, "USD", day(1), dec(tc.contractSize), decimal.NullDecimal{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := pos.Quote(dec(tc.quote), day(2)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !pos.Exposure().Equal(dec(tc.wantExposure)) {
				t.Errorf("exposure mismatch: got %s want %s", pos.Exposure(), tc.wantExposure)
			}
			if !pos.MarketValue().Equal(dec(tc.wantMV)) {
				t.Errorf("market value mismatch: got %s want %s", pos.MarketValue(), tc.wantMV)
			}
			if !pos.UnrealizedPnL().Equal(dec(tc.wantUPnL)) {
				t.Errorf("unrealized mismatch: got %s want %s", pos.UnrealizedPnL(), tc.wantUPnL)
			}
		})
	}
}

func TestFutureRoundTripScalesByContractSize(t *testing.T) {
	pos, err := NewPosition(types.DirectionLong, "ES", dec("2"), dec("100"), types.AssetClassFuture, "USD", day(1), dec("50"), decimal.NullDecimal{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pos.TotalBot().Equal(dec("10000")) || !pos.CostBasis().Equal(dec("10000")) {
		t.Fatalf("notional mismatch: total bot %s cost basis %s", pos.TotalBot(), pos.CostBasis())
	}
	if err := pos.Transact(types.SideTypeSell, dec("2"), dec("103"), day(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pos.TotalSld().Equal(dec("10300")) {
		t.Errorf("total sld mismatch: got %s want 10300", pos.TotalSld())
	}
	if !pos.RealizedPnL().Equal(dec("300")) {
		t.Errorf("realized mismatch: got %s want 300", pos.RealizedPnL())
	}
	if !pos.Closed() {
		t.Errorf("expected position to be closed")
	}
}

func TestOptionPremiumPerUnit(t *testing.T) {
	tests := []struct {
		name     string
		stance   types.Direction
		qty      string
		premium  string
		quote    string
		wantCB   string
		wantMV   string
		wantUPnL string
	}{
		{
			name:     "long call gains",
			stance:   types.DirectionLong,
			qty:      "2",
			premium:  "500",
			quote:    "6",
			wantCB:   "1000",
			wantMV:   "1200",
			wantUPnL: "200",
		},
		{
			name:     "short put gains when premium falls",
			stance:   types.DirectionShort,
			qty:      "1",
			premium:  "300",
			quote:    "2",
			wantCB:   "-300",
			wantMV:   "-200",
			wantUPnL: "100",
		},
		{
			name:     "short put loses when premium rises",
			stance:   types.DirectionShort,
			qty:      "1",
			premium:  "300",
			quote:    "4",
			wantCB:   "-300",
			wantMV:   "-400",
			wantUPnL: "-100",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := NewPosition(tc.stance, "SPX P50", dec(tc.qty), dec(tc.premium), types.AssetClassOption, "USD", day(1), dec("100"), decimal.NewNullDecimal(dec("50")))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !pos.Strike().Valid || !pos.Strike().Decimal.Equal(dec("50")) {
				t.Fatalf("strike mismatch: got %v", pos.Strike())
			}
			if err := pos.Quote(dec(tc.quote), day(2)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !pos.CostBasis().Equal(dec(tc.wantCB)) {
				t.Errorf("cost basis mismatch: got %s want %s", pos.CostBasis(), tc.wantCB)
			}
			if !pos.MarketValue().Equal(dec(tc.wantMV)) {
				t.Errorf("market value mismatch: got %s want %s", pos.MarketValue(), tc.wantMV)
			}
			if !pos.UnrealizedPnL().Equal(dec(tc.wantUPnL)) {
				t.Errorf("unrealized mismatch: got %s want %s", pos.UnrealizedPnL(), tc.wantUPnL)
			}
		})
	}
}

func TestInstrumentFor(t *testing.T) {
	tests := []struct {
		class   types.AssetClass
		strike  decimal.NullDecimal
		want    instrument
		wantErr error
	}{
		{class: types.AssetClassStock, want: equity{}},
		{class: types.AssetClassEtf, want: equity{}},
		{class: types.AssetClassFund, want: equity{}},
		{class: types.AssetClassCertificate, want: equity{}},
		{class: types.AssetClassFuture, want: future{}},
		{class: types.AssetClassOption, strike: decimal.NewNullDecimal(dec("10")), want: option{strike: dec("10")}},
		{class: types.AssetClassOption, wantErr: ErrMissingStrike},
		{class: types.AssetClass("BOND"), wantErr: ErrUnsupportedAssetClass},
	}

	for _, tc := range tests {
		t.Run(string(tc.class), func(t *testing.T) {
			got, err := instrumentFor(tc.class, tc.strike)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got error %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch want := tc.want.(type) {
			case option:
				o, ok := got.(option)
				if !ok || !o.strike.Equal(want.strike) {
					t.Fatalf("got %#v, want %#v", got, tc.want)
				}
			default:
				if got != tc.want {
					t.Fatalf("got %#v, want %#v", got, tc.want)
				}
			}
		})
	}
}
