// Package feed reads event files: YAML lists of trades, quotes and cash
// readings in the order the broker reported them.
package feed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"positions/types"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRecord = errors.New("invalid event record")

// record is one event as written in the file. Amounts are kept as text so
// that no float ever touches them.
type record struct {
	Type         string `yaml:"type"`
	Key          string `yaml:"key"`
	Side         string `yaml:"side"`
	Quantity     string `yaml:"quantity"`
	Price        string `yaml:"price"`
	Date         string `yaml:"date"`
	AssetClass   string `yaml:"asset_class"`
	Currency     string `yaml:"currency"`
	ContractSize string `yaml:"contract_size"`
	Strike       string `yaml:"strike"`
	History      bool   `yaml:"history"`
	MarketValue  string `yaml:"market_value"`
	CostBasis    string `yaml:"cost_basis"`
}

// Load reads the event file at path.
func Load(path string) ([]types.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) ([]types.Event, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var records []record
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse event file: %w", err)
	}

	events := make([]types.Event, 0, len(records))
	for i, rec := range records {
		ev, err := rec.event()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r record) event() (types.Event, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return types.Event{}, err
	}
	switch strings.ToUpper(r.Type) {
	case string(types.EventTypeTrade):
		return r.trade(date)
	case string(types.EventTypeQuote):
		return r.quote(date)
	case string(types.EventTypeCash):
		return r.cash(date)
	default:
		return types.Event{}, fmt.Errorf("type %q: %w", r.Type, ErrInvalidRecord)
	}
}

func (r record) trade(date time.Time) (types.Event, error) {
	if r.Key == "" {
		return types.Event{}, fmt.Errorf("trade without key: %w", ErrInvalidRecord)
	}
	side, err := types.ParseSide(r.Side)
	if err != nil {
		return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
	}
	t := types.TradeEvent{
		Key:      r.Key,
		Side:     side,
		Date:     date,
		Currency: strings.ToUpper(r.Currency),
		History:  r.History,
	}
	if t.Quantity, err = required("quantity", r.Quantity); err != nil {
		return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
	}
	if t.Price, err = required("price", r.Price); err != nil {
		return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
	}
	if r.AssetClass != "" {
		if t.AssetClass, err = types.ParseAssetClass(r.AssetClass); err != nil {
			return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
		}
	}
	if r.ContractSize != "" {
		if t.ContractSize, err = required("contract_size", r.ContractSize); err != nil {
			return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
		}
	}
	if r.Strike != "" {
		strike, err := required("strike", r.Strike)
		if err != nil {
			return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
		}
		t.Strike = decimal.NewNullDecimal(strike)
	}
	return types.TradeOf(t), nil
}

func (r record) quote(date time.Time) (types.Event, error) {
	if r.Key == "" {
		return types.Event{}, fmt.Errorf("quote without key: %w", ErrInvalidRecord)
	}
	q := types.QuoteEvent{
		Key:      r.Key,
		Date:     date,
		Currency: strings.ToUpper(r.Currency),
	}
	var err error
	if q.Quantity, err = required("quantity", r.Quantity); err != nil {
		return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
	}
	if q.Price, err = required("price", r.Price); err != nil {
		return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
	}
	if r.AssetClass != "" {
		if q.AssetClass, err = types.ParseAssetClass(r.AssetClass); err != nil {
			return types.Event{}, fmt.Errorf("%s: %w", r.Key, err)
		}
	}
	return types.QuoteOf(q), nil
}

func (r record) cash(date time.Time) (types.Event, error) {
	if r.Currency == "" {
		return types.Event{}, fmt.Errorf("cash without currency: %w", ErrInvalidRecord)
	}
	c := types.CashEvent{
		Currency: strings.ToUpper(r.Currency),
		Date:     date,
	}
	var err error
	if c.MarketValue, err = required("market_value", r.MarketValue); err != nil {
		return types.Event{}, fmt.Errorf("%s: %w", c.Currency, err)
	}
	// Without a cost basis the balance is taken to be in the reporting currency.
	c.CostBasis = c.MarketValue
	if r.CostBasis != "" {
		if c.CostBasis, err = required("cost_basis", r.CostBasis); err != nil {
			return types.Event{}, fmt.Errorf("%s: %w", c.Currency, err)
		}
	}
	return types.CashOf(c), nil
}

func required(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing %s: %w", field, ErrInvalidRecord)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", field, s, ErrInvalidRecord)
	}
	return d, nil
}

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, ErrInvalidRecord)
	}
	return d, nil
}
