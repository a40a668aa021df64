package main

import (
	"context"
	"errors"
	"fmt"

	"positions/internal/config"
	"positions/internal/repository"
	"positions/types"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// setup loads the process configuration and builds the logger from it.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

type instrumentSource interface {
	GetInstrument(ctx context.Context, key string) (*types.Instrument, error)
}

// enrich fills the trade and quote fields the event file left out from the
// instrument reference data. Keys the source does not know are left as they
// are, for the portfolio to reject.
func enrich(ctx context.Context, src instrumentSource, events []types.Event) error {
	cache := make(map[string]*types.Instrument)
	lookup := func(key string) (*types.Instrument, error) {
		if inst, ok := cache[key]; ok {
			return inst, nil
		}
		inst, err := src.GetInstrument(ctx, key)
		if errors.Is(err, repository.ErrInstrumentNotFound) {
			inst, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		cache[key] = inst
		return inst, nil
	}

	for i := range events {
		switch {
		case events[i].Trade != nil:
			t := events[i].Trade
			if complete(t) {
				continue
			}
			inst, err := lookup(t.Key)
			if err != nil {
				return fmt.Errorf("instrument %s: %w", t.Key, err)
			}
			if inst == nil {
				continue
			}
			if t.AssetClass == "" {
				t.AssetClass = inst.AssetClass
			}
			if t.Currency == "" {
				t.Currency = inst.Currency
			}
			if t.ContractSize.IsZero() {
				t.ContractSize = inst.ContractSize
			}
			if !t.Strike.Valid {
				t.Strike = inst.Strike
			}
		case events[i].Quote != nil:
			q := events[i].Quote
			if q.AssetClass != "" && q.Currency != "" {
				continue
			}
			inst, err := lookup(q.Key)
			if err != nil {
				return fmt.Errorf("instrument %s: %w", q.Key, err)
			}
			if inst == nil {
				continue
			}
			if q.AssetClass == "" {
				q.AssetClass = inst.AssetClass
			}
			if q.Currency == "" {
				q.Currency = inst.Currency
			}
		}
	}
	return nil
}

// complete reports whether t carries everything its class is accounted with.
// Futures and options are scaled by their contract size, so a missing size
// is looked up rather than left to default to 1.
func complete(t *types.TradeEvent) bool {
	switch {
	case t.AssetClass == "" || t.Currency == "":
		return false
	case t.AssetClass == types.AssetClassOption && !t.Strike.Valid:
		return false
	case !t.AssetClass.EquityLike() && t.ContractSize.IsZero():
		return false
	}
	return true
}
