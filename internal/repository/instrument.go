package repository

import (
	"context"
	"errors"
	"fmt"

	"positions/types"

	"github.com/jackc/pgx/v5"
)

// GetInstrument retrieves the reference data of an instrument by its key.
func (db *Database) GetInstrument(ctx context.Context, key string) (*types.Instrument, error) {
	row, err := db.instruments.GetInstrument(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("instrument %s %w", key, ErrInstrumentNotFound)
		}
		return nil, err
	}
	class, err := types.ParseAssetClass(row.AssetClass)
	if err != nil {
		return nil, fmt.Errorf("instrument %s: %w", key, err)
	}
	return &types.Instrument{
		Key:          row.Key,
		Name:         row.Name,
		AssetClass:   class,
		Currency:     row.Currency,
		ContractSize: row.ContractSize,
		Strike:       row.Strike,
	}, nil
}
