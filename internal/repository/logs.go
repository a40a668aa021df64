package repository

import (
	"context"

	"positions/types"

	"github.com/google/uuid"
)

// SaveLog bulk-inserts the rows of one position or cash log and returns the
// number of rows written. lifecycle tells apart the archived positions of a
// key; seq restarts at 0 in each of them.
func (db *Database) SaveLog(ctx context.Context, runID uuid.UUID, key string, assetClass types.AssetClass, lifecycle int, entries []types.LogEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	return db.logs.CopyLogRows(ctx, convertLogEntries(runID, key, assetClass, lifecycle, entries))
}

// SaveSnapshot stores the totals of a portfolio view. Saving the same run
// and time twice overwrites the first.
func (db *Database) SaveSnapshot(ctx context.Context, runID uuid.UUID, view types.PortfolioView) error {
	return db.logs.InsertSnapshot(ctx, insertSnapshotParams{
		RunID:         runID,
		TakenAt:       view.Time,
		Equity:        view.Equity,
		UnrealizedPnL: view.UnrealizedPnL,
		RealizedPnL:   view.RealizedPnL,
		OpenPositions: int32(len(view.Positions)),
	})
}

func convertLogEntries(runID uuid.UUID, key string, assetClass types.AssetClass, lifecycle int, entries []types.LogEntry) []logRow {
	rows := make([]logRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, logRow{
			RunID:         runID,
			Key:           key,
			AssetClass:    string(assetClass),
			Lifecycle:     int32(lifecycle),
			Seq:           int32(i),
			Date:          e.Date,
			Quantity:      e.Quantity,
			Price:         e.Price,
			MarketValue:   e.MarketValue,
			UnitCost:      e.UnitCost,
			CostBasis:     e.CostBasis,
			UnrealizedPnL: e.UnrealizedPnL,
			RealizedPnL:   e.RealizedPnL,
			Currency:      e.Currency,
			Event:         string(e.Event),
		})
	}
	return rows
}
