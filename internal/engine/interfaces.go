package engine

import (
	"context"

	"positions/types"

	"github.com/google/uuid"
)

// logStore persists the outcome of a run. repository.Database implements it.
type logStore interface {
	SaveLog(ctx context.Context, runID uuid.UUID, key string, assetClass types.AssetClass, lifecycle int, entries []types.LogEntry) (int64, error)
	SaveSnapshot(ctx context.Context, runID uuid.UUID, view types.PortfolioView) error
}
