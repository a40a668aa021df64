package repository

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schema string

// dbtx is the part of a pgx pool or transaction the queries need.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

type instrumentRow struct {
	Key          string
	Name         string
	AssetClass   string
	Currency     string
	ContractSize decimal.Decimal
	Strike       decimal.NullDecimal
}

const getInstrument = `SELECT key, name, asset_class, currency, contract_size, strike
FROM instrument
WHERE key = $1`

func (q *queries) GetInstrument(ctx context.Context, key string) (instrumentRow, error) {
	row := q.db.QueryRow(ctx, getInstrument, key)
	var i instrumentRow
	err := row.Scan(
		&i.Key,
		&i.Name,
		&i.AssetClass,
		&i.Currency,
		&i.ContractSize,
		&i.Strike,
	)
	return i, err
}

type logRow struct {
	RunID         uuid.UUID
	Key           string
	AssetClass    string
	Lifecycle     int32
	Seq           int32
	Date          time.Time
	Quantity      decimal.NullDecimal
	Price         decimal.NullDecimal
	MarketValue   decimal.Decimal
	UnitCost      decimal.NullDecimal
	CostBasis     decimal.Decimal
	UnrealizedPnL decimal.NullDecimal
	RealizedPnL   decimal.NullDecimal
	Currency      string
	Event         string
}

var logColumns = []string{
	"run_id",
	"key",
	"asset_class",
	"lifecycle",
	"seq",
	"date",
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

func (q *queries) CopyLogRows(ctx context.Context, rows []logRow) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{"position_log"}, logColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				r.RunID,
				r.Key,
				r.AssetClass,
				r.Lifecycle,
				r.Seq,
				r.Date,
				r.Quantity,
				r.Price,
				r.MarketValue,
				r.UnitCost,
				r.CostBasis,
				r.UnrealizedPnL,
				r.RealizedPnL,
				r.Currency,
				r.Event,
			}, nil
		}))
}

const insertSnapshot = `INSERT INTO portfolio_snapshot (run_id, taken_at, equity, unrealized_pnl, realized_pnl, open_positions)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id, taken_at) DO UPDATE
SET equity = EXCLUDED.equity,
    unrealized_pnl = EXCLUDED.unrealized_pnl,
    realized_pnl = EXCLUDED.realized_pnl,
    open_positions = EXCLUDED.open_positions`

type insertSnapshotParams struct {
	RunID         uuid.UUID
	TakenAt       time.Time
	Equity        decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
	OpenPositions int32
}

func (q *queries) InsertSnapshot(ctx context.Context, arg insertSnapshotParams) error {
	_, err := q.db.Exec(ctx, insertSnapshot,
		arg.RunID,
		arg.TakenAt,
		arg.Equity,
		arg.UnrealizedPnL,
		arg.RealizedPnL,
		arg.OpenPositions,
	)
	return err
}

func (q *queries) ApplySchema(ctx context.Context) error {
	_, err := q.db.Exec(ctx, schema)
	return err
}
