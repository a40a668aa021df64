package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrInstrumentNotFound = errors.New("not found in datasource")
	ErrNotConfigured      = errors.New("database url not configured")
)

type instrumentsRepository interface {
	GetInstrument(ctx context.Context, key string) (instrumentRow, error)
}
type logsRepository interface {
	CopyLogRows(ctx context.Context, rows []logRow) (int64, error)
	InsertSnapshot(ctx context.Context, arg insertSnapshotParams) error
}
type schemaRepository interface {
	ApplySchema(ctx context.Context) error
}

// Database struct that holds the database connection and queries.
type Database struct {
	instruments instrumentsRepository
	logs        logsRepository
	schema      schemaRepository
	conn        *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	if dbURL == "" {
		return nil, ErrNotConfigured
	}
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	queries := newQueries(conn)
	return &Database{
		instruments: queries,
		logs:        queries,
		schema:      queries,
		conn:        conn}, nil
}

// Migrate creates the tables when they do not exist yet.
func (db *Database) Migrate(ctx context.Context) error {
	if err := db.schema.ApplySchema(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
