// Package postgres is the PostgreSQL backend for the store contracts.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	stock    INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	price    NUMERIC NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS products_name_idx ON products (name);

CREATE TABLE IF NOT EXISTS sales (
	id           TEXT PRIMARY KEY,
	buyer_name   TEXT NOT NULL,
	sale_date    TIMESTAMPTZ NOT NULL,
	total_amount NUMERIC NOT NULL,
	total_profit NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS sales_sale_date_idx ON sales (sale_date DESC);

-- product_id is deliberately not a foreign key: products may be deleted while sales keep their snapshots.
CREATE TABLE IF NOT EXISTS sale_items (
	sale_id      TEXT NOT NULL REFERENCES sales (id) ON DELETE CASCADE,
	line_no      INTEGER NOT NULL,
	product_id   TEXT NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	quantity     INTEGER NOT NULL CHECK (quantity >= 1),
	sale_price   NUMERIC NOT NULL,
	cost_price   NUMERIC NOT NULL,
	amount       NUMERIC NOT NULL,
	profit       NUMERIC NOT NULL,
	PRIMARY KEY (sale_id, line_no)
);

CREATE TABLE IF NOT EXISTS expenses (
	id           TEXT PRIMARY KEY,
	type         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	amount       NUMERIC NOT NULL,
	expense_date TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS expenses_expense_date_idx ON expenses (expense_date DESC);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_reports (
	id           BIGSERIAL PRIMARY KEY,
	report_date  TIMESTAMPTZ NOT NULL,
	total_sales  NUMERIC NOT NULL,
	gross_profit NUMERIC NOT NULL,
	expenses     NUMERIC NOT NULL,
	net_profit   NUMERIC NOT NULL,
	items_sold   INTEGER NOT NULL,
	sales_count  INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Store is the PostgreSQL backend.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool parses url, connects and pings.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// New wraps pool.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) Products() repository.ProductStore { return &productStore{s} }
func (s *Store) Sales() repository.SaleStore       { return &saleStore{s} }
func (s *Store) Expenses() repository.ExpenseStore { return &expenseStore{s} }
func (s *Store) Users() repository.UserStore       { return &userStore{s} }
func (s *Store) Reports() repository.ReportStore   { return s }
func (s *Store) Transactor() repository.Transactor { return s }

// WithinTransaction runs fn in a transaction carried by ctx. Nested calls join the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.NewStorageError("commit transaction", err)
	}
	return nil
}

// Atomic is true: a failed transaction rolls back every write.
func (s *Store) Atomic() bool { return true }

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

// SaveDailyReport appends a report row.
func (s *Store) SaveDailyReport(ctx context.Context, r models.DailyReport) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO daily_reports (report_date, total_sales, gross_profit, expenses, net_profit, items_sold, sales_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.Date, r.TotalSales, r.GrossProfit, r.Expenses, r.NetProfit, r.ItemsSold, r.SalesCount, r.CreatedAt)
	if err != nil {
		return models.NewStorageError("insert daily report", err)
	}
	return nil
}

func notFoundOr(err error, resource, id, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewStorageError(op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
