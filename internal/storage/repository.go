package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rewards/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores purchase transactions. It serves the report as a
// transaction source and the ingest worker as a sink.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const insertTransaction = `
INSERT OR IGNORE INTO transactions
    (transaction_id, customer_id, customer_name, purchase_date, product_purchased, price)
VALUES (?, ?, ?, ?, ?, ?)`

const selectTransactions = `
SELECT transaction_id, customer_id, customer_name, purchase_date, product_purchased, price
FROM transactions
ORDER BY id`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, tx core.Transaction) (bool, error) {
	res, err := db.ExecContext(ctx, insertTransaction,
		tx.TransactionID,
		tx.CustomerID,
		tx.CustomerName,
		nullableDate(tx.PurchaseDate),
		tx.ProductPurchased,
		nullablePrice(tx.Price),
	)
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", tx.TransactionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// SaveTransaction stores tx unless a row with the same transaction ID
// exists. It reports whether a row was inserted.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}
	return insert(ctx, r.db, tx)
}

// SaveTransactions stores a batch atomically and returns how many rows were
// new.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("transaction %q: %w", tx.TransactionID, err)
		}
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	inserted := 0
	for _, tx := range txs {
		ok, err := insert(ctx, dbTx, tx)
		if err != nil {
			return 0, err
		}
		if ok {
			inserted++
		}
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// FetchTransactions returns every stored transaction in insertion order.
func (r *SQLiteRepository) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			tx    core.Transaction
			date  sql.NullString
			price sql.NullString
		)
		if err := rows.Scan(&tx.TransactionID, &tx.CustomerID, &tx.CustomerName, &date, &tx.ProductPurchased, &price); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if date.Valid {
			// Malformed stored dates stay empty, like any other bad input.
			tx.PurchaseDate, _ = core.ParseDate(date.String)
		}
		if price.Valid {
			tx.Price = core.ParsePrice(price.String)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CountTransactions returns the number of stored rows.
func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func nullableDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Time.Format(time.RFC3339Nano), Valid: true}
}

func nullablePrice(p core.Price) sql.NullString {
	if !p.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: p.Decimal.String(), Valid: true}
}
