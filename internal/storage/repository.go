package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saldo/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
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

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements remote.TransactionWriter.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, ownerID string, e core.Entry) (core.Transaction, error) {
	tx := core.FromEntry(uuid.NewString(), ownerID, e)
	row, err := toRow(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := r.queries.InsertTransaction(ctx, row); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"owner_id", ownerID,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(2))

	return tx, nil
}

// PutTransaction stores a record that already carries its id. Used when
// copying records between stores; an existing id is left untouched.
func (r *SQLiteRepository) PutTransaction(ctx context.Context, tx core.Transaction) error {
	if _, err := r.queries.GetTransaction(ctx, tx.ID); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get transaction %s: %w", tx.ID, err)
	}
	row, err := toRow(tx)
	if err != nil {
		return err
	}
	if err := r.queries.InsertTransaction(ctx, row); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions implements remote.TransactionReader. Rows come back newest
// first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// GetTransaction implements remote.TransactionReader.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return fromRow(row)
}

// DeleteTransaction implements remote.TransactionDeleter.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// GetBudget implements remote.BudgetStore.
func (r *SQLiteRepository) GetBudget(ctx context.Context, ownerID string) (decimal.Decimal, bool, error) {
	row, err := r.queries.GetBudget(ctx, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get budget: %w", err)
	}
	return core.FromCents(row.AmountCents), true, nil
}

// UpsertBudget implements remote.BudgetStore.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	cents, err := core.CentsOf(amount)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	err = r.queries.UpsertBudget(ctx, BudgetRow{
		OwnerID:     ownerID,
		AmountCents: cents,
		UpdatedAt:   r.now().UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved to SQLite", "owner_id", ownerID, "amount", amount.StringFixed(2))
	return nil
}

// ListOwners returns every identity that owns at least one record.
func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	owners, err := r.queries.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

func toRow(tx core.Transaction) (TransactionRow, error) {
	cents, err := core.CentsOf(tx.Amount)
	if err != nil {
		return TransactionRow{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	return TransactionRow{
		ID:          tx.ID,
		OwnerID:     tx.OwnerID,
		Type:        string(tx.Type),
		CategoryID:  tx.CategoryID,
		AmountCents: cents,
		Description: tx.Description,
		CreatedAt:   tx.Date.UTC().Format(timeLayout),
	}, nil
}

func fromRow(row TransactionRow) (core.Transaction, error) {
	date, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at of %s: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Type:        core.TransactionType(row.Type),
		CategoryID:  row.CategoryID,
		Amount:      core.FromCents(row.AmountCents),
		Description: row.Description,
		Date:        date,
	}, nil
}
