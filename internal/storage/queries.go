package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Row types mirror the tables one to one.
type (
	TransactionRow struct {
		ID          string
		OwnerID     string
		Type        string
		CategoryID  string
		AmountCents int64
		Description string
		CreatedAt   string
	}

	BudgetRow struct {
		OwnerID     string
		AmountCents int64
		UpdatedAt   string
	}
)

const insertTransaction = `INSERT INTO transactions (id, owner_id, type, category_id, amount_cents, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		r.ID, r.OwnerID, r.Type, r.CategoryID, r.AmountCents, r.Description, r.CreatedAt)
	return err
}

const selectTransactionsByOwner = `SELECT id, owner_id, type, category_id, amount_cents, description, created_at
FROM transactions WHERE owner_id = ? ORDER BY created_at DESC, id ASC`

func (q *Queries) ListTransactionsByOwner(ctx context.Context, ownerID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, selectTransactionsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Type, &r.CategoryID, &r.AmountCents, &r.Description, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const selectTransaction = `SELECT id, owner_id, type, category_id, amount_cents, description, created_at
FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	var r TransactionRow
	err := q.db.QueryRowContext(ctx, selectTransaction, id).
		Scan(&r.ID, &r.OwnerID, &r.Type, &r.CategoryID, &r.AmountCents, &r.Description, &r.CreatedAt)
	return r, err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const selectBudget = `SELECT owner_id, amount_cents, updated_at FROM budgets WHERE owner_id = ?`

func (q *Queries) GetBudget(ctx context.Context, ownerID string) (BudgetRow, error) {
	var r BudgetRow
	err := q.db.QueryRowContext(ctx, selectBudget, ownerID).Scan(&r.OwnerID, &r.AmountCents, &r.UpdatedAt)
	return r, err
}

const upsertBudget = `INSERT INTO budgets (owner_id, amount_cents, updated_at) VALUES (?, ?, ?)
ON CONFLICT (owner_id) DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at`

func (q *Queries) UpsertBudget(ctx context.Context, r BudgetRow) error {
	_, err := q.db.ExecContext(ctx, upsertBudget, r.OwnerID, r.AmountCents, r.UpdatedAt)
	return err
}

const selectOwners = `SELECT owner_id FROM transactions UNION SELECT owner_id FROM budgets ORDER BY owner_id`

func (q *Queries) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, selectOwners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var owners []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}
