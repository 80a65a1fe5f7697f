// Package remote defines the ports the ledger uses to reach its persistent
// store. Adapters live in sub-packages (memory, google) and in
// internal/storage (SQLite).
package remote

import (
	"context"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Ports for outbound adapters. Absent records are reported with
// core.ErrNotFound; every other error is a transport or permission failure.
type (
	TransactionWriter interface {
		// CreateTransaction persists the entry and returns the canonical
		// record carrying the id assigned by the store.
		CreateTransaction(ctx context.Context, ownerID string, e core.Entry) (core.Transaction, error)
	}

	TransactionReader interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	}

	TransactionDeleter interface {
		DeleteTransaction(ctx context.Context, id string) error
	}

	BudgetStore interface {
		// GetBudget reports found=false when the owner never set a budget.
		GetBudget(ctx context.Context, ownerID string) (amount decimal.Decimal, found bool, err error)
		UpsertBudget(ctx context.Context, ownerID string, amount decimal.Decimal) error
	}

	Store interface {
		TransactionWriter
		TransactionReader
		TransactionDeleter
		BudgetStore
	}
)
