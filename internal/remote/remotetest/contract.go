// Package remotetest holds the behaviour every remote.Store adapter must
// share. Adapters call Run from their own tests.
package remotetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/remote"
)

// Run exercises the store returned by newStore. Each subtest gets a fresh
// store.
func Run(t *testing.T, newStore func(t *testing.T) remote.Store) {
	t.Helper()
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	entry := func(typ core.TransactionType, cat, amount, desc string) core.Entry {
		return core.Entry{
			Draft: core.Draft{
				Type:        typ,
				CategoryID:  cat,
				Amount:      decimal.RequireFromString(amount),
				Description: desc,
			},
			Date: date,
		}
	}

	t.Run("create assigns id and round-trips", func(t *testing.T) {
		s := newStore(t)
		tx, err := s.CreateTransaction(ctx, "alice", entry(core.Expense, "food", "12.34", "lunch"))
		require.NoError(t, err)
		require.NotEmpty(t, tx.ID)
		assert.Equal(t, "alice", tx.OwnerID)

		got, err := s.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, tx.ID, got.ID)
		assert.Equal(t, core.Expense, got.Type)
		assert.Equal(t, "food", got.CategoryID)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.34")), "amount %s", got.Amount)
		assert.Equal(t, "lunch", got.Description)
		assert.True(t, got.Date.Equal(date), "date %s", got.Date)
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := newStore(t)
		a, err := s.CreateTransaction(ctx, "alice", entry(core.Income, "salary", "1", "a"))
		require.NoError(t, err)
		b, err := s.CreateTransaction(ctx, "alice", entry(core.Income, "salary", "1", "a"))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("list filters by owner", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreateTransaction(ctx, "alice", entry(core.Expense, "food", "1", "a"))
		require.NoError(t, err)
		_, err = s.CreateTransaction(ctx, "bob", entry(core.Expense, "food", "2", "b"))
		require.NoError(t, err)

		list, err := s.ListTransactions(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "alice", list[0].OwnerID)

		none, err := s.ListTransactions(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete and not found", func(t *testing.T) {
		s := newStore(t)
		tx, err := s.CreateTransaction(ctx, "alice", entry(core.Expense, "food", "1", "a"))
		require.NoError(t, err)

		require.NoError(t, s.DeleteTransaction(ctx, tx.ID))
		_, err = s.GetTransaction(ctx, tx.ID)
		assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
		assert.True(t, errors.Is(s.DeleteTransaction(ctx, tx.ID), core.ErrNotFound))
	})

	t.Run("budget upsert", func(t *testing.T) {
		s := newStore(t)
		_, found, err := s.GetBudget(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, s.UpsertBudget(ctx, "alice", decimal.RequireFromString("2000")))
		require.NoError(t, s.UpsertBudget(ctx, "alice", decimal.RequireFromString("2500.50")))

		amt, found, err := s.GetBudget(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, amt.Equal(decimal.RequireFromString("2500.50")), "budget %s", amt)

		_, found, err = s.GetBudget(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("oversized amounts never wrap", func(t *testing.T) {
		s := newStore(t)
		huge := decimal.RequireFromString("100000000000000000000")
		tx, err := s.CreateTransaction(ctx, "alice", entry(core.Expense, "food", huge.String(), "big"))
		if err == nil {
			got, err := s.GetTransaction(ctx, tx.ID)
			require.NoError(t, err)
			assert.True(t, got.Amount.Equal(huge), "amount %s", got.Amount)
		}

		budget := decimal.RequireFromString("99999999999999999999")
		if err := s.UpsertBudget(ctx, "alice", budget); err == nil {
			amt, found, err := s.GetBudget(ctx, "alice")
			require.NoError(t, err)
			assert.True(t, found)
			assert.True(t, amt.Equal(budget), "budget %s", amt)
		}
	})
}
