package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/backend"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/remote/memory"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("OWNER_ID", "alice")
	t.Setenv("OWNER_HEADER", "")
	t.Setenv("LANGUAGE", "en")
	t.Setenv("CURRENCY", "EUR")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
}

// run executes saldoctl against store and returns what it printed.
func run(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.newBackend = func(context.Context, *config.Config, *log.Logger) (*backend.Result, error) {
		return &backend.Result{Store: store}, nil
	}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, store *memory.Store, args ...string) string {
	t.Helper()
	out, err := run(t, store, args...)
	require.NoError(t, err, out)
	return out
}

func TestBudgetShowAndSet(t *testing.T) {
	setTestEnv(t)
	store := memory.New()

	assert.Contains(t, mustRun(t, store, "budget"), "Budget: €0.00")
	assert.Contains(t, mustRun(t, store, "budget", "2000"), "Budget: €2,000.00")
	assert.Contains(t, mustRun(t, store, "budget"), "Budget: €2,000.00")

	_, err := run(t, store, "budget", "--", "-5")
	require.Error(t, err)
	assert.Equal(t, core.KindValidation, core.Kind(err))
}

func TestAddListDeleteScenario(t *testing.T) {
	setTestEnv(t)
	store := memory.New()

	mustRun(t, store, "budget", "2000.00")
	out := mustRun(t, store, "add", "income", "salary", "500", "Bonus")
	assert.Contains(t, out, "Added ")
	assert.Contains(t, out, "(Salary)")
	out = mustRun(t, store, "add", "expense", "food", "300", "Weekly", "groceries")
	assert.Contains(t, out, "Balance: €2,200.00")

	txs, err := store.ListTransactions(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	list := mustRun(t, store, "list")
	assert.Contains(t, list, "Weekly groceries")
	assert.Contains(t, list, "Bonus")
	assert.Contains(t, list, "-€300.00")

	expensesOnly := mustRun(t, store, "list", "--type", "expense")
	assert.Contains(t, expensesOnly, "Weekly groceries")
	assert.NotContains(t, expensesOnly, "Bonus")

	var expenseID string
	for _, tx := range txs {
		if tx.Type == core.Expense {
			expenseID = tx.ID
		}
	}
	require.NotEmpty(t, expenseID)
	out = mustRun(t, store, "delete", expenseID)
	assert.Contains(t, out, "Deleted "+expenseID)
	assert.Contains(t, out, "Balance: €2,500.00")

	// Already gone: still a success.
	mustRun(t, store, "rm", expenseID)
}

func TestAddRejectsInvalidDraftsBeforeBackend(t *testing.T) {
	setTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"zero amount", []string{"add", "expense", "food", "0", "Nothing"}},
		{"signed amount", []string{"add", "expense", "food", "--", "-3", "Refund"}},
		{"unknown type", []string{"add", "transfer", "food", "3", "Moved"}},
		{"category of other type", []string{"add", "expense", "salary", "3", "Oops"}},
		{"unknown category", []string{"add", "income", "lottery", "3", "Lucky"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp()
			opened := false
			a.newBackend = func(context.Context, *config.Config, *log.Logger) (*backend.Result, error) {
				opened = true
				return &backend.Result{Store: memory.New()}, nil
			}
			root := newRootCmd(a)
			root.SetOut(&bytes.Buffer{})
			root.SetArgs(tt.args)

			err := root.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Equal(t, core.KindValidation, core.Kind(err))
			assert.False(t, opened, "backend must not be touched")
			assert.Contains(t, describeError(err), "invalid input:")
		})
	}
}

func TestBackendFailureIsReported(t *testing.T) {
	setTestEnv(t)
	a := newApp()
	a.newBackend = func(context.Context, *config.Config, *log.Logger) (*backend.Result, error) {
		return nil, errors.New("disk full")
	}
	root := newRootCmd(a)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"list"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestInvalidConfigurationFailsEarly(t *testing.T) {
	setTestEnv(t)
	_, err := run(t, memory.New(), "--currency", "XYZ1", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestReport(t *testing.T) {
	setTestEnv(t)
	store := memory.New()
	mustRun(t, store, "budget", "2000")
	mustRun(t, store, "add", "income", "salary", "500", "Bonus")
	mustRun(t, store, "add", "expense", "food", "300", "Groceries")
	mustRun(t, store, "add", "expense", "transport", "100", "Train")

	out := mustRun(t, store, "report")
	for _, want := range []string{
		"Totals",
		"Total income",
		"€2,500.00",
		"€400.00",
		"€2,100.00",
		"Monthly trend",
		"Expenses by category",
		"Food",
		"75.0%",
		"Transport",
		"25.0%",
		"Income by category",
		"Salary",
		"100.0%",
		"Running balance",
		"Statistics",
	} {
		assert.Contains(t, out, want)
	}
}

func TestReportEmptyLedger(t *testing.T) {
	setTestEnv(t)
	out := mustRun(t, memory.New(), "report", "--points", "0")
	assert.Contains(t, out, "none")
	assert.NotContains(t, out, "Running balance")
	assert.Contains(t, out, "Average expense")
}

func TestSpanishLabels(t *testing.T) {
	setTestEnv(t)
	store := memory.New()
	mustRun(t, store, "add", "expense", "food", "45,5", "Mercado")

	out := mustRun(t, store, "--lang", "es", "list")
	assert.Contains(t, out, "Alimentación")
	assert.Contains(t, out, "-45,50 €")
}

func TestOwnerFlagIsolatesLedgers(t *testing.T) {
	setTestEnv(t)
	store := memory.New()
	mustRun(t, store, "--owner", "bob", "add", "expense", "food", "10", "Bob's lunch")

	assert.Contains(t, mustRun(t, store, "list"), "No transactions")
	assert.Contains(t, mustRun(t, store, "--owner", "bob", "list"), "Bob's lunch")
}

func TestCategories(t *testing.T) {
	setTestEnv(t)
	out := mustRun(t, memory.New(), "categories")
	assert.Contains(t, out, "otherExpenses")
	assert.Contains(t, out, "Freelance Work")
}

func TestBar(t *testing.T) {
	assert.Equal(t, 20, len([]rune(bar(0))))
	assert.Equal(t, "██████████░░░░░░░░░░", bar(50))
	assert.Equal(t, "████████████████████", bar(140))
}
