package google

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func TestParseTransactionRows(t *testing.T) {
	values := [][]interface{}{
		transactionHeader,
		{"t1", "alice", "expense", "food", "12.50", "lunch", "2026-03-01T12:00:00Z"},
		{},
		{"t2", "bob", "Income", "salary", 2000.0, "march", "2026-03-01T08:00:00.5Z"},
		{"t3", "alice", "expense", "transport", "3,20", "bus", "2026-03-02T07:00:00+01:00"},
	}

	rows, err := parseTransactionRows(values)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].index)
	assert.Equal(t, "t1", rows[0].tx.ID)
	assert.True(t, rows[0].tx.Amount.Equal(decimal.RequireFromString("12.5")))

	assert.Equal(t, 3, rows[1].index, "blank rows keep their position")
	assert.Equal(t, core.Income, rows[1].tx.Type)
	assert.True(t, rows[1].tx.Amount.Equal(decimal.NewFromInt(2000)))

	assert.True(t, rows[2].tx.Amount.Equal(decimal.RequireFromString("3.20")))
	assert.True(t, rows[2].tx.Date.Equal(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)))
}

func TestParseTransactionRowsRejectsGarbage(t *testing.T) {
	for name, row := range map[string][]interface{}{
		"missing id":   {"", "alice", "expense", "food", "1", "x", "2026-03-01T12:00:00Z"},
		"bad type":     {"t1", "alice", "transfer", "food", "1", "x", "2026-03-01T12:00:00Z"},
		"bad amount":   {"t1", "alice", "expense", "food", "lots", "x", "2026-03-01T12:00:00Z"},
		"bad date":     {"t1", "alice", "expense", "food", "1", "x", "yesterday"},
		"missing date": {"t1", "alice", "expense", "food", "1", "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseTransactionRows([][]interface{}{row})
			assert.Error(t, err)
		})
	}
}

func TestTransactionValuesRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID: "t1", OwnerID: "alice", Type: core.Expense, CategoryID: "health",
		Amount: decimal.RequireFromString("45.10"), Description: "pharmacy",
		Date: time.Date(2026, 4, 5, 10, 11, 12, 13, time.UTC),
	}
	rows, err := parseTransactionRows([][]interface{}{transactionValues(tx)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, tx.ID, rows[0].tx.ID)
	assert.True(t, rows[0].tx.Date.Equal(tx.Date))
	assert.True(t, rows[0].tx.Amount.Equal(tx.Amount))
}

func TestParseBudgetRows(t *testing.T) {
	rows, err := parseBudgetRows([][]interface{}{
		budgetHeader,
		{"alice", "2000.00", "2026-01-01T00:00:00Z"},
		{"bob", "0"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].ownerID)
	assert.False(t, rows[0].updatedAt.IsZero())
	assert.True(t, rows[1].amount.IsZero())
}
