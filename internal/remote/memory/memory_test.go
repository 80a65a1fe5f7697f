package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/remote"
	"saldo/internal/remote/remotetest"
)

func TestStoreContract(t *testing.T) {
	remotetest.Run(t, func(t *testing.T) remote.Store { return New() })
}

func TestNewWithBudgets(t *testing.T) {
	s := NewWithBudgets(map[string]decimal.Decimal{"alice": decimal.NewFromInt(1200)})
	amt, found, err := s.GetBudget(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, amt.Equal(decimal.NewFromInt(1200)))
}
