package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	catalog := DefaultCatalog()
	good := Draft{
		Type:        Expense,
		CategoryID:  "food",
		Amount:      decimal.RequireFromString("12.50"),
		Description: "groceries",
	}
	require.NoError(t, good.Normalize().Validate(catalog))

	tests := []struct {
		name  string
		draft Draft
		field string
	}{
		{"bad type", Draft{Type: "transfer", CategoryID: "food", Amount: decimal.NewFromInt(1), Description: "x"}, "type"},
		{"empty description", Draft{Type: Expense, CategoryID: "food", Amount: decimal.NewFromInt(1), Description: "   "}, "description"},
		{"long description", Draft{Type: Expense, CategoryID: "food", Amount: decimal.NewFromInt(1), Description: strings.Repeat("a", 101)}, "description"},
		{"zero amount", Draft{Type: Expense, CategoryID: "food", Amount: decimal.Zero, Description: "x"}, "amount"},
		{"negative amount", Draft{Type: Expense, CategoryID: "food", Amount: decimal.NewFromInt(-3), Description: "x"}, "amount"},
		{"rounds to zero", Draft{Type: Expense, CategoryID: "food", Amount: decimal.RequireFromString("0.004"), Description: "x"}, "amount"},
		{"above maximum", Draft{Type: Expense, CategoryID: "food", Amount: decimal.RequireFromString("100000000000000000000"), Description: "x"}, "amount"},
		{"unknown category", Draft{Type: Expense, CategoryID: "yachts", Amount: decimal.NewFromInt(1), Description: "x"}, "category_id"},
		{"category of other type", Draft{Type: Expense, CategoryID: "salary", Amount: decimal.NewFromInt(1), Description: "x"}, "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Normalize().Validate(catalog)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, KindValidation, Kind(err))
		})
	}
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{Description: "  rent  ", CategoryID: " food ", Amount: decimal.RequireFromString("3.456")}.Normalize()
	assert.Equal(t, "rent", d.Description)
	assert.Equal(t, "food", d.CategoryID)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("3.46")))
}

func TestParseTransactionType(t *testing.T) {
	typ, err := ParseTransactionType(" Income ")
	require.NoError(t, err)
	assert.Equal(t, Income, typ)

	_, err = ParseTransactionType("refund")
	assert.Error(t, err)
}

func TestTransactionSigned(t *testing.T) {
	amt := decimal.NewFromInt(40)
	assert.True(t, Transaction{Type: Expense, Amount: amt}.Signed().Equal(amt.Neg()))
	assert.True(t, Transaction{Type: Income, Amount: amt}.Signed().Equal(amt))
}
