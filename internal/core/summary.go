package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals are the derived metrics of a ledger. They are never persisted.
type Totals struct {
	BaseIncome       decimal.Decimal `json:"base_income"`
	AdditionalIncome decimal.Decimal `json:"additional_income"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Balance          decimal.Decimal `json:"balance"`
	BudgetRemaining  decimal.Decimal `json:"budget_remaining"`
}

// MonthlyBucket aggregates one calendar month.
type MonthlyBucket struct {
	Key      string          `json:"key"` // YYYY-MM
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	CategoryID    string          `json:"category_id"`
	Name          string          `json:"name"`
	Color         string          `json:"color"`
	Amount        decimal.Decimal `json:"amount"`
	PercentOfType float64         `json:"percent_of_type"`
}

// BalancePoint is the running balance right after one transaction.
type BalancePoint struct {
	Label          string          `json:"label"`
	Date           time.Time       `json:"date"`
	TransactionID  string          `json:"transaction_id"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type Statistics struct {
	TotalTransactions         int             `json:"total_transactions"`
	ThisMonthTransactionCount int             `json:"this_month_transaction_count"`
	ThisMonthIncome           decimal.Decimal `json:"this_month_income"`
	ThisMonthExpenses         decimal.Decimal `json:"this_month_expenses"`
	AverageIncome             decimal.Decimal `json:"average_income"`
	AverageExpense            decimal.Decimal `json:"average_expense"`
}
