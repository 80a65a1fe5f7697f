// Package analytics derives totals, trends, breakdowns and statistics from
// a transaction list. Every function is pure and returns empty, non-nil
// results for an empty input.
package analytics

import (
	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// ComputeTotals applies the ledger formulas:
//
//	totalIncome     = budget + Σ income
//	totalExpenses   = Σ expense
//	balance         = totalIncome - totalExpenses
//	budgetRemaining = balance
func ComputeTotals(txs []core.Transaction, budget decimal.Decimal) core.Totals {
	additional, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			additional = additional.Add(tx.Amount)
		case core.Expense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	total := budget.Add(additional)
	balance := total.Sub(expenses)
	return core.Totals{
		BaseIncome:       budget,
		AdditionalIncome: additional,
		TotalIncome:      total,
		TotalExpenses:    expenses,
		Balance:          balance,
		BudgetRemaining:  balance,
	}
}
