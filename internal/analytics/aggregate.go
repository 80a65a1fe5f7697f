package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

const (
	// TrendMonths is the size of the monthly trend window, current month
	// included.
	TrendMonths = 6
	// BalanceWindow is the number of most recent running-balance points
	// kept for display.
	BalanceWindow = 30
)

var hundred = decimal.NewFromInt(100)

// MonthlyTrend buckets transactions into the TrendMonths calendar months
// ending with the month of now, oldest first. Months are computed in now's
// location. Empty months are still present.
func MonthlyTrend(txs []core.Transaction, now time.Time, labeler Labeler) []core.MonthlyBucket {
	labeler = labelerOrDefault(labeler)
	loc := now.Location()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	buckets := make([]core.MonthlyBucket, TrendMonths)
	starts := make([]time.Time, TrendMonths+1)
	for i := 0; i < TrendMonths; i++ {
		start := current.AddDate(0, i-(TrendMonths-1), 0)
		starts[i] = start
		buckets[i] = core.MonthlyBucket{
			Key:      start.Format("2006-01"),
			Label:    labeler.MonthLabel(start),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Balance:  decimal.Zero,
		}
	}
	starts[TrendMonths] = current.AddDate(0, 1, 0)

	for _, tx := range txs {
		if tx.Date.Before(starts[0]) || !tx.Date.Before(starts[TrendMonths]) {
			continue
		}
		// Find the bucket whose [start, next start) holds the date.
		i := sort.Search(TrendMonths, func(i int) bool { return tx.Date.Before(starts[i+1]) })
		switch tx.Type {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(tx.Amount)
		case core.Expense:
			buckets[i].Expenses = buckets[i].Expenses.Add(tx.Amount)
		}
	}
	for i := range buckets {
		buckets[i].Balance = buckets[i].Income.Sub(buckets[i].Expenses)
	}
	return buckets
}

// CategoryBreakdown sums the transactions of one type per category, largest
// first. References that do not resolve in the catalog for that type are
// grouped under core.UncategorizedID.
func CategoryBreakdown(txs []core.Transaction, typ core.TransactionType, catalog *core.Catalog, labeler Labeler) []core.CategoryTotal {
	labeler = labelerOrDefault(labeler)
	if catalog == nil {
		catalog = core.NewCatalog(nil)
	}

	sums := make(map[string]decimal.Decimal)
	cats := make(map[string]core.Category)
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		cat, ok := catalog.Lookup(tx.CategoryID, typ)
		if !ok {
			cat = core.Uncategorized
			cat.Type = typ
		}
		cats[cat.ID] = cat
		sums[cat.ID] = sums[cat.ID].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}

	out := make([]core.CategoryTotal, 0, len(sums))
	for id, amount := range sums {
		cat := cats[id]
		pct := 0.0
		if !total.IsZero() {
			pct = amount.Div(total).Mul(hundred).Round(2).InexactFloat64()
		}
		out = append(out, core.CategoryTotal{
			CategoryID:    id,
			Name:          labeler.CategoryName(cat),
			Color:         cat.Color,
			Amount:        amount,
			PercentOfType: pct,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// BalanceEvolution folds the transactions in chronological order into a
// running balance and returns the last BalanceWindow points. The running
// balance starts at zero; the budget is not included.
func BalanceEvolution(txs []core.Transaction, labeler Labeler) []core.BalancePoint {
	labeler = labelerOrDefault(labeler)

	ordered := make([]core.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID < ordered[j].ID
	})

	points := make([]core.BalancePoint, 0, len(ordered))
	running := decimal.Zero
	for _, tx := range ordered {
		running = running.Add(tx.Signed())
		points = append(points, core.BalancePoint{
			Label:          labeler.DayLabel(tx.Date),
			Date:           tx.Date,
			TransactionID:  tx.ID,
			RunningBalance: running,
		})
	}
	if len(points) > BalanceWindow {
		points = points[len(points)-BalanceWindow:]
	}
	return points
}

// ComputeStatistics summarizes the whole list plus the calendar month of
// now (in now's location). Averages are all-time and rounded to cents.
func ComputeStatistics(txs []core.Transaction, now time.Time) core.Statistics {
	loc := now.Location()
	year, month := now.Year(), now.Month()

	stats := core.Statistics{
		TotalTransactions: len(txs),
		ThisMonthIncome:   decimal.Zero,
		ThisMonthExpenses: decimal.Zero,
		AverageIncome:     decimal.Zero,
		AverageExpense:    decimal.Zero,
	}
	incomeSum, expenseSum := decimal.Zero, decimal.Zero
	var incomeCount, expenseCount int64

	for _, tx := range txs {
		d := tx.Date.In(loc)
		thisMonth := d.Year() == year && d.Month() == month
		if thisMonth {
			stats.ThisMonthTransactionCount++
		}
		switch tx.Type {
		case core.Income:
			incomeSum = incomeSum.Add(tx.Amount)
			incomeCount++
			if thisMonth {
				stats.ThisMonthIncome = stats.ThisMonthIncome.Add(tx.Amount)
			}
		case core.Expense:
			expenseSum = expenseSum.Add(tx.Amount)
			expenseCount++
			if thisMonth {
				stats.ThisMonthExpenses = stats.ThisMonthExpenses.Add(tx.Amount)
			}
		}
	}
	if incomeCount > 0 {
		stats.AverageIncome = incomeSum.Div(decimal.NewFromInt(incomeCount)).Round(2)
	}
	if expenseCount > 0 {
		stats.AverageExpense = expenseSum.Div(decimal.NewFromInt(expenseCount)).Round(2)
	}
	return stats
}
