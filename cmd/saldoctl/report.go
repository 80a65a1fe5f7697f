package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"saldo/internal/analytics"
	"saldo/internal/core"
)

const barWidth = 20

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	positive     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	negative     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

// swatch styles text with a category colour token.
func swatch(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func reportCmd(a *app) *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print totals, the six-month trend, category breakdowns and statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if points < 0 {
				return core.NewValidationError("points", "cannot be negative")
			}

			st, release, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			snap := st.Snapshot()
			report := analytics.Build(snap.Transactions, snap.Budget, a.now(), a.catalog, a.labels)
			return a.printReport(cmd.OutOrStdout(), report, points)
		},
	}

	cmd.Flags().IntVar(&points, "points", 5, "number of recent running-balance points to show")
	return cmd
}

func (a *app) printReport(out io.Writer, r analytics.Report, points int) error {
	money := a.formatter.FormatAmount

	fmt.Fprintln(out, titleStyle.Render("Ledger report "+r.Month+" ("+a.cfg.OwnerID+")"))
	fmt.Fprintln(out)

	fmt.Fprintln(out, sectionStyle.Render("Totals"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Base income\t%s\n", money(r.Totals.BaseIncome))
	fmt.Fprintf(w, "Additional income\t%s\n", money(r.Totals.AdditionalIncome))
	fmt.Fprintf(w, "Total income\t%s\n", money(r.Totals.TotalIncome))
	fmt.Fprintf(w, "Total expenses\t%s\n", money(r.Totals.TotalExpenses))
	fmt.Fprintf(w, "Balance\t%s\n", signed(money, r.Totals.Balance))
	fmt.Fprintf(w, "Budget remaining\t%s\n", signed(money, r.Totals.BudgetRemaining))
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, sectionStyle.Render("Monthly trend"))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES\tBALANCE")
	for _, b := range r.MonthlyTrend {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Label, money(b.Income), money(b.Expenses), signed(money, b.Balance))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, section := range []struct {
		title  string
		totals []core.CategoryTotal
	}{
		{"Expenses by category", r.ExpenseBreakdown},
		{"Income by category", r.IncomeBreakdown},
	} {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sectionStyle.Render(section.title))
		if len(section.totals) == 0 {
			fmt.Fprintln(out, "  none")
			continue
		}
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range section.totals {
			fmt.Fprintf(w, "%s\t%s\t%5.1f%%\t%s\n",
				swatch(c.Color).Render(c.Name),
				money(c.Amount),
				c.PercentOfType,
				swatch(c.Color).Render(bar(c.PercentOfType)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if points > 0 && len(r.BalanceEvolution) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sectionStyle.Render("Running balance"))
		series := r.BalanceEvolution
		if len(series) > points {
			series = series[len(series)-points:]
		}
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range series {
			fmt.Fprintf(w, "%s\t%s\n", p.Label, signed(money, p.RunningBalance))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	s := r.Statistics
	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render("Statistics"))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Transactions\t%d\n", s.TotalTransactions)
	fmt.Fprintf(w, "This month\t%d\n", s.ThisMonthTransactionCount)
	fmt.Fprintf(w, "This month income\t%s\n", money(s.ThisMonthIncome))
	fmt.Fprintf(w, "This month expenses\t%s\n", money(s.ThisMonthExpenses))
	fmt.Fprintf(w, "Average income\t%s\n", money(s.AverageIncome))
	fmt.Fprintf(w, "Average expense\t%s\n", money(s.AverageExpense))
	return w.Flush()
}

func signed(money func(decimal.Decimal) string, v decimal.Decimal) string {
	if v.IsNegative() {
		return negative.Render(money(v))
	}
	return positive.Render(money(v))
}

// bar draws pct (0..100) as a fixed-width block bar.
func bar(pct float64) string {
	n := int(pct/100*barWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}
