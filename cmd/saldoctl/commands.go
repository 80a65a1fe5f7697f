package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"saldo/internal/core"
)

func listCmd(a *app) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter core.TransactionType
			if typeFilter != "" {
				t, err := core.ParseTransactionType(typeFilter)
				if err != nil {
					return err
				}
				filter = t
			}

			st, release, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			snap := st.Snapshot()
			out := cmd.OutOrStdout()
			if len(snap.Transactions) == 0 {
				fmt.Fprintln(out, "No transactions. Use 'saldoctl add' to record one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tID\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, tx := range snap.Transactions {
				if filter != "" && tx.Type != filter {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.Date.Format("2006-01-02"),
					tx.ID,
					tx.Type,
					a.categoryName(tx),
					a.formatter.FormatAmount(tx.Signed()),
					tx.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "only show expense or income")
	return cmd
}

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <expense|income> <category> <amount> <description...>",
		Short: "Record a transaction dated now",
		Example: `  saldoctl add expense food 12.50 Lunch with the team
  saldoctl add income freelance 300,00 Logo design`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseTransactionType(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return err
			}
			draft := core.Draft{
				Type:        t,
				CategoryID:  args[1],
				Amount:      amount,
				Description: strings.Join(args[3:], " "),
			}
			// Reject before touching the backend.
			if err := draft.Normalize().Validate(a.catalog); err != nil {
				return err
			}

			st, release, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			tx, err := st.AddTransaction(cmd.Context(), draft)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added %s: %s %s (%s)\n", tx.ID, tx.Type, a.formatter.FormatAmount(tx.Amount), a.categoryName(tx))
			fmt.Fprintf(out, "Balance: %s\n", a.formatter.FormatAmount(st.Totals().Balance))
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return core.NewValidationError("id", "cannot be empty")
			}

			st, release, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := st.DeleteTransaction(cmd.Context(), id); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s\n", id)
			fmt.Fprintf(out, "Balance: %s\n", a.formatter.FormatAmount(st.Totals().Balance))
			return nil
		},
	}
}

func budgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budget [amount]",
		Short: "Show or set the monthly base income",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				amount decimal.Decimal
				set    bool
			)
			if len(args) == 1 {
				d, err := core.ParseAmount(args[0])
				if err != nil {
					return err
				}
				amount, set = d, true
			}

			st, release, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if set {
				if err := st.SetBudget(cmd.Context(), amount); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget: %s\n", a.formatter.FormatAmount(st.Snapshot().Budget))
			return nil
		},
	}
}

func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tNAME")
			for _, t := range []core.TransactionType{core.Expense, core.Income} {
				for _, c := range a.catalog.ByType(t) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Type, swatch(c.Color).Render(a.labels.CategoryName(c)))
				}
			}
			return w.Flush()
		},
	}
}

func (a *app) categoryName(tx core.Transaction) string {
	c, ok := a.catalog.Lookup(tx.CategoryID, tx.Type)
	if !ok {
		c = core.Uncategorized
	}
	return a.labels.CategoryName(c)
}
