package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Column order of the Transactions sheet (A..G) and the Budgets sheet (A..C).
var (
	transactionHeader = []interface{}{"id", "owner_id", "type", "category_id", "amount", "description", "date"}
	budgetHeader      = []interface{}{"owner_id", "amount", "updated_at"}
)

// txRow is a parsed transaction together with its 0-based row index in the
// sheet.
type txRow struct {
	index int
	tx    core.Transaction
}

type budgetRow struct {
	index     int
	ownerID   string
	amount    decimal.Decimal
	updatedAt time.Time
}

// parseTransactionRows converts a values matrix into transactions. A header
// row and blank rows are skipped. Malformed rows are reported, not dropped
// silently.
func parseTransactionRows(values [][]interface{}) ([]txRow, error) {
	out := make([]txRow, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) || isHeader(row, transactionHeader) {
			continue
		}
		tx, err := parseTransaction(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, txRow{index: i, tx: tx})
	}
	return out, nil
}

func parseTransaction(row []string) (core.Transaction, error) {
	id := safeGet(row, 0)
	if id == "" {
		return core.Transaction{}, fmt.Errorf("missing id")
	}
	typ, err := core.ParseTransactionType(safeGet(row, 2))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmount(safeGet(row, 4))
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := time.Parse(time.RFC3339Nano, safeGet(row, 6))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}
	return core.Transaction{
		ID:          id,
		OwnerID:     safeGet(row, 1),
		Type:        typ,
		CategoryID:  safeGet(row, 3),
		Amount:      amount,
		Description: safeGet(row, 5),
		Date:        date,
	}, nil
}

func parseBudgetRows(values [][]interface{}) ([]budgetRow, error) {
	out := make([]budgetRow, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) || isHeader(row, budgetHeader) {
			continue
		}
		amount, err := parseAmount(safeGet(row, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		b := budgetRow{index: i, ownerID: safeGet(row, 0), amount: amount}
		if ts := safeGet(row, 2); ts != "" {
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				b.updatedAt = t
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func transactionValues(tx core.Transaction) []interface{} {
	return []interface{}{
		tx.ID,
		tx.OwnerID,
		string(tx.Type),
		tx.CategoryID,
		tx.Amount.StringFixed(2),
		tx.Description,
		tx.Date.UTC().Format(time.RFC3339Nano),
	}
}

func budgetValues(ownerID string, amount decimal.Decimal, at time.Time) []interface{} {
	return []interface{}{ownerID, amount.StringFixed(2), at.UTC().Format(time.RFC3339Nano)}
}

// parseAmount accepts the textual amounts written by this adapter and the
// numbers a human may have typed into the sheet.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch t := v.(type) {
		case string:
			out[i] = strings.TrimSpace(t)
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(t))
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func isHeader(row []string, header []interface{}) bool {
	return len(row) > 0 && strings.EqualFold(row[0], header[0].(string))
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
