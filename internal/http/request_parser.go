package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// transactionRequest is the body of POST /api/transactions.
type transactionRequest struct {
	Type        string          `json:"type"`
	CategoryID  string          `json:"category_id"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

// budgetRequest is the body of PUT /api/budget.
type budgetRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body larger than %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// ToDraft converts the request into a draft. Only the amount is checked
// here; the ledger validates the rest.
func (req transactionRequest) ToDraft() (core.Draft, error) {
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		return core.Draft{}, err
	}
	t, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{
		Type:        t,
		CategoryID:  sanitizeInput(req.CategoryID),
		Amount:      amount,
		Description: sanitizeInput(req.Description),
	}, nil
}

// parseAmountField accepts "12.50", "12,50" or a bare JSON number.
func parseAmountField(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, core.NewValidationError("amount", "cannot be empty")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, core.NewValidationError("amount", "malformed number")
		}
		return core.ParseAmount(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Zero, core.NewValidationError("amount", "must be a number or a decimal string")
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, core.NewValidationError("amount", "malformed number "+n.String())
	}
	if d.IsNegative() {
		return decimal.Zero, core.NewValidationError("amount", "must be unsigned")
	}
	return core.NormalizeAmount(d), nil
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
