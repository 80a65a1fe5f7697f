// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals rounded to cents at the boundary. Storage
// adapters that prefer integers use CentsOf/FromCents.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmount caps every transaction and budget amount. Its cents fit an
// int64 with room to spare.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ErrAmountOverflow is returned by CentsOf when an amount has no int64
// cents representation.
var ErrAmountOverflow = errors.New("amount out of range for cents")

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseAmount converts a decimal string to an amount with half-up rounding to
// cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// rejected: every amount handled by the ledger is non-negative, and the
// direction of a transaction is carried by its type.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("0")      -> 0
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "cannot be empty")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, NewValidationError("amount", "must be unsigned")
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, NewValidationError("amount", "malformed number "+s)
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, NewValidationError("amount", "malformed number "+s)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "malformed number "+s)
	}
	return NormalizeAmount(d), nil
}

// NormalizeAmount rounds half-up (away from zero) to two decimals.
func NormalizeAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateAmount enforces the transaction amount invariant (> 0, at most
// MaxAmount).
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return NewValidationError("amount", "must be greater than zero")
	}
	if d.GreaterThan(MaxAmount) {
		return NewValidationError("amount", "must not exceed "+MaxAmount.StringFixed(2))
	}
	return nil
}

// ValidateBudgetAmount enforces the budget invariant (>= 0).
func ValidateBudgetAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return NewValidationError("amount", "budget cannot be negative")
	}
	if d.GreaterThan(MaxAmount) {
		return NewValidationError("amount", "budget must not exceed "+MaxAmount.StringFixed(2))
	}
	return nil
}

// ToCents returns the amount as integer cents. Amounts above MaxAmount must
// go through CentsOf instead.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// CentsOf is ToCents with an overflow check, for storage writes.
func CentsOf(d decimal.Decimal) (int64, error) {
	c := d.Shift(2).Round(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, d.String())
	}
	return c.IntPart(), nil
}

// FromCents is the inverse of ToCents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
