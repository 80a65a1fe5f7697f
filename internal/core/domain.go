package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// MaxDescriptionLength caps transaction descriptions, in characters.
const MaxDescriptionLength = 100

type (
	TransactionType string

	// Draft is the user-submitted part of a transaction. It never carries an
	// id or a date: the id comes from the remote store, the date is stamped
	// by the ledger at creation time.
	Draft struct {
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"category_id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}

	// Entry is a validated draft with its creation date, ready to be
	// persisted.
	Entry struct {
		Draft
		Date time.Time `json:"date"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		OwnerID     string          `json:"owner_id"`
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"category_id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
	}

	Budget struct {
		OwnerID   string          `json:"owner_id"`
		Amount    decimal.Decimal `json:"amount"`
		UpdatedAt time.Time       `json:"updated_at"`
	}
)

func (t TransactionType) IsValid() bool {
	return t == Expense || t == Income
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType accepts "expense" or "income" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", NewValidationError("type", "must be expense or income")
	}
	return t, nil
}

// Normalize trims the description and rounds the amount to cents.
func (d Draft) Normalize() Draft {
	d.Description = strings.TrimSpace(d.Description)
	d.CategoryID = strings.TrimSpace(d.CategoryID)
	d.Amount = NormalizeAmount(d.Amount)
	return d
}

// Validate checks the draft against the catalog. The draft is expected to be
// normalized already.
func (d Draft) Validate(catalog *Catalog) error {
	if !d.Type.IsValid() {
		return NewValidationError("type", "must be expense or income")
	}
	if d.Description == "" {
		return NewValidationError("description", "cannot be empty")
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return NewValidationError("description", "too long (max 100 characters)")
	}
	if err := ValidateAmount(d.Amount); err != nil {
		return err
	}
	if catalog == nil {
		return NewValidationError("category_id", "no category catalog available")
	}
	if _, ok := catalog.Lookup(d.CategoryID, d.Type); !ok {
		return NewValidationError("category_id", "unknown category "+d.CategoryID+" for type "+string(d.Type))
	}
	return nil
}

// Signed returns the amount with the sign of its effect on a balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsComplete reports whether the record carries everything the ledger
// needs; remote stores must never hand back a transaction without an id.
func (t Transaction) IsComplete() bool {
	return t.ID != "" && t.OwnerID != "" && t.Type.IsValid() && !t.Date.IsZero()
}

// FromEntry builds the canonical record once the remote store assigned an id.
func FromEntry(id, ownerID string, e Entry) Transaction {
	return Transaction{
		ID:          id,
		OwnerID:     ownerID,
		Type:        e.Type,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
	}
}
