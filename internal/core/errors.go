package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by remote stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Error kinds, used to map failures onto outer surfaces (HTTP status codes,
// CLI exit messages, log fields).
const (
	KindValidation         = "validation_error"
	KindPersistence        = "persistence_error"
	KindAuthorization      = "authorization_error"
	KindStateInconsistency = "state_inconsistency"
	KindInternal           = "internal_error"
)

// ValidationError reports bad input. It is always raised locally, before any
// remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a remote read or write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: remote store: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthorizationError is raised when a record belongs to another identity.
type AuthorizationError struct {
	TransactionID string
	OwnerID       string
	RequestedBy   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("transaction %s is not owned by %s", e.TransactionID, e.RequestedBy)
}

// StateInconsistencyError describes a local reference to a record that is
// gone remotely. The ledger heals it by pruning; it is only logged.
type StateInconsistencyError struct {
	TransactionID string
}

func (e *StateInconsistencyError) Error() string {
	return fmt.Sprintf("transaction %s cached locally but missing remotely", e.TransactionID)
}

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	var (
		verr *ValidationError
		perr *PersistenceError
		aerr *AuthorizationError
		serr *StateInconsistencyError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return KindValidation
	case errors.As(err, &aerr):
		return KindAuthorization
	case errors.As(err, &perr):
		return KindPersistence
	case errors.As(err, &serr):
		return KindStateInconsistency
	default:
		return KindInternal
	}
}
