// Package services composes the durable store with event publishing.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/remote"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService is a remote.Store that writes to the underlying store first
// and then announces the change. Publishing never fails a write: the record
// is already durable and the mirror worker reconciles on startup.
type LedgerService struct {
	store     remote.Store
	publisher EventPublisher
}

var _ remote.Store = (*LedgerService)(nil)

// NewLedgerService wraps store. publisher may be nil.
func NewLedgerService(store remote.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, ownerID string, e core.Entry) (core.Transaction, error) {
	tx, err := s.store.CreateTransaction(ctx, ownerID, e)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.NewTransactionCreated(ownerID, tx.ID))
	return tx, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, ownerID)
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewTransactionDeleted(tx.OwnerID, id))
	return nil
}

func (s *LedgerService) GetBudget(ctx context.Context, ownerID string) (decimal.Decimal, bool, error) {
	return s.store.GetBudget(ctx, ownerID)
}

func (s *LedgerService) UpsertBudget(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	if err := s.store.UpsertBudget(ctx, ownerID, amount); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	s.publish(ctx, amqp.NewBudgetUpdated(ownerID))
	return nil
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event", log.FieldEvent, ev.Type)
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish,
			log.FieldEvent, ev.Type,
			log.FieldOwnerID, ev.OwnerID,
			log.FieldTransactionID, ev.TransactionID,
			log.FieldError, err)
	}
}

// Close closes the store and the publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
