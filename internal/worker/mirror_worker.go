// Package worker mirrors the durable SQLite ledger into a spreadsheet replica.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/log"
)

// Source is the database side of the mirror. *storage.SQLiteRepository
// satisfies it.
type Source interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
	GetBudget(ctx context.Context, ownerID string) (decimal.Decimal, bool, error)
	ListOwners(ctx context.Context) ([]string, error)
}

// Replica is the spreadsheet side. *google.Client satisfies it.
type Replica interface {
	PutTransaction(ctx context.Context, tx core.Transaction) error
	ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetBudget(ctx context.Context, ownerID string) (decimal.Decimal, bool, error)
	UpsertBudget(ctx context.Context, ownerID string, amount decimal.Decimal) error
}

// MirrorWorker applies ledger events to the replica.
type MirrorWorker struct {
	source      Source
	replica     Replica
	concurrency int
	logger      *log.Logger
}

func NewMirrorWorker(source Source, replica Replica, concurrency int, logger *log.Logger) *MirrorWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		source:      source,
		replica:     replica,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the AMQP consumer callback. A returned error nacks the
// message for redelivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldOperation, log.OpMirror,
		log.FieldEvent, ev.Type,
		log.FieldOwnerID, ev.OwnerID,
		log.FieldTransactionID, ev.TransactionID)

	switch ev.Type {
	case amqp.EventTransactionCreated:
		return w.mirrorCreated(ctx, ev)
	case amqp.EventTransactionDeleted:
		return w.mirrorDeleted(ctx, ev)
	case amqp.EventBudgetUpdated:
		return w.mirrorBudget(ctx, ev.OwnerID)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", log.FieldEvent, ev.Type)
		return nil
	}
}

func (w *MirrorWorker) mirrorCreated(ctx context.Context, ev *amqp.LedgerEvent) error {
	tx, err := w.source.GetTransaction(ctx, ev.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before we got to it; the delete event follows.
		w.logger.WarnContext(ctx, "Transaction no longer in database, skipping",
			log.FieldTransactionID, ev.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	if err := w.replica.PutTransaction(ctx, tx); err != nil {
		return fmt.Errorf("put transaction into replica: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirrored transaction",
		log.FieldOwnerID, tx.OwnerID,
		log.FieldTransactionID, tx.ID,
		log.FieldAmount, tx.Amount.StringFixed(2))
	return nil
}

func (w *MirrorWorker) mirrorDeleted(ctx context.Context, ev *amqp.LedgerEvent) error {
	err := w.replica.DeleteTransaction(ctx, ev.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.DebugContext(ctx, "Transaction already absent from replica",
			log.FieldTransactionID, ev.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete transaction from replica: %w", err)
	}
	w.logger.InfoContext(ctx, "Removed transaction from replica",
		log.FieldOwnerID, ev.OwnerID,
		log.FieldTransactionID, ev.TransactionID)
	return nil
}

func (w *MirrorWorker) mirrorBudget(ctx context.Context, ownerID string) error {
	amount, found, err := w.source.GetBudget(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("get budget from storage: %w", err)
	}
	if !found {
		return nil
	}
	if err := w.replica.UpsertBudget(ctx, ownerID, amount); err != nil {
		return fmt.Errorf("upsert budget into replica: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirrored budget",
		log.FieldOwnerID, ownerID,
		log.FieldAmount, amount.StringFixed(2))
	return nil
}

// Reconcile copies every transaction and budget the replica is missing.
// It recovers from events lost while the worker was down. Returns the
// number of transactions copied.
func (w *MirrorWorker) Reconcile(ctx context.Context) (int, error) {
	owners, err := w.source.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list owners: %w", err)
	}

	var copied atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, owner := range owners {
		g.Go(func() error {
			n, err := w.reconcileOwner(gctx, owner)
			copied.Add(int64(n))
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", owner, err)
			}
			return nil
		})
	}
	err = g.Wait()

	if err != nil {
		w.logger.ErrorContext(ctx, "Reconciliation failed",
			log.FieldOperation, log.OpReconcile,
			"owners", len(owners),
			"copied", copied.Load(),
			log.FieldError, err)
		return int(copied.Load()), err
	}
	w.logger.InfoContext(ctx, "Reconciliation completed",
		log.FieldOperation, log.OpReconcile,
		"owners", len(owners),
		"copied", copied.Load())
	return int(copied.Load()), nil
}

func (w *MirrorWorker) reconcileOwner(ctx context.Context, owner string) (int, error) {
	local, err := w.source.ListTransactions(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list storage transactions: %w", err)
	}
	mirrored, err := w.replica.ListTransactions(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list replica transactions: %w", err)
	}

	present := make(map[string]struct{}, len(mirrored))
	for _, tx := range mirrored {
		present[tx.ID] = struct{}{}
	}

	copied := 0
	for _, tx := range local {
		if _, ok := present[tx.ID]; ok {
			continue
		}
		if err := w.replica.PutTransaction(ctx, tx); err != nil {
			return copied, fmt.Errorf("put transaction %s: %w", tx.ID, err)
		}
		copied++
	}

	amount, found, err := w.source.GetBudget(ctx, owner)
	if err != nil {
		return copied, fmt.Errorf("get storage budget: %w", err)
	}
	if found {
		current, ok, err := w.replica.GetBudget(ctx, owner)
		if err != nil {
			return copied, fmt.Errorf("get replica budget: %w", err)
		}
		if !ok || !current.Equal(amount) {
			if err := w.replica.UpsertBudget(ctx, owner, amount); err != nil {
				return copied, fmt.Errorf("upsert replica budget: %w", err)
			}
		}
	}

	if copied > 0 {
		w.logger.InfoContext(ctx, "Copied missing transactions to replica",
			log.FieldOwnerID, owner,
			log.FieldCount, copied)
	}
	return copied, nil
}
