// Package ledger holds the authoritative in-memory copy of one identity's
// transactions and budget, and mediates every call to the remote store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"saldo/internal/analytics"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/remote"
)

// State of a ledger session: Unloaded -> Loading -> Ready. Ready is
// re-entered after every completed load.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotReady is returned by mutating operations outside the Ready state.
var ErrNotReady = errors.New("ledger is not ready")

// Store is the ledger of a single owner. The mutex only guards local state;
// it is never held across a remote call, so overlapping mutations complete
// in whatever order their round-trips finish.
type Store struct {
	owner   string
	remote  remote.Store
	catalog *core.Catalog
	clock   func() time.Time
	logger  *log.Logger

	mu           sync.RWMutex
	state        State
	loading      bool
	transactions []core.Transaction
	budget       decimal.Decimal
	version      uint64
}

type Option func(*Store)

func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func WithCatalog(c *core.Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(owner string, store remote.Store, opts ...Option) *Store {
	s := &Store{
		owner:   owner,
		remote:  store,
		catalog: core.DefaultCatalog(),
		clock:   time.Now,
		logger:  log.New(log.DefaultConfig()),
		budget:  decimal.Zero,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger).ForOwner(owner)
	return s
}

// Snapshot is a consistent copy of the ledger at one Version.
type Snapshot struct {
	OwnerID      string             `json:"owner_id"`
	State        string             `json:"state"`
	Loading      bool               `json:"loading"`
	Transactions []core.Transaction `json:"transactions"`
	Budget       decimal.Decimal    `json:"budget"`
	Version      uint64             `json:"version"`
}

func (s *Store) Owner() string { return s.owner }

func (s *Store) Catalog() *core.Catalog { return s.catalog }

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := make([]core.Transaction, len(s.transactions))
	copy(txs, s.transactions)
	return Snapshot{
		OwnerID:      s.owner,
		State:        s.state.String(),
		Loading:      s.loading,
		Transactions: txs,
		Budget:       s.budget,
		Version:      s.version,
	}
}

// Totals recomputes the derived metrics from the current state.
func (s *Store) Totals() core.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analytics.ComputeTotals(s.transactions, s.budget)
}

// Load replaces local state with the owner's remote records, newest first.
// On failure the previous state is kept.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	prev := s.state
	s.state = Loading
	s.loading = true
	s.mu.Unlock()

	var (
		txs    []core.Transaction
		budget decimal.Decimal
		found  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.remote.ListTransactions(gctx, s.owner)
		return err
	})
	g.Go(func() error {
		var err error
		budget, found, err = s.remote.GetBudget(gctx, s.owner)
		return err
	})
	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.state = prev
		s.loading = false
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Ledger load failed",
			log.NewFields().WithOperation(log.OpLoad).WithError(err, core.KindPersistence).ToSlice()...)
		return &core.PersistenceError{Op: log.OpLoad, Err: err}
	}
	if !found {
		budget = decimal.Zero
	}

	kept := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.IsComplete() || tx.OwnerID != s.owner {
			s.logger.WarnContext(ctx, "Skipping remote record",
				log.FieldTransactionID, tx.ID,
				"record_owner", tx.OwnerID)
			continue
		}
		kept = append(kept, tx)
	}
	sortNewestFirst(kept)

	s.mu.Lock()
	s.transactions = kept
	s.budget = budget
	s.state = Ready
	s.loading = false
	s.version++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(kept),
		"budget", budget.StringFixed(2))
	return nil
}

// SetBudget upserts the base income remotely and then locally.
func (s *Store) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	amount = core.NormalizeAmount(amount)
	if err := core.ValidateBudgetAmount(amount); err != nil {
		return err
	}
	if err := s.requireReady(); err != nil {
		return err
	}

	if err := s.remote.UpsertBudget(ctx, s.owner, amount); err != nil {
		s.logger.ErrorContext(ctx, "Budget update failed",
			log.NewFields().WithOperation(log.OpSetBudget).WithError(err, core.KindPersistence).ToSlice()...)
		return &core.PersistenceError{Op: log.OpSetBudget, Err: err}
	}

	s.mu.Lock()
	if s.state != Unloaded {
		s.budget = amount
		s.version++
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Budget updated", log.FieldOperation, log.OpSetBudget, log.FieldAmount, amount.StringFixed(2))
	return nil
}

// AddTransaction validates the draft, stamps it with the current time and
// persists it. Only the record returned by the remote store, carrying its
// canonical id, enters the ledger.
func (s *Store) AddTransaction(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	if err := s.requireReady(); err != nil {
		return core.Transaction{}, err
	}
	d := draft.Normalize()
	if err := d.Validate(s.catalog); err != nil {
		return core.Transaction{}, err
	}

	entry := core.Entry{Draft: d, Date: s.clock()}
	tx, err := s.remote.CreateTransaction(ctx, s.owner, entry)
	if err == nil && tx.ID == "" {
		err = errors.New("remote store returned a record without id")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Transaction create failed",
			log.NewFields().
				WithOperation(log.OpAdd).
				WithTransaction("", string(d.Type), d.CategoryID, d.Amount.StringFixed(2)).
				WithError(err, core.KindPersistence).
				ToSlice()...)
		return core.Transaction{}, &core.PersistenceError{Op: log.OpAdd, Err: err}
	}
	if tx.OwnerID == "" {
		tx.OwnerID = s.owner
	}

	s.mu.Lock()
	if s.state != Unloaded {
		next := make([]core.Transaction, 0, len(s.transactions)+1)
		next = append(next, tx)
		s.transactions = append(next, s.transactions...)
		s.version++
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().
			WithOperation(log.OpAdd).
			WithTransaction(tx.ID, string(tx.Type), tx.CategoryID, tx.Amount.StringFixed(2)).
			ToSlice()...)
	return tx, nil
}

// DeleteTransaction removes id remotely and locally. Unknown ids are a
// no-op; records already gone remotely are pruned locally and reported as
// success.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return core.NewValidationError("id", "cannot be empty")
	}
	if err := s.requireReady(); err != nil {
		return err
	}
	if !s.has(id) {
		s.logger.DebugContext(ctx, "Delete of unknown transaction ignored", log.FieldTransactionID, id)
		return nil
	}

	remoteTx, err := s.remote.GetTransaction(ctx, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.heal(ctx, id)
		return nil
	case err != nil:
		s.logDeleteFailure(ctx, id, err, core.KindPersistence)
		return &core.PersistenceError{Op: log.OpDelete, Err: err}
	case remoteTx.OwnerID != s.owner:
		authErr := &core.AuthorizationError{TransactionID: id, OwnerID: remoteTx.OwnerID, RequestedBy: s.owner}
		s.logDeleteFailure(ctx, id, authErr, core.KindAuthorization)
		return authErr
	}

	if err := s.remote.DeleteTransaction(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.heal(ctx, id)
			return nil
		}
		s.logDeleteFailure(ctx, id, err, core.KindPersistence)
		return &core.PersistenceError{Op: log.OpDelete, Err: err}
	}

	s.prune(id)
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	return nil
}

// Reset drops all local state, as on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Unloaded
	s.loading = false
	s.transactions = nil
	s.budget = decimal.Zero
	s.version++
}

func (s *Store) requireReady() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Ready {
		return fmt.Errorf("%w (state %s)", ErrNotReady, s.state)
	}
	return nil
}

func (s *Store) has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.transactions {
		if tx.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) heal(ctx context.Context, id string) {
	s.prune(id)
	s.logger.WarnContext(ctx, "Pruned stale transaction",
		log.NewFields().
			WithOperation(log.OpDelete).
			WithTransaction(id, "", "", "").
			WithError(&core.StateInconsistencyError{TransactionID: id}, core.KindStateInconsistency).
			ToSlice()...)
}

func (s *Store) prune(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if tx.ID != id {
			next = append(next, tx)
		}
	}
	if len(next) != len(s.transactions) {
		s.transactions = next
		s.version++
	}
}

func (s *Store) logDeleteFailure(ctx context.Context, id string, err error, kind string) {
	s.logger.ErrorContext(ctx, "Transaction delete failed",
		log.NewFields().
			WithOperation(log.OpDelete).
			WithTransaction(id, "", "", "").
			WithError(err, kind).
			ToSlice()...)
}

// sortNewestFirst orders by date descending; ties are broken by id so that
// repeated loads produce the same order.
func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
}
