package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Store is an in-process remote store. Records are lost on exit.
type Store struct {
	mu      sync.Mutex
	order   []string
	items   map[string]core.Transaction
	budgets map[string]core.Budget
	now     func() time.Time
}

func New() *Store {
	return &Store{
		items:   make(map[string]core.Transaction),
		budgets: make(map[string]core.Budget),
		now:     time.Now,
	}
}

// NewWithBudgets seeds base incomes, keyed by owner.
func NewWithBudgets(budgets map[string]decimal.Decimal) *Store {
	s := New()
	for owner, amt := range budgets {
		s.budgets[owner] = core.Budget{OwnerID: owner, Amount: amt, UpdatedAt: s.now()}
	}
	return s
}

// CreateTransaction stores the entry under a fresh uuid.
func (s *Store) CreateTransaction(_ context.Context, ownerID string, e core.Entry) (core.Transaction, error) {
	tx := core.FromEntry(uuid.NewString(), ownerID, e)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tx.ID] = tx
	s.order = append(s.order, tx.ID)
	return tx, nil
}

// ListTransactions returns the owner's records in insertion order.
func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.order))
	for _, id := range s.order {
		if tx := s.items[id]; tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) GetBudget(_ context.Context, ownerID string) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[ownerID]
	if !ok {
		return decimal.Zero, false, nil
	}
	return b.Amount, true, nil
}

func (s *Store) UpsertBudget(_ context.Context, ownerID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[ownerID] = core.Budget{OwnerID: ownerID, Amount: amount, UpdatedAt: s.now()}
	return nil
}
