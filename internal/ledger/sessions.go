package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"saldo/internal/core"
	"saldo/internal/remote"
)

var ErrNoOwner = errors.New("owner id is required")

// Sessions keeps one Store per identity. A store is created and loaded on
// first use and discarded on Close.
type Sessions struct {
	remote  remote.Store
	opts    []Option
	catalog *core.Catalog

	mu     sync.Mutex
	stores map[string]*Store
}

func NewSessions(store remote.Store, opts ...Option) *Sessions {
	defaults := &Store{catalog: core.DefaultCatalog()}
	for _, opt := range opts {
		opt(defaults)
	}
	return &Sessions{remote: store, opts: opts, catalog: defaults.catalog, stores: make(map[string]*Store)}
}

// Catalog is the category catalog every session validates against.
func (s *Sessions) Catalog() *core.Catalog {
	return s.catalog
}

// Open returns the owner's store, loading it if it is not loaded yet. A
// failed load leaves the store registered and Unloaded; the next Open
// retries.
func (s *Sessions) Open(ctx context.Context, owner string) (*Store, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, ErrNoOwner
	}

	s.mu.Lock()
	st, ok := s.stores[owner]
	if !ok {
		st = New(owner, s.remote, s.opts...)
		s.stores[owner] = st
	}
	s.mu.Unlock()

	if st.State() == Unloaded {
		if err := st.Load(ctx); err != nil {
			return st, err
		}
	}
	return st, nil
}

// Get returns the owner's store without loading it.
func (s *Sessions) Get(owner string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[owner]
	return st, ok
}

// Close resets and forgets the owner's store. It reports whether a session
// existed.
func (s *Sessions) Close(owner string) bool {
	s.mu.Lock()
	st, ok := s.stores[owner]
	delete(s.stores, owner)
	s.mu.Unlock()
	if ok {
		st.Reset()
	}
	return ok
}

// Owners lists the identities with an open session, sorted.
func (s *Sessions) Owners() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.stores))
	for o := range s.stores {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
