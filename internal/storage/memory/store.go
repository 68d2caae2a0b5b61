// Package memory is an in-process storage backend. A single writer holds
// the write lock for the life of its transaction and works on a private copy
// of the tables; Commit publishes the copy, so readers only see committed
// state.
package memory

import (
	"bytes"
	"context"
	"maps"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

type Option func(*Store)

// WithIDGenerator replaces the default time-ordered UUID generator.
func WithIDGenerator(gen func() (uuid.UUID, error)) Option {
	return func(s *Store) { s.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// SequentialIDs returns a generator of ascending UUIDs starting at 1.
func SequentialIDs() func() (uuid.UUID, error) {
	var (
		mu sync.Mutex
		n  uint64
	)
	return func() (uuid.UUID, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		var id uuid.UUID
		for i := 0; i < 8; i++ {
			id[15-i] = byte(n >> (8 * i))
		}
		return id, nil
	}
}

// tables is one version of the stored rows. A published version is never
// mutated; rows inside it are replaced, not edited.
type tables struct {
	accounts     map[uuid.UUID]*account.Account
	transactions map[uuid.UUID]*transaction.Transaction
	rules        map[uuid.UUID]*rule.Rule
}

func (t *tables) copy() *tables {
	return &tables{
		accounts:     maps.Clone(t.accounts),
		transactions: maps.Clone(t.transactions),
		rules:        maps.Clone(t.rules),
	}
}

type Store struct {
	mu        sync.RWMutex
	writeMu   sync.Mutex
	committed *tables

	newID func() (uuid.UUID, error)
	now   func() time.Time
}

func New(opts ...Option) *Store {
	s := &Store{
		committed: &tables{
			accounts:     make(map[uuid.UUID]*account.Account),
			transactions: make(map[uuid.UUID]*transaction.Transaction),
			rules:        make(map[uuid.UUID]*rule.Rule),
		},
		newID: uuid.NewV7,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStorage returns a storage.Storage backed by a fresh Store.
func NewStorage(opts ...Option) *storage.Storage {
	return New(opts...).Storage()
}

func (s *Store) Storage() *storage.Storage {
	reader := &storage.Reader{
		Accounts:     &accountReader{view: s.snapshot},
		Transactions: &transactionReader{view: s.snapshot},
		Rules:        &ruleReader{view: s.snapshot},
	}
	return storage.New(reader, s.begin, nil)
}

func (s *Store) snapshot() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

func (s *Store) begin(ctx context.Context) (*storage.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	tx := &memTx{s: s, work: s.snapshot().copy()}
	view := func() *tables { return tx.work }
	return storage.ComposeWriter(tx,
		&accountWriter{accountReader: accountReader{view: view}, s: s},
		&transactionWriter{transactionReader: transactionReader{view: view}, s: s},
		&ruleWriter{ruleReader: ruleReader{view: view}, s: s},
	), nil
}

// memTx holds the writer's working copy until Commit publishes it.
type memTx struct {
	s    *Store
	work *tables
	done bool
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.mu.Lock()
	t.s.committed = t.work
	t.s.mu.Unlock()
	t.s.writeMu.Unlock()
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.writeMu.Unlock()
	return nil
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
