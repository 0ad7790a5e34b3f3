// Package memory provides the in-memory record store used by unit tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/genesisbarrios/senfiltro/internal/registry/store"
	"github.com/genesisbarrios/senfiltro/pkg/platform/sentinel"
)

type record struct {
	payload  []byte
	capacity int
}

// table holds records keyed by the string form of their key bytes. It carries
// the store semantics; locking lives in Store.
type table map[string]record

func (t table) create(key, payload []byte, capacity int) error {
	k := string(key)
	if _, exists := t[k]; exists {
		return sentinel.ErrConflict
	}
	if len(payload) > capacity {
		return sentinel.ErrCapacityExceeded
	}
	t[k] = record{payload: clone(payload), capacity: capacity}
	return nil
}

func (t table) get(key []byte) (store.Record, error) {
	rec, ok := t[string(key)]
	if !ok {
		return store.Record{}, sentinel.ErrNotFound
	}
	return store.Record{Payload: clone(rec.payload), Capacity: rec.capacity}, nil
}

func (t table) put(key, payload []byte) error {
	k := string(key)
	rec, ok := t[k]
	if !ok {
		return sentinel.ErrNotFound
	}
	if len(payload) > rec.capacity {
		return sentinel.ErrCapacityExceeded
	}
	rec.payload = clone(payload)
	t[k] = rec
	return nil
}

func (t table) snapshot() table {
	out := make(table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Store is an in-memory record store. A single mutex serializes units of work,
// which trivially satisfies the conflict-serialization contract.
type Store struct {
	mu      sync.Mutex
	records table
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(table)}
}

func (s *Store) Create(_ context.Context, key, payload []byte, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.create(key, payload, capacity)
}

func (s *Store) Get(_ context.Context, key []byte) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.get(key)
}

func (s *Store) Put(_ context.Context, key, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.put(key, payload)
}

// RunInTx executes fn against a snapshot of the table and swaps it in on
// success. An error from fn discards every write, so partial effects are
// never observable. The lock is held for the whole unit of work.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &txView{records: s.records.snapshot()}
	if err := fn(tx); err != nil {
		return err
	}
	s.records = tx.records
	return nil
}

// txView is the unlocked view handed to RunInTx callbacks. Writes land in the
// snapshot only; the outer store is untouched until commit.
type txView struct {
	records table
}

func (v *txView) Create(_ context.Context, key, payload []byte, capacity int) error {
	return v.records.create(key, payload, capacity)
}

func (v *txView) Get(_ context.Context, key []byte) (store.Record, error) {
	return v.records.get(key)
}

func (v *txView) Put(_ context.Context, key, payload []byte) error {
	return v.records.put(key, payload)
}
