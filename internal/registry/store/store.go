// Package store defines the fixed-capacity record store the registry persists
// into. Records are opaque byte payloads at deterministically derived keys;
// each record's capacity is fixed at creation and the payload may be rewritten
// in place but never grown past it.
package store

import "context"

// Record is a stored payload with its reserved capacity.
type Record struct {
	Payload  []byte
	Capacity int
}

// Store is the record-level contract shared by the in-memory and PostgreSQL
// implementations. Implementations return pkg/platform/sentinel errors:
// ErrConflict (Create on an existing key), ErrNotFound (Get/Put on a missing
// key), ErrCapacityExceeded (payload larger than the record's capacity).
type Store interface {
	// Create stores a new record with the given reserved capacity.
	Create(ctx context.Context, key, payload []byte, capacity int) error

	// Get returns the record at key.
	Get(ctx context.Context, key []byte) (Record, error)

	// Put rewrites the payload of an existing record in place.
	Put(ctx context.Context, key, payload []byte) error
}

// TxStore adds the unit-of-work boundary. All reads and writes inside fn are
// all-or-nothing, and units of work touching the same records are serialized
// by the implementation (a coarse lock in memory, row locks in PostgreSQL).
// This is what upholds the identifier allocator's "no id issued twice" and the
// reaction ledger's "one record per (post, user)" under contention.
type TxStore interface {
	Store

	RunInTx(ctx context.Context, fn func(tx Store) error) error
}
