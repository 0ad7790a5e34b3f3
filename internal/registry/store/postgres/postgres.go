// Package postgres provides the PostgreSQL record store. Records live in a
// single table keyed by the derived key bytes; the primary-key constraint is
// what guarantees at most one record per key, and row locks taken inside a
// transaction serialize conflicting units of work.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genesisbarrios/senfiltro/internal/registry/store"
	"github.com/genesisbarrios/senfiltro/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
    key        BYTEA PRIMARY KEY,
    payload    BYTEA NOT NULL,
    capacity   INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the store logic is
// shared between direct calls and units of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed record store.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the records table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate records table: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, key, payload []byte, capacity int) error {
	return create(ctx, s.pool, key, payload, capacity)
}

func (s *Store) Get(ctx context.Context, key []byte) (store.Record, error) {
	return get(ctx, s.pool, key, false)
}

func (s *Store) Put(ctx context.Context, key, payload []byte) error {
	return put(ctx, s.pool, key, payload, false)
}

// RunInTx runs fn inside a database transaction. Reads inside the transaction
// take row locks (FOR UPDATE), so two units of work touching the same record,
// such as two allocations against one counter, are serialized by PostgreSQL and
// the loser observes the winner's committed state.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

// txStore executes inside a pgx transaction with locking reads.
type txStore struct {
	tx pgx.Tx
}

func (t *txStore) Create(ctx context.Context, key, payload []byte, capacity int) error {
	return create(ctx, t.tx, key, payload, capacity)
}

func (t *txStore) Get(ctx context.Context, key []byte) (store.Record, error) {
	return get(ctx, t.tx, key, true)
}

func (t *txStore) Put(ctx context.Context, key, payload []byte) error {
	return put(ctx, t.tx, key, payload, true)
}

func create(ctx context.Context, q querier, key, payload []byte, capacity int) error {
	if len(payload) > capacity {
		return sentinel.ErrCapacityExceeded
	}
	_, err := q.Exec(ctx,
		`INSERT INTO records (key, payload, capacity) VALUES ($1, $2, $3)`,
		key, payload, capacity,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func get(ctx context.Context, q querier, key []byte, forUpdate bool) (store.Record, error) {
	query := `SELECT payload, capacity FROM records WHERE key = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var rec store.Record
	err := q.QueryRow(ctx, query, key).Scan(&rec.Payload, &rec.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Record{}, sentinel.ErrNotFound
		}
		return store.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func put(ctx context.Context, q querier, key, payload []byte, forUpdate bool) error {
	rec, err := get(ctx, q, key, forUpdate)
	if err != nil {
		return err
	}
	if len(payload) > rec.Capacity {
		return sentinel.ErrCapacityExceeded
	}
	_, err = q.Exec(ctx,
		`UPDATE records SET payload = $2, updated_at = now() WHERE key = $1`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}
