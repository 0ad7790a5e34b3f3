package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/genesisbarrios/senfiltro/internal/registry/store"
	"github.com/genesisbarrios/senfiltro/pkg/platform/sentinel"
)

// =============================================================================
// In-Memory Store Test Suite
// =============================================================================

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestCreate() {
	s.Run("creates a record", func() {
		err := s.store.Create(s.ctx, []byte("key-a"), []byte("payload"), 32)
		s.NoError(err)

		rec, err := s.store.Get(s.ctx, []byte("key-a"))
		s.NoError(err)
		s.Equal([]byte("payload"), rec.Payload)
		s.Equal(32, rec.Capacity)
	})

	s.Run("duplicate key conflicts", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("dup"), []byte("one"), 16))
		err := s.store.Create(s.ctx, []byte("dup"), []byte("two"), 16)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("payload over capacity is rejected", func() {
		err := s.store.Create(s.ctx, []byte("tight"), []byte("too-big"), 3)
		s.ErrorIs(err, sentinel.ErrCapacityExceeded)

		_, err = s.store.Get(s.ctx, []byte("tight"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestGet() {
	s.Run("missing key", func() {
		_, err := s.store.Get(s.ctx, []byte("absent"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned payload is a copy", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("iso"), []byte("abc"), 8))

		rec, err := s.store.Get(s.ctx, []byte("iso"))
		s.Require().NoError(err)
		rec.Payload[0] = 'z'

		again, err := s.store.Get(s.ctx, []byte("iso"))
		s.Require().NoError(err)
		s.Equal([]byte("abc"), again.Payload)
	})
}

func (s *MemoryStoreSuite) TestPut() {
	s.Run("rewrites within capacity", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("key"), []byte("old"), 8))
		s.NoError(s.store.Put(s.ctx, []byte("key"), []byte("newer")))

		rec, err := s.store.Get(s.ctx, []byte("key"))
		s.NoError(err)
		s.Equal([]byte("newer"), rec.Payload)
	})

	s.Run("missing key", func() {
		err := s.store.Put(s.ctx, []byte("absent"), []byte("x"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("capacity is fixed at creation", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("fixed"), []byte("ok"), 4))
		err := s.store.Put(s.ctx, []byte("fixed"), []byte("overflow"))
		s.ErrorIs(err, sentinel.ErrCapacityExceeded)

		rec, gerr := s.store.Get(s.ctx, []byte("fixed"))
		s.NoError(gerr)
		s.Equal([]byte("ok"), rec.Payload)
	})
}

func (s *MemoryStoreSuite) TestRunInTx() {
	s.Run("commits all writes on success", func() {
		err := s.store.RunInTx(s.ctx, func(tx store.Store) error {
			if err := tx.Create(s.ctx, []byte("a"), []byte("1"), 8); err != nil {
				return err
			}
			return tx.Create(s.ctx, []byte("b"), []byte("2"), 8)
		})
		s.NoError(err)

		_, err = s.store.Get(s.ctx, []byte("a"))
		s.NoError(err)
		_, err = s.store.Get(s.ctx, []byte("b"))
		s.NoError(err)
	})

	s.Run("discards every write on failure", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("base"), []byte("before"), 16))

		boom := errors.New("unit of work failed")
		err := s.store.RunInTx(s.ctx, func(tx store.Store) error {
			if err := tx.Put(s.ctx, []byte("base"), []byte("after")); err != nil {
				return err
			}
			if err := tx.Create(s.ctx, []byte("fresh"), []byte("x"), 8); err != nil {
				return err
			}
			return boom
		})
		s.ErrorIs(err, boom)

		rec, gerr := s.store.Get(s.ctx, []byte("base"))
		s.NoError(gerr)
		s.Equal([]byte("before"), rec.Payload)

		_, gerr = s.store.Get(s.ctx, []byte("fresh"))
		s.ErrorIs(gerr, sentinel.ErrNotFound)
	})

	s.Run("transaction reads its own writes", func() {
		err := s.store.RunInTx(s.ctx, func(tx store.Store) error {
			if err := tx.Create(s.ctx, []byte("rw"), []byte("v1"), 8); err != nil {
				return err
			}
			rec, err := tx.Get(s.ctx, []byte("rw"))
			if err != nil {
				return err
			}
			s.Equal([]byte("v1"), rec.Payload)
			return tx.Put(s.ctx, []byte("rw"), []byte("v2"))
		})
		s.NoError(err)

		rec, gerr := s.store.Get(s.ctx, []byte("rw"))
		s.NoError(gerr)
		s.Equal([]byte("v2"), rec.Payload)
	})

	s.Run("cancelled context aborts before the callback", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := s.store.RunInTx(ctx, func(tx store.Store) error {
			called = true
			return nil
		})
		s.ErrorIs(err, context.Canceled)
		s.False(called)
	})
}
