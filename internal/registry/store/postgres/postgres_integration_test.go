//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/genesisbarrios/senfiltro/internal/registry/codec"
	"github.com/genesisbarrios/senfiltro/internal/registry/models"
	"github.com/genesisbarrios/senfiltro/internal/registry/service"
	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	"github.com/genesisbarrios/senfiltro/internal/registry/store"
	"github.com/genesisbarrios/senfiltro/pkg/platform/sentinel"
	"github.com/genesisbarrios/senfiltro/pkg/testutil/containers"
)

// =============================================================================
// PostgreSQL Store Integration Test Suite
// =============================================================================
// Run with: go test -tags=integration ./internal/registry/store/postgres/...

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.Pool)
	s.Require().NoError(s.store.Migrate(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "records"))
}

func (s *PostgresStoreSuite) TestCreateGetPut() {
	s.Run("round-trips a record", func() {
		err := s.store.Create(s.ctx, []byte("key-a"), []byte("payload"), 32)
		s.Require().NoError(err)

		rec, err := s.store.Get(s.ctx, []byte("key-a"))
		s.Require().NoError(err)
		s.Equal([]byte("payload"), rec.Payload)
		s.Equal(32, rec.Capacity)

		s.Require().NoError(s.store.Put(s.ctx, []byte("key-a"), []byte("updated")))
		rec, err = s.store.Get(s.ctx, []byte("key-a"))
		s.Require().NoError(err)
		s.Equal([]byte("updated"), rec.Payload)
	})

	s.Run("duplicate key maps the unique violation to a conflict", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("dup"), []byte("one"), 16))
		err := s.store.Create(s.ctx, []byte("dup"), []byte("two"), 16)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("missing key", func() {
		_, err := s.store.Get(s.ctx, []byte("absent"))
		s.ErrorIs(err, sentinel.ErrNotFound)

		err = s.store.Put(s.ctx, []byte("absent"), []byte("x"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("capacity is enforced on create and put", func() {
		err := s.store.Create(s.ctx, []byte("tight"), []byte("too-big"), 3)
		s.ErrorIs(err, sentinel.ErrCapacityExceeded)

		s.Require().NoError(s.store.Create(s.ctx, []byte("fixed"), []byte("ok"), 4))
		err = s.store.Put(s.ctx, []byte("fixed"), []byte("overflow"))
		s.ErrorIs(err, sentinel.ErrCapacityExceeded)
	})
}

func (s *PostgresStoreSuite) TestRunInTx() {
	s.Run("rolls back every write on failure", func() {
		s.Require().NoError(s.store.Create(s.ctx, []byte("base"), []byte("before"), 16))

		err := s.store.RunInTx(s.ctx, func(tx store.Store) error {
			if err := tx.Put(s.ctx, []byte("base"), []byte("after")); err != nil {
				return err
			}
			if err := tx.Create(s.ctx, []byte("fresh"), []byte("x"), 8); err != nil {
				return err
			}
			return sentinel.ErrInvalidState
		})
		s.ErrorIs(err, sentinel.ErrInvalidState)

		rec, gerr := s.store.Get(s.ctx, []byte("base"))
		s.Require().NoError(gerr)
		s.Equal([]byte("before"), rec.Payload)

		_, gerr = s.store.Get(s.ctx, []byte("fresh"))
		s.ErrorIs(gerr, sentinel.ErrNotFound)
	})

	s.Run("commits on success", func() {
		err := s.store.RunInTx(s.ctx, func(tx store.Store) error {
			return tx.Create(s.ctx, []byte("committed"), []byte("v"), 8)
		})
		s.Require().NoError(err)

		_, err = s.store.Get(s.ctx, []byte("committed"))
		s.NoError(err)
	})
}

// TestConcurrentAllocation drives the full service against PostgreSQL to
// verify that row locks serialize id allocation: concurrent creates must never
// issue the same id twice.
func (s *PostgresStoreSuite) TestConcurrentAllocation() {
	svc, err := service.New(s.store)
	s.Require().NoError(err)

	author := id.Identity{0x01}
	s.Require().NoError(svc.InitializeCounters(s.ctx, author))

	const workers = 8
	const perWorker = 5

	ids := make(chan uint64, workers*perWorker)
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for range perWorker {
				post, err := svc.CreatePost(s.ctx, author, "QmConcurrent", false)
				if err != nil {
					return err
				}
				ids <- post.ID
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())
	close(ids)

	seen := make(map[uint64]struct{}, workers*perWorker)
	for postID := range ids {
		_, dup := seen[postID]
		s.False(dup, "post id %d issued twice", postID)
		seen[postID] = struct{}{}
	}
	s.Len(seen, workers*perWorker)

	// The counter must agree with the number of issued ids.
	rec, err := s.store.Get(s.ctx, codec.PostCounterKey())
	s.Require().NoError(err)
	counter, err := codec.DecodeCounter(rec.Payload)
	s.Require().NoError(err)
	s.Equal(uint64(workers*perWorker), counter.Count)
	s.Equal(models.CounterPosts, counter.Kind)
}
