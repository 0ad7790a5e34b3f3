package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
)

// =============================================================================
// Reaction Ledger Test Suite
// =============================================================================
// Justification for unit tests: the transition table and saturating counter
// arithmetic are pure logic with many branch combinations that are cheap to
// cover exhaustively here and awkward to cover through HTTP flows.

type ReactionModelSuite struct {
	suite.Suite
	user id.Identity
	post *Post
}

func TestReactionModelSuite(t *testing.T) {
	suite.Run(t, new(ReactionModelSuite))
}

func (s *ReactionModelSuite) SetupTest() {
	s.user = id.Identity{0x11}
	post, err := NewPost(1, id.Identity{0x01}, "QmExample", false, 0)
	s.Require().NoError(err)
	s.post = post
}

func (s *ReactionModelSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *ReactionModelSuite) counts() (uint64, uint64) {
	return s.post.Likes, s.post.Dislikes
}

func (s *ReactionModelSuite) TestNewReaction() {
	r := NewReaction(1, s.user)
	s.Equal(uint64(1), r.PostID)
	s.Equal(s.user, r.User)
	s.Equal(id.ReactionNone, r.Value)
	s.True(r.Initialized)
}

func (s *ReactionModelSuite) TestCheckBinding() {
	r := NewReaction(1, s.user)

	s.Run("matching pair passes", func() {
		s.NoError(r.CheckBinding(1, s.user))
	})

	s.Run("wrong post is rejected", func() {
		err := r.CheckBinding(2, s.user)
		s.True(dErrors.Is(err, dErrors.CodeInvalidAccount))
	})

	s.Run("wrong user is rejected", func() {
		err := r.CheckBinding(1, id.Identity{0x99})
		s.True(dErrors.Is(err, dErrors.CodeInvalidAccount))
	})

	s.Run("uninitialized record is rejected", func() {
		var zero Reaction
		err := zero.CheckBinding(0, id.Identity{})
		s.True(dErrors.Is(err, dErrors.CodeInvalidAccount))
	})
}

func (s *ReactionModelSuite) TestApplyTransitions() {
	s.Run("none to like", func() {
		r := NewReaction(1, s.user)
		s.NoError(r.Apply(id.ReactionLike, s.post))
		likes, dislikes := s.counts()
		s.Equal(uint64(1), likes)
		s.Equal(uint64(0), dislikes)
		s.Equal(id.ReactionLike, r.Value)
	})

	s.Run("like to dislike moves both counters", func() {
		r := NewReaction(1, s.user)
		s.Require().NoError(r.Apply(id.ReactionLike, s.post))

		s.NoError(r.Apply(id.ReactionDislike, s.post))
		likes, dislikes := s.counts()
		s.Equal(uint64(0), likes)
		s.Equal(uint64(1), dislikes)
		s.Equal(id.ReactionDislike, r.Value)
	})

	s.Run("full like, dislike, clear cycle returns to zero", func() {
		r := NewReaction(1, s.user)

		s.Require().NoError(r.Apply(id.ReactionLike, s.post))
		likes, dislikes := s.counts()
		s.Equal(uint64(1), likes)
		s.Equal(uint64(0), dislikes)

		s.Require().NoError(r.Apply(id.ReactionDislike, s.post))
		likes, dislikes = s.counts()
		s.Equal(uint64(0), likes)
		s.Equal(uint64(1), dislikes)

		s.Require().NoError(r.Apply(id.ReactionNone, s.post))
		likes, dislikes = s.counts()
		s.Equal(uint64(0), likes)
		s.Equal(uint64(0), dislikes)
		s.Equal(id.ReactionNone, r.Value)
	})

	s.Run("reapplying the current value is idempotent", func() {
		r := NewReaction(1, s.user)
		s.Require().NoError(r.Apply(id.ReactionLike, s.post))

		for range 3 {
			s.NoError(r.Apply(id.ReactionLike, s.post))
		}
		likes, dislikes := s.counts()
		s.Equal(uint64(1), likes)
		s.Equal(uint64(0), dislikes)
	})

	s.Run("clearing a neutral reaction is a no-op", func() {
		r := NewReaction(1, s.user)
		s.NoError(r.Apply(id.ReactionNone, s.post))
		likes, dislikes := s.counts()
		s.Equal(uint64(0), likes)
		s.Equal(uint64(0), dislikes)
	})

	s.Run("out-of-range value is rejected without side effects", func() {
		r := NewReaction(1, s.user)
		s.Require().NoError(r.Apply(id.ReactionLike, s.post))

		err := r.Apply(2, s.post)
		s.True(dErrors.Is(err, dErrors.CodeInvalidReaction))
		likes, _ := s.counts()
		s.Equal(uint64(1), likes)
		s.Equal(id.ReactionLike, r.Value)
	})
}

func (s *ReactionModelSuite) TestSaturation() {
	s.Run("decrement floors at zero", func() {
		// Counter already at zero with a stale like on record, as after an
		// unrelated counter reset path.
		r := NewReaction(1, s.user)
		r.Value = id.ReactionLike
		s.post.Likes = 0

		s.NoError(r.Apply(id.ReactionNone, s.post))
		s.Equal(uint64(0), s.post.Likes)
	})

	s.Run("increment caps at the maximum", func() {
		r := NewReaction(1, s.user)
		s.post.Likes = math.MaxUint64

		s.NoError(r.Apply(id.ReactionLike, s.post))
		s.Equal(uint64(math.MaxUint64), s.post.Likes)
	})
}
