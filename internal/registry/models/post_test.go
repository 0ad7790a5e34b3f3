package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
)

// =============================================================================
// Post Model Test Suite
// =============================================================================

type PostModelSuite struct {
	suite.Suite
	author id.Identity
	other  id.Identity
}

func TestPostModelSuite(t *testing.T) {
	suite.Run(t, new(PostModelSuite))
}

func (s *PostModelSuite) SetupTest() {
	s.author = id.Identity{0x01}
	s.other = id.Identity{0x02}
}

func (s *PostModelSuite) TestNewPost() {
	s.Run("constructs an active post", func() {
		post, err := NewPost(1, s.author, "QmExample", true, 1700000000)
		s.Require().NoError(err)
		s.Equal(uint64(1), post.ID)
		s.Equal(s.author, post.Author)
		s.Equal("QmExample", post.MetadataCID)
		s.True(post.AIGenerated)
		s.Zero(post.Likes)
		s.Zero(post.Dislikes)
		s.False(post.Deleted)
	})

	s.Run("rejects a CID over the bound", func() {
		_, err := NewPost(1, s.author, strings.Repeat("a", MaxMetadataCIDBytes+1), false, 0)
		s.True(dErrors.Is(err, dErrors.CodeMetadataCidTooLong))
	})

	s.Run("accepts a CID at exactly the bound", func() {
		post, err := NewPost(1, s.author, strings.Repeat("a", MaxMetadataCIDBytes), false, 0)
		s.NoError(err)
		s.Len(post.MetadataCID, MaxMetadataCIDBytes)
	})
}

func (s *PostModelSuite) TestCanMutate() {
	post, err := NewPost(1, s.author, "QmExample", false, 0)
	s.Require().NoError(err)

	s.Run("author may mutate an active post", func() {
		s.NoError(post.CanMutate(s.author))
	})

	s.Run("non-author is rejected before the tombstone check", func() {
		deleted := *post
		deleted.Deleted = true
		err := deleted.CanMutate(s.other)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("deleted post rejects even the author", func() {
		deleted := *post
		deleted.Deleted = true
		err := deleted.CanMutate(s.author)
		s.True(dErrors.Is(err, dErrors.CodeRecordDeleted))
	})
}

func (s *PostModelSuite) TestUpdate() {
	s.Run("nil fields leave the post unchanged", func() {
		post, err := NewPost(1, s.author, "QmBefore", true, 0)
		s.Require().NoError(err)

		s.NoError(post.Update(s.author, nil, nil))
		s.Equal("QmBefore", post.MetadataCID)
		s.True(post.AIGenerated)
	})

	s.Run("updates provided fields only", func() {
		post, err := NewPost(1, s.author, "QmBefore", true, 0)
		s.Require().NoError(err)

		cid := "QmAfter"
		s.NoError(post.Update(s.author, &cid, nil))
		s.Equal("QmAfter", post.MetadataCID)
		s.True(post.AIGenerated)

		aiGen := false
		s.NoError(post.Update(s.author, nil, &aiGen))
		s.False(post.AIGenerated)
	})

	s.Run("oversized CID leaves the post unchanged", func() {
		post, err := NewPost(1, s.author, "QmBefore", false, 0)
		s.Require().NoError(err)

		cid := strings.Repeat("a", MaxMetadataCIDBytes+1)
		err = post.Update(s.author, &cid, nil)
		s.True(dErrors.Is(err, dErrors.CodeMetadataCidTooLong))
		s.Equal("QmBefore", post.MetadataCID)
	})

	s.Run("non-author cannot update", func() {
		post, err := NewPost(1, s.author, "QmBefore", false, 0)
		s.Require().NoError(err)

		cid := "QmAfter"
		err = post.Update(s.other, &cid, nil)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.Equal("QmBefore", post.MetadataCID)
	})
}

func (s *PostModelSuite) TestDelete() {
	s.Run("author soft-deletes", func() {
		post, err := NewPost(1, s.author, "QmExample", false, 0)
		s.Require().NoError(err)

		s.NoError(post.Delete(s.author))
		s.True(post.Deleted)
	})

	s.Run("delete is terminal", func() {
		post, err := NewPost(1, s.author, "QmExample", false, 0)
		s.Require().NoError(err)
		s.Require().NoError(post.Delete(s.author))

		err = post.Delete(s.author)
		s.True(dErrors.Is(err, dErrors.CodeRecordDeleted))

		cid := "QmAfter"
		err = post.Update(s.author, &cid, nil)
		s.True(dErrors.Is(err, dErrors.CodeRecordDeleted))
	})

	s.Run("non-author cannot delete", func() {
		post, err := NewPost(1, s.author, "QmExample", false, 0)
		s.Require().NoError(err)

		err = post.Delete(s.other)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
		s.False(post.Deleted)
	})
}
