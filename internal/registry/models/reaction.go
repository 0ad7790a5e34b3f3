package models

import (
	"math"

	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
)

// Reaction is the deduplicated per-(post, user) ledger entry. At most one
// record exists per pair; the storage key embeds both, so a caller can only
// ever reach their own record.
//
// Invariants:
//   - PostID and User are bound permanently on first touch
//   - Value always reflects the user's current standing and stays consistent
//     with the post's aggregate counters
type Reaction struct {
	PostID      uint64
	User        id.Identity
	Value       int8
	Initialized bool
}

// NewReaction initializes the ledger entry on first touch, binding it to the
// (post, user) pair with a neutral value.
func NewReaction(postID uint64, user id.Identity) *Reaction {
	return &Reaction{PostID: postID, User: user, Value: id.ReactionNone, Initialized: true}
}

// CheckBinding rejects a reaction record that is not bound to the given
// (post, user) pair. A mismatch means a corrupted or replayed key reached the
// ledger.
func (r *Reaction) CheckBinding(postID uint64, user id.Identity) error {
	if !r.Initialized || r.PostID != postID || r.User != user {
		return dErrors.New(dErrors.CodeInvalidAccount, "reaction record does not match (post, user)")
	}
	return nil
}

// Apply transitions the reaction to the requested value and adjusts the
// post's aggregate counters with saturating arithmetic. Reapplying the current
// value is a no-op, which makes repeated identical requests idempotent.
func (r *Reaction) Apply(value int8, post *Post) error {
	if !id.ValidReaction(value) {
		return dErrors.New(dErrors.CodeInvalidReaction, "reaction must be -1, 0, or 1")
	}
	switch value {
	case id.ReactionLike:
		if r.Value == id.ReactionDislike {
			post.Dislikes = satSub(post.Dislikes, 1)
		}
		if r.Value != id.ReactionLike {
			post.Likes = satAdd(post.Likes, 1)
			r.Value = id.ReactionLike
		}
	case id.ReactionDislike:
		if r.Value == id.ReactionLike {
			post.Likes = satSub(post.Likes, 1)
		}
		if r.Value != id.ReactionDislike {
			post.Dislikes = satAdd(post.Dislikes, 1)
			r.Value = id.ReactionDislike
		}
	case id.ReactionNone:
		if r.Value == id.ReactionLike {
			post.Likes = satSub(post.Likes, 1)
		} else if r.Value == id.ReactionDislike {
			post.Dislikes = satSub(post.Dislikes, 1)
		}
		r.Value = id.ReactionNone
	}
	return nil
}

func satAdd(v, d uint64) uint64 {
	if v > math.MaxUint64-d {
		return math.MaxUint64
	}
	return v + d
}

func satSub(v, d uint64) uint64 {
	if v < d {
		return 0
	}
	return v - d
}
