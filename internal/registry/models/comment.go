package models

import (
	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
)

// Comment is a registry record for a threaded comment. ParentPost is a
// non-owning, nullable back-reference to a post id.
//
// Invariants:
//   - ID and Author are assigned once and immutable
//   - ParentPost is set at creation only; it may transition Some(id) → None
//     exactly once, triggered by deletion of the referenced post, and is never
//     set again
//   - Deleted is a one-way tombstone; no transition leaves Deleted
type Comment struct {
	ID          uint64
	Author      id.Identity
	MetadataCID string
	ParentPost  *uint64
	CreatedAt   int64
	Deleted     bool
}

// NewComment constructs an Active comment owned by author.
func NewComment(commentID uint64, author id.Identity, metadataCID string, parentPost *uint64, now int64) (*Comment, error) {
	if err := ValidateMetadataCID(metadataCID); err != nil {
		return nil, err
	}
	c := &Comment{
		ID:          commentID,
		Author:      author,
		MetadataCID: metadataCID,
		CreatedAt:   now,
	}
	if parentPost != nil {
		parent := *parentPost
		c.ParentPost = &parent
	}
	return c, nil
}

// CanMutate checks the authorization guard and the tombstone before any
// author-driven mutation. Cascade unlinking is not author-driven and bypasses
// this check.
func (c *Comment) CanMutate(caller id.Identity) error {
	if c.Author != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the comment author")
	}
	if c.Deleted {
		return dErrors.New(dErrors.CodeRecordDeleted, "comment is deleted")
	}
	return nil
}

// Update validates and applies a partial update.
func (c *Comment) Update(caller id.Identity, metadataCID *string) error {
	if err := c.CanMutate(caller); err != nil {
		return err
	}
	if metadataCID != nil {
		if err := ValidateMetadataCID(*metadataCID); err != nil {
			return err
		}
		c.MetadataCID = *metadataCID
	}
	return nil
}

// Delete validates and applies the soft delete.
func (c *Comment) Delete(caller id.Identity) error {
	if err := c.CanMutate(caller); err != nil {
		return err
	}
	c.Deleted = true
	return nil
}

// UnlinkParent clears the parent reference if it points at postID, reporting
// whether the comment changed. Called by the cascade when the parent post is
// soft-deleted; the cascade acts on behalf of the post author, not the comment
// author, so the authorization guard does not apply.
func (c *Comment) UnlinkParent(postID uint64) bool {
	if c.ParentPost == nil || *c.ParentPost != postID {
		return false
	}
	c.ParentPost = nil
	return true
}
