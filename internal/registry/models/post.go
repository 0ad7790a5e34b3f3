package models

import (
	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
)

// MaxMetadataCIDBytes bounds the content identifier string. The bound is part
// of the storage contract: record capacity is sized to the CID at creation and
// the backing record is never resized.
const MaxMetadataCIDBytes = 200

// Post is a registry record for a published post. The heavy content lives
// off-system behind MetadataCID; the registry stores authorship, lifecycle
// flags, and aggregate reaction counts only.
//
// Invariants:
//   - ID and Author are assigned once and immutable
//   - MetadataCID is at most MaxMetadataCIDBytes bytes
//   - Likes/Dislikes are mutated only by the reaction ledger, saturating
//   - Deleted is a one-way tombstone; no transition leaves Deleted
//
// Lifecycle: Active → Active (updates, author only) → Deleted (terminal, via
// soft delete by the author). Records are never physically removed.
type Post struct {
	ID          uint64
	Author      id.Identity
	MetadataCID string
	AIGenerated bool
	Likes       uint64
	Dislikes    uint64
	CreatedAt   int64
	Deleted     bool
}

// ValidateMetadataCID enforces the CID length bound shared by posts and
// comments.
func ValidateMetadataCID(cid string) error {
	if len(cid) > MaxMetadataCIDBytes {
		return dErrors.New(dErrors.CodeMetadataCidTooLong, "metadata CID exceeds 200 bytes")
	}
	return nil
}

// NewPost constructs an Active post owned by author.
func NewPost(postID uint64, author id.Identity, metadataCID string, aiGenerated bool, now int64) (*Post, error) {
	if err := ValidateMetadataCID(metadataCID); err != nil {
		return nil, err
	}
	return &Post{
		ID:          postID,
		Author:      author,
		MetadataCID: metadataCID,
		AIGenerated: aiGenerated,
		CreatedAt:   now,
	}, nil
}

// CanMutate checks the authorization guard and the tombstone before any
// mutation. Only the original author may mutate, and Deleted is terminal.
func (p *Post) CanMutate(caller id.Identity) error {
	if p.Author != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the post author")
	}
	if p.Deleted {
		return dErrors.New(dErrors.CodeRecordDeleted, "post is deleted")
	}
	return nil
}

// ApplyUpdate applies the provided fields. Nil fields are left unchanged.
// Call CanMutate and ValidateMetadataCID first.
func (p *Post) ApplyUpdate(metadataCID *string, aiGenerated *bool) {
	if metadataCID != nil {
		p.MetadataCID = *metadataCID
	}
	if aiGenerated != nil {
		p.AIGenerated = *aiGenerated
	}
}

// Update validates and applies a partial update in one call.
func (p *Post) Update(caller id.Identity, metadataCID *string, aiGenerated *bool) error {
	if err := p.CanMutate(caller); err != nil {
		return err
	}
	if metadataCID != nil {
		if err := ValidateMetadataCID(*metadataCID); err != nil {
			return err
		}
	}
	p.ApplyUpdate(metadataCID, aiGenerated)
	return nil
}

// Delete validates and applies the soft delete.
func (p *Post) Delete(caller id.Identity) error {
	if err := p.CanMutate(caller); err != nil {
		return err
	}
	p.Deleted = true
	return nil
}
