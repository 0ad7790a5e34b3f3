package handler

import (
	"github.com/genesisbarrios/senfiltro/internal/registry/models"
)

// PostResponse is the transport view of a post.
type PostResponse struct {
	ID          uint64 `json:"id"`
	Author      string `json:"author"`
	MetadataCID string `json:"metadata_cid"`
	AIGenerated bool   `json:"ai_generated"`
	Likes       uint64 `json:"likes"`
	Dislikes    uint64 `json:"dislikes"`
	CreatedAt   int64  `json:"created_at"`
	Deleted     bool   `json:"deleted"`
}

func fromPost(p *models.Post) *PostResponse {
	return &PostResponse{
		ID:          p.ID,
		Author:      p.Author.String(),
		MetadataCID: p.MetadataCID,
		AIGenerated: p.AIGenerated,
		Likes:       p.Likes,
		Dislikes:    p.Dislikes,
		CreatedAt:   p.CreatedAt,
		Deleted:     p.Deleted,
	}
}

// CommentResponse is the transport view of a comment.
type CommentResponse struct {
	ID          uint64  `json:"id"`
	Author      string  `json:"author"`
	MetadataCID string  `json:"metadata_cid"`
	ParentPost  *uint64 `json:"parent_post,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	Deleted     bool    `json:"deleted"`
}

func fromComment(c *models.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:          c.ID,
		Author:      c.Author.String(),
		MetadataCID: c.MetadataCID,
		CreatedAt:   c.CreatedAt,
		Deleted:     c.Deleted,
	}
	if c.ParentPost != nil {
		parent := *c.ParentPost
		resp.ParentPost = &parent
	}
	return resp
}

// ReactionResponse reports the post's aggregates after a reaction is applied.
type ReactionResponse struct {
	PostID   uint64 `json:"post_id"`
	Likes    uint64 `json:"likes"`
	Dislikes uint64 `json:"dislikes"`
	Value    int8   `json:"value"`
}
