package handler

// CreatePostRequest is the body for POST /posts.
type CreatePostRequest struct {
	MetadataCID string `json:"metadata_cid"`
	AIGenerated bool   `json:"ai_generated"`
}

// UpdatePostRequest is the body for PATCH /posts/{id}. Nil fields are left
// unchanged.
type UpdatePostRequest struct {
	MetadataCID *string `json:"metadata_cid,omitempty"`
	AIGenerated *bool   `json:"ai_generated,omitempty"`
}

// DeletePostRequest is the body for DELETE /posts/{id}. CandidateComments is
// the caller-supplied cascade set: comments referencing the post that the
// caller omits keep their stale parent reference.
type DeletePostRequest struct {
	CandidateComments []uint64 `json:"candidate_comments,omitempty"`
}

// CreateCommentRequest is the body for POST /comments.
type CreateCommentRequest struct {
	MetadataCID string  `json:"metadata_cid"`
	ParentPost  *uint64 `json:"parent_post,omitempty"`
}

// UpdateCommentRequest is the body for PATCH /comments/{id}.
type UpdateCommentRequest struct {
	MetadataCID *string `json:"metadata_cid,omitempty"`
}

// ReactionRequest is the body for PUT /posts/{id}/reaction.
type ReactionRequest struct {
	Value int8 `json:"value"`
}
