package audit

import "time"

// Actions recorded by the registry. One event per committed mutation.
const (
	ActionPostCreated     = "post_created"
	ActionPostUpdated     = "post_updated"
	ActionPostDeleted     = "post_deleted"
	ActionCommentCreated  = "comment_created"
	ActionCommentUpdated  = "comment_updated"
	ActionCommentDeleted  = "comment_deleted"
	ActionReactionApplied = "reaction_applied"
	ActionCountersInit    = "counters_initialized"
)

// Event is a structured audit record of a registry mutation.
type Event struct {
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Entity    string    `json:"entity,omitempty"`
	EntityID  uint64    `json:"entity_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
