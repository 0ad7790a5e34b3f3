package audit

import "context"

// Sink receives audit events. Implementations: the in-memory store and the
// Kafka producer.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
