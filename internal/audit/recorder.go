package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/genesisbarrios/senfiltro/pkg/requestcontext"
)

// Recorder is the service-facing entry point for audit events. Events are
// enqueued and drained by a Worker, so recording never blocks or fails the
// business operation; if the buffer is full the event is dropped and logged.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewRecorder creates a Recorder with the given buffer size.
func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{inbox: make(chan Event, buffer), logger: logger}
}

// Record enqueues an event, stamping timestamp and request id from context.
// A nil *Recorder is valid and records nothing.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
		)
	}
}

// Events exposes the inbox for the draining Worker.
func (r *Recorder) Events() <-chan Event {
	return r.inbox
}
