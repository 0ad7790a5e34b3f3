package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/genesisbarrios/senfiltro/pkg/requestcontext"
)

// =============================================================================
// Audit Pipeline Test Suite
// =============================================================================

type AuditSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) SetupTest() {
	s.logger = slog.New(slog.DiscardHandler)
}

func (s *AuditSuite) TestRecorder() {
	s.Run("stamps timestamp and request id from context", func() {
		recorder := NewRecorder(4, s.logger)
		ctx := requestcontext.WithRequestID(context.Background(), "req-123")

		recorder.Record(ctx, Event{Action: ActionPostCreated, Actor: "alice"})

		event := <-recorder.Events()
		s.Equal(ActionPostCreated, event.Action)
		s.Equal("req-123", event.RequestID)
		s.False(event.Timestamp.IsZero())
	})

	s.Run("preserves an explicit timestamp", func() {
		recorder := NewRecorder(4, s.logger)
		at := time.Unix(1700000000, 0)

		recorder.Record(context.Background(), Event{Action: ActionPostDeleted, Timestamp: at})

		event := <-recorder.Events()
		s.Equal(at, event.Timestamp)
	})

	s.Run("drops events when the buffer is full", func() {
		recorder := NewRecorder(1, s.logger)
		ctx := context.Background()

		recorder.Record(ctx, Event{Action: ActionPostCreated})
		recorder.Record(ctx, Event{Action: ActionPostUpdated})

		event := <-recorder.Events()
		s.Equal(ActionPostCreated, event.Action)
		select {
		case extra := <-recorder.Events():
			s.Failf("unexpected event", "got %s", extra.Action)
		default:
		}
	})

	s.Run("nil recorder records nothing", func() {
		var recorder *Recorder
		recorder.Record(context.Background(), Event{Action: ActionPostCreated})
	})
}

func (s *AuditSuite) TestWorker() {
	s.Run("drains events into the sink", func() {
		recorder := NewRecorder(8, s.logger)
		sink := NewInMemoryStore()
		worker := NewWorker(sink, recorder.Events(), s.logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- worker.Run(ctx) }()

		recorder.Record(ctx, Event{Action: ActionPostCreated, Actor: "alice"})
		recorder.Record(ctx, Event{Action: ActionCommentCreated, Actor: "bob"})

		s.Eventually(func() bool {
			return len(sink.List(ctx)) == 2
		}, time.Second, 10*time.Millisecond)

		cancel()
		s.ErrorIs(<-done, context.Canceled)

		events := sink.List(context.Background())
		s.Equal(ActionPostCreated, events[0].Action)
		s.Equal(ActionCommentCreated, events[1].Action)
	})
}
