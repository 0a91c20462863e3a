package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"votesmart/pkg/requestcontext"
)

// Publisher buffers audit events for the background worker. Record never
// blocks the request path: when the buffer is full the event is dropped and
// logged, not the mutation.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

var _ Recorder = (*Publisher)(nil)

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Record stamps the event with an ID, the request-scoped time, and the
// request correlation ID, then hands it to the worker.
func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"action", event.Action,
			"actor", event.Actor,
		)
	}
}

// Inbox exposes the event channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// timestampOrNow is kept for sinks that receive events constructed outside
// Record (tests, replays).
func timestampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
