package audit

import (
	"context"
	"log/slog"
)

// Worker drains the publisher inbox and persists events. Persistence
// failures are logged and the worker keeps running; the audit trail is
// best-effort relative to the mutations it describes, which have already
// committed.
type Worker struct {
	store  Store
	sink   Sink // optional
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	event.Timestamp = timestampOrNow(event.Timestamp)
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("failed to persist audit event",
			"action", event.Action,
			"error", err,
		)
	}
	if w.sink == nil {
		return
	}
	if err := w.sink.Publish(ctx, event); err != nil {
		w.logger.Error("failed to publish audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
