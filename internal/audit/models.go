// Package audit records every admin mutation of the registry: who changed
// what, under which request. Events are emitted from the service layer,
// buffered on a channel, and persisted by a background worker, optionally
// fanning out to Kafka.
package audit

import (
	"context"
	"time"
)

// Action names a registry mutation.
type Action string

const (
	ActionMasterAccountChanged Action = "master_account_changed"
	ActionCampaignAdded        Action = "campaign_added"
	ActionPartiesAdded         Action = "parties_added"
	ActionRegionsAdded         Action = "regions_added"
	ActionDistrictsAdded       Action = "districts_added"
	ActionCandidatesAdded      Action = "candidates_added"
	ActionRecommendationsAdded Action = "recommendations_added"
)

// Event is emitted from domain logic to capture a mutation. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	Actor     string
	Action    Action
	Subject   string
	RequestID string
}

// Store persists audit events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives events for out-of-process delivery (e.g. Kafka). Sinks are
// best-effort; delivery failure never blocks or fails the mutation.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder is the emission side used by services.
type Recorder interface {
	Record(ctx context.Context, event Event)
}
