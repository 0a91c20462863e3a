package registry

import "context"

// Store is the durable registry state: five insert-or-overwrite entity
// tables that preserve insertion order for iteration, the composite-keyed
// recommendation index, and the master account identity.
//
// Point lookups return sentinel.ErrNotFound for absent keys. No operation
// deletes; tables only grow or overwrite, and each Put is an independent
// idempotent write so bulk operations stay consistent under partial
// application.
type Store interface {
	// Master account identity.
	MasterAccountID(ctx context.Context) (string, error)
	SetMasterAccountID(ctx context.Context, account string) error
	// EnsureMasterAccountID seeds the master identity at bootstrap and is a
	// no-op when one is already stored.
	EnsureMasterAccountID(ctx context.Context, account string) error

	PutCampaign(ctx context.Context, id uint64, title string) error
	Campaigns(ctx context.Context) (Table[string], error)

	PutParty(ctx context.Context, id uint64, title string) error
	Parties(ctx context.Context) (Table[string], error)
	Party(ctx context.Context, id uint64) (string, error)

	PutRegion(ctx context.Context, id uint64, region Region) error
	Regions(ctx context.Context) (Table[Region], error)

	PutDistrict(ctx context.Context, id uint64, district District) error
	Districts(ctx context.Context) (Table[District], error)

	PutCandidate(ctx context.Context, id uint64, candidate Candidate) error
	Candidates(ctx context.Context) (Table[Candidate], error)
	Candidate(ctx context.Context, id uint64) (Candidate, error)

	PutRecommendation(ctx context.Context, key Key, candidateID uint64) error
	RecommendationCandidate(ctx context.Context, key Key) (uint64, error)

	// Ping reports store health for the health endpoint.
	Ping(ctx context.Context) error
}
