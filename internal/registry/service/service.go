// Package service implements the registry operations: admin-gated bulk
// inserts, windowed list projections, the region-filtered district lookup,
// and the composite-key recommendation resolver.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"votesmart/internal/audit"
	"votesmart/internal/registry"
	"votesmart/internal/registry/metrics"
	dErrors "votesmart/pkg/domain-errors"
	"votesmart/pkg/platform/sentinel"
	"votesmart/pkg/requestcontext"
)

// IndexEntry maps one campaign+district pair to a candidate.
type IndexEntry struct {
	registry.Key
	CandidateID uint64 `json:"candidate_id"`
}

// Service owns the registry business rules. Reads are unrestricted; every
// mutation passes the access guard first, so a rejected call leaves all
// tables untouched.
type Service struct {
	store   registry.Store
	metrics *metrics.Metrics
	auditor audit.Recorder
	tracer  trace.Tracer
}

func New(store registry.Store, m *metrics.Metrics, auditor audit.Recorder) *Service {
	return &Service{
		store:   store,
		metrics: m,
		auditor: auditor,
		tracer:  otel.Tracer("votesmart/registry"),
	}
}

// assertMaster is the access guard: the caller account from the request
// context must equal the stored master identity. It runs first in every
// mutating operation and never in reads.
func (s *Service) assertMaster(ctx context.Context) (string, error) {
	caller := requestcontext.AccountID(ctx)
	if caller == "" {
		s.metrics.IncrementUnauthorized()
		return "", dErrors.New(dErrors.CodeUnauthorized, "no caller identity")
	}
	master, err := s.store.MasterAccountID(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementUnauthorized()
			return "", dErrors.New(dErrors.CodeUnauthorized, "no master account configured")
		}
		return "", fmt.Errorf("load master account: %w", err)
	}
	if caller != master {
		s.metrics.IncrementUnauthorized()
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller is not the master account")
	}
	return caller, nil
}

// SetMasterAccountID replaces the master identity. The current holder may
// hand it to any account, with no validation that the new identity is
// reachable or distinct. When no master is stored yet, the first
// authenticated caller claims it (bootstrap).
func (s *Service) SetMasterAccountID(ctx context.Context, account string) error {
	caller := requestcontext.AccountID(ctx)
	if caller == "" {
		s.metrics.IncrementUnauthorized()
		return dErrors.New(dErrors.CodeUnauthorized, "no caller identity")
	}
	master, err := s.store.MasterAccountID(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		// unclaimed registry, caller becomes the first master
	case err != nil:
		return fmt.Errorf("load master account: %w", err)
	case caller != master:
		s.metrics.IncrementUnauthorized()
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the master account")
	}

	if err := s.store.SetMasterAccountID(ctx, account); err != nil {
		return err
	}
	s.metrics.IncrementMutation("set_master_account_id")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionMasterAccountChanged,
		Subject: account,
	})
	return nil
}

// AddCampaign inserts or overwrites a single campaign.
func (s *Service) AddCampaign(ctx context.Context, id uint64, title string) error {
	caller, err := s.assertMaster(ctx)
	if err != nil {
		return err
	}
	if err := s.store.PutCampaign(ctx, id, title); err != nil {
		return err
	}
	s.metrics.IncrementMutation("add_campaign")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionCampaignAdded,
		Subject: fmt.Sprintf("campaign %d", id),
	})
	return nil
}

// Campaigns returns the windowed campaign list in insertion order.
func (s *Service) Campaigns(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[string], error) {
	start := time.Now()
	table, err := s.store.Campaigns(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLookup("campaigns", time.Since(start))
	return registry.Window(table, fromIndex, limit), nil
}

// AddParties inserts or overwrites parties. Each entry is an independent
// idempotent write; a partial batch never leaves tables inconsistent.
func (s *Service) AddParties(ctx context.Context, entries []registry.Entry[string]) error {
	caller, err := s.assertMaster(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.store.PutParty(ctx, entry.ID, entry.Value); err != nil {
			return err
		}
	}
	s.metrics.IncrementMutation("add_parties")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionPartiesAdded,
		Subject: fmt.Sprintf("%d parties", len(entries)),
	})
	return nil
}

func (s *Service) Parties(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[string], error) {
	start := time.Now()
	table, err := s.store.Parties(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLookup("parties", time.Since(start))
	return registry.Window(table, fromIndex, limit), nil
}

func (s *Service) AddRegions(ctx context.Context, entries []registry.Entry[registry.Region]) error {
	caller, err := s.assertMaster(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.store.PutRegion(ctx, entry.ID, entry.Value); err != nil {
			return err
		}
	}
	s.metrics.IncrementMutation("add_regions")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionRegionsAdded,
		Subject: fmt.Sprintf("%d regions", len(entries)),
	})
	return nil
}

func (s *Service) Regions(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[registry.Region], error) {
	start := time.Now()
	table, err := s.store.Regions(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLookup("regions", time.Since(start))
	return registry.Window(table, fromIndex, limit), nil
}

func (s *Service) AddDistricts(ctx context.Context, entries []registry.Entry[registry.District]) error {
	caller, err := s.assertMaster(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.store.PutDistrict(ctx, entry.ID, entry.Value); err != nil {
			return err
		}
	}
	s.metrics.IncrementMutation("add_districts")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionDistrictsAdded,
		Subject: fmt.Sprintf("%d districts", len(entries)),
	})
	return nil
}

func (s *Service) Districts(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[registry.District], error) {
	start := time.Now()
	table, err := s.store.Districts(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLookup("districts", time.Since(start))
	return registry.Window(table, fromIndex, limit), nil
}

// DistrictsByRegion windows the unfiltered district table first and then
// filters the windowed subset by region. A page may therefore hold fewer
// entries than the window span; from_index and limit always address
// positions in the full table, never in the filtered result.
func (s *Service) DistrictsByRegion(ctx context.Context, regionID uint64, fromIndex, limit *uint64) ([]registry.Entry[registry.District], error) {
	start := time.Now()
	table, err := s.store.Districts(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLookup("districts", time.Since(start))

	windowed := registry.Window(table, fromIndex, limit)
	entries := make([]registry.Entry[registry.District], 0, len(windowed))
	for _, entry := range windowed {
		if entry.Value.RegionID == regionID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *Service) AddCandidates(ctx context.Context, entries []registry.Entry[registry.Candidate]) error {
	caller, err := s.assertMaster(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.store.PutCandidate(ctx, entry.ID, entry.Value); err != nil {
			return err
		}
	}
	s.metrics.IncrementMutation("add_candidates")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionCandidatesAdded,
		Subject: fmt.Sprintf("%d candidates", len(entries)),
	})
	return nil
}

func (s *Service) Candidates(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[registry.Candidate], error) {
	start := time.Now()
	table, err := s.store.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLookup("candidates", time.Since(start))
	return registry.Window(table, fromIndex, limit), nil
}

// AddRecommendations binds campaign+district pairs to candidates. The
// referenced candidates and parties are not checked to exist: dangling
// references are tolerated at read time instead of rejected at write time.
func (s *Service) AddRecommendations(ctx context.Context, entries []IndexEntry) error {
	caller, err := s.assertMaster(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.store.PutRecommendation(ctx, entry.Key, entry.CandidateID); err != nil {
			return err
		}
	}
	s.metrics.IncrementMutation("add_recommendations")
	s.auditor.Record(ctx, audit.Event{
		Actor:   caller,
		Action:  audit.ActionRecommendationsAdded,
		Subject: fmt.Sprintf("%d recommendations", len(entries)),
	})
	return nil
}

// Resolve joins the recommendation index against candidates and parties.
// It returns nil (not an error) for an unknown pair or a dangling
// candidate, and substitutes UnknownParty for a dangling party. Nothing is
// cached; every call recomputes from the store.
func (s *Service) Resolve(ctx context.Context, campaignID, districtID uint64) (*registry.Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Resolve", trace.WithAttributes(
		attribute.Int64("campaign_id", int64(campaignID)),
		attribute.Int64("district_id", int64(districtID)),
	))
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObserveLookup("recommendations", time.Since(start)) }()

	candidateID, err := s.store.RecommendationCandidate(ctx, registry.Key{
		CampaignID: campaignID,
		DistrictID: districtID,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementResolution(metrics.OutcomeMissingIndex)
			return nil, nil
		}
		return nil, err
	}

	candidate, err := s.store.Candidate(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementResolution(metrics.OutcomeMissingCandidate)
			return nil, nil
		}
		return nil, err
	}

	party, err := s.store.Party(ctx, candidate.PartyID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		s.metrics.IncrementResolution(metrics.OutcomeUnknownParty)
		party = registry.UnknownParty
	} else {
		s.metrics.IncrementResolution(metrics.OutcomeResolved)
	}

	return &registry.Recommendation{Title: candidate.Title, Party: party}, nil
}
