package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votesmart/internal/audit"
	"votesmart/internal/registry"
	"votesmart/internal/registry/store"
	dErrors "votesmart/pkg/domain-errors"
	"votesmart/pkg/requestcontext"
)

// recordingAuditor captures emitted audit events for assertions.
type recordingAuditor struct {
	events []audit.Event
}

func (a *recordingAuditor) Record(_ context.Context, event audit.Event) {
	a.events = append(a.events, event)
}

func uptr(v uint64) *uint64 { return &v }

func newTestService(t *testing.T) (*Service, *store.Memory, *recordingAuditor) {
	t.Helper()
	mem := store.NewMemory()
	auditor := &recordingAuditor{}
	return New(mem, nil, auditor), mem, auditor
}

// asMaster returns a context whose caller is the stored master account.
func asMaster(t *testing.T, mem *store.Memory) context.Context {
	t.Helper()
	require.NoError(t, mem.SetMasterAccountID(context.Background(), "registrar"))
	return requestcontext.WithAccountID(context.Background(), "registrar")
}

func TestSetMasterAccountID(t *testing.T) {
	t.Run("first authenticated caller claims an empty registry", func(t *testing.T) {
		svc, mem, auditor := newTestService(t)
		ctx := requestcontext.WithAccountID(context.Background(), "founder")

		require.NoError(t, svc.SetMasterAccountID(ctx, "founder"))

		master, err := mem.MasterAccountID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "founder", master)
		require.Len(t, auditor.events, 1)
		assert.Equal(t, audit.ActionMasterAccountChanged, auditor.events[0].Action)
	})

	t.Run("master may hand control to any account, unvalidated", func(t *testing.T) {
		svc, mem, _ := newTestService(t)
		ctx := asMaster(t, mem)

		require.NoError(t, svc.SetMasterAccountID(ctx, "successor"))

		master, err := mem.MasterAccountID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "successor", master)

		// The old master is locked out immediately.
		err = svc.AddCampaign(ctx, 1, "2026 general")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("non-master cannot take over", func(t *testing.T) {
		svc, mem, _ := newTestService(t)
		asMaster(t, mem)
		ctx := requestcontext.WithAccountID(context.Background(), "intruder")

		err := svc.SetMasterAccountID(ctx, "intruder")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		err := svc.SetMasterAccountID(context.Background(), "anyone")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func TestAccessGuard(t *testing.T) {
	svc, mem, auditor := newTestService(t)
	asMaster(t, mem)
	intruder := requestcontext.WithAccountID(context.Background(), "intruder")

	mutations := map[string]func() error{
		"add_campaign": func() error { return svc.AddCampaign(intruder, 1, "x") },
		"add_parties": func() error {
			return svc.AddParties(intruder, []registry.Entry[string]{{ID: 1, Value: "x"}})
		},
		"add_regions": func() error {
			return svc.AddRegions(intruder, []registry.Entry[registry.Region]{{ID: 1, Value: registry.Region{Title: "x"}}})
		},
		"add_districts": func() error {
			return svc.AddDistricts(intruder, []registry.Entry[registry.District]{{ID: 1, Value: registry.District{Title: "x"}}})
		},
		"add_candidates": func() error {
			return svc.AddCandidates(intruder, []registry.Entry[registry.Candidate]{{ID: 1, Value: registry.Candidate{Title: "x"}}})
		},
		"add_recommendations": func() error {
			return svc.AddRecommendations(intruder, []IndexEntry{{Key: registry.Key{CampaignID: 1, DistrictID: 2}, CandidateID: 3}})
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			err := mutate()
			assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		})
	}

	// A rejected mutation leaves every table untouched and unaudited.
	campaigns, err := svc.Campaigns(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, campaigns)
	assert.Empty(t, auditor.events)
}

func TestAddAndListRoundTrip(t *testing.T) {
	svc, mem, auditor := newTestService(t)
	ctx := asMaster(t, mem)

	require.NoError(t, svc.AddCampaign(ctx, 100, "2026 general"))
	require.NoError(t, svc.AddParties(ctx, []registry.Entry[string]{
		{ID: 1, Value: "Green"},
		{ID: 2, Value: "Blue"},
	}))
	require.NoError(t, svc.AddCandidates(ctx, []registry.Entry[registry.Candidate]{
		{ID: 10, Value: registry.Candidate{Title: "Alice", PartyID: 1}},
	}))

	campaigns, err := svc.Campaigns(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "2026 general", campaigns[0].Value)

	parties, err := svc.Parties(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, parties, 2)

	candidates, err := svc.Candidates(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Alice", candidates[0].Value.Title)

	assert.Len(t, auditor.events, 3)
}

func TestAddOverwritesExistingID(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := asMaster(t, mem)

	require.NoError(t, svc.AddCampaign(ctx, 100, "2026 general"))
	require.NoError(t, svc.AddCampaign(ctx, 100, "2026 general (amended)"))

	campaigns, err := svc.Campaigns(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "2026 general (amended)", campaigns[0].Value)
}

func TestListWindowing(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := asMaster(t, mem)

	entries := make([]registry.Entry[string], 0, 5)
	for i := uint64(1); i <= 5; i++ {
		entries = append(entries, registry.Entry[string]{ID: i * 10, Value: "p"})
	}
	require.NoError(t, svc.AddParties(ctx, entries))

	windowed, err := svc.Parties(context.Background(), uptr(1), uptr(4))
	require.NoError(t, err)
	require.Len(t, windowed, 3)
	assert.Equal(t, uint64(20), windowed[0].ID)
	assert.Equal(t, uint64(40), windowed[2].ID)

	past, err := svc.Parties(context.Background(), uptr(50), nil)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestDistrictsByRegionWindowsBeforeFiltering(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := asMaster(t, mem)

	// Districts alternate between two regions in insertion order:
	// index 0..4 = d1(r1) d2(r2) d3(r1) d4(r2) d5(r1)
	require.NoError(t, svc.AddDistricts(ctx, []registry.Entry[registry.District]{
		{ID: 1, Value: registry.District{RegionID: 1, Title: "North"}},
		{ID: 2, Value: registry.District{RegionID: 2, Title: "South"}},
		{ID: 3, Value: registry.District{RegionID: 1, Title: "East"}},
		{ID: 4, Value: registry.District{RegionID: 2, Title: "West"}},
		{ID: 5, Value: registry.District{RegionID: 1, Title: "Central"}},
	}))

	// Window [0,3) of the full table is d1,d2,d3; filtering for region 1
	// keeps d1 and d3. A filter-then-window rendering would return three
	// region-1 districts instead.
	got, err := svc.DistrictsByRegion(context.Background(), 1, uptr(0), uptr(3))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)

	// Window [3,5) holds d4,d5; only d5 is in region 1.
	got, err = svc.DistrictsByRegion(context.Background(), 1, uptr(3), uptr(5))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(5), got[0].ID)

	// A window of region-2 rows only yields nothing for region 1.
	got, err = svc.DistrictsByRegion(context.Background(), 2, uptr(4), uptr(5))
	require.NoError(t, err)
	assert.Empty(t, got)

	// Unknown region is empty, not an error.
	got, err = svc.DistrictsByRegion(context.Background(), 99, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve(t *testing.T) {
	setup := func(t *testing.T) (*Service, context.Context) {
		svc, mem, _ := newTestService(t)
		ctx := asMaster(t, mem)
		require.NoError(t, svc.AddParties(ctx, []registry.Entry[string]{{ID: 1, Value: "Green"}}))
		require.NoError(t, svc.AddCandidates(ctx, []registry.Entry[registry.Candidate]{
			{ID: 10, Value: registry.Candidate{Title: "Alice", PartyID: 1}},
			{ID: 11, Value: registry.Candidate{Title: "Bob", PartyID: 99}},
		}))
		require.NoError(t, svc.AddRecommendations(ctx, []IndexEntry{
			{Key: registry.Key{CampaignID: 100, DistrictID: 200}, CandidateID: 10},
			{Key: registry.Key{CampaignID: 100, DistrictID: 201}, CandidateID: 11},
			{Key: registry.Key{CampaignID: 100, DistrictID: 202}, CandidateID: 777},
		}))
		return svc, ctx
	}

	t.Run("full resolution joins candidate and party", func(t *testing.T) {
		svc, _ := setup(t)
		rec, err := svc.Resolve(context.Background(), 100, 200)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "Alice", rec.Title)
		assert.Equal(t, "Green", rec.Party)
	})

	t.Run("dangling party resolves to Unknown", func(t *testing.T) {
		svc, _ := setup(t)
		rec, err := svc.Resolve(context.Background(), 100, 201)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "Bob", rec.Title)
		assert.Equal(t, registry.UnknownParty, rec.Party)
	})

	t.Run("dangling candidate yields nothing", func(t *testing.T) {
		svc, _ := setup(t)
		rec, err := svc.Resolve(context.Background(), 100, 202)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("unmapped pair yields nothing", func(t *testing.T) {
		svc, _ := setup(t)
		rec, err := svc.Resolve(context.Background(), 999, 999)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("re-binding a pair changes the resolution", func(t *testing.T) {
		svc, ctx := setup(t)
		require.NoError(t, svc.AddRecommendations(ctx, []IndexEntry{
			{Key: registry.Key{CampaignID: 100, DistrictID: 200}, CandidateID: 11},
		}))
		rec, err := svc.Resolve(context.Background(), 100, 200)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "Bob", rec.Title)
	})
}

func TestResolveAfterCandidateOverwrite(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := asMaster(t, mem)

	require.NoError(t, svc.AddCandidates(ctx, []registry.Entry[registry.Candidate]{
		{ID: 10, Value: registry.Candidate{Title: "Alice", PartyID: 5}},
	}))
	require.NoError(t, svc.AddRecommendations(ctx, []IndexEntry{
		{Key: registry.Key{CampaignID: 1, DistrictID: 2}, CandidateID: 10},
	}))

	// Candidate 10 is replaced wholesale; the index entry still points at it.
	require.NoError(t, svc.AddCandidates(ctx, []registry.Entry[registry.Candidate]{
		{ID: 10, Value: registry.Candidate{Title: "Alicia", PartyID: 5}},
	}))

	rec, err := svc.Resolve(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Alicia", rec.Title)
	assert.Equal(t, registry.UnknownParty, rec.Party)
}
