//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votesmart/internal/registry"
	"votesmart/pkg/platform/sentinel"
	"votesmart/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) (*Postgres, context.Context) {
	t.Helper()
	ctx := context.Background()

	pg := containers.NewPostgresContainer(t)
	require.NoError(t, EnsureSchema(ctx, pg.DB))
	t.Cleanup(func() {
		_ = pg.DB.Close()
		_ = pg.Container.Terminate(context.Background())
	})

	return NewPostgres(pg.DB), ctx
}

func TestPostgresMasterAccount(t *testing.T) {
	s, ctx := newPostgresStore(t)

	_, err := s.MasterAccountID(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.SetMasterAccountID(ctx, "registrar"))
	master, err := s.MasterAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "registrar", master)

	// The master row is a singleton: setting again replaces, never duplicates.
	require.NoError(t, s.SetMasterAccountID(ctx, "successor"))
	master, err = s.MasterAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "successor", master)

	require.NoError(t, s.EnsureMasterAccountID(ctx, "ignored"))
	master, err = s.MasterAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "successor", master)
}

func TestPostgresInsertionOrderSurvivesOverwrite(t *testing.T) {
	s, ctx := newPostgresStore(t)

	require.NoError(t, s.PutParty(ctx, 3, "Green"))
	require.NoError(t, s.PutParty(ctx, 1, "Blue"))
	require.NoError(t, s.PutParty(ctx, 2, "Red"))
	require.NoError(t, s.PutParty(ctx, 3, "Greens"))

	table, err := s.Parties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1, 2}, table.IDs)
	assert.Equal(t, []string{"Greens", "Blue", "Red"}, table.Values)
}

func TestPostgresEntityRoundTrips(t *testing.T) {
	s, ctx := newPostgresStore(t)

	require.NoError(t, s.PutCampaign(ctx, 100, "2026 general"))
	require.NoError(t, s.PutRegion(ctx, 1, registry.Region{Title: "Westland"}))
	require.NoError(t, s.PutDistrict(ctx, 200, registry.District{RegionID: 1, Title: "North"}))
	require.NoError(t, s.PutCandidate(ctx, 10, registry.Candidate{Title: "Alice", PartyID: 7}))

	campaigns, err := s.Campaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026 general"}, campaigns.Values)

	regions, err := s.Regions(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), regions.Len())
	assert.Equal(t, "Westland", regions.Values[0].Title)

	districts, err := s.Districts(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), districts.Len())
	assert.Equal(t, uint64(1), districts.Values[0].RegionID)

	candidate, err := s.Candidate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, registry.Candidate{Title: "Alice", PartyID: 7}, candidate)

	_, err = s.Candidate(ctx, 11)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresRecommendationIndex(t *testing.T) {
	s, ctx := newPostgresStore(t)
	key := registry.Key{CampaignID: 100, DistrictID: 200}

	_, err := s.RecommendationCandidate(ctx, key)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.PutRecommendation(ctx, key, 42))
	candidateID, err := s.RecommendationCandidate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), candidateID)

	require.NoError(t, s.PutRecommendation(ctx, key, 43))
	candidateID, err = s.RecommendationCandidate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(43), candidateID)
}

func TestPostgresLargeIDs(t *testing.T) {
	s, ctx := newPostgresStore(t)

	// IDs above the int64 range must survive the BIGINT round trip.
	huge := uint64(1) << 63
	require.NoError(t, s.PutParty(ctx, huge, "Edge"))

	table, err := s.Parties(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), table.Len())
	assert.Equal(t, huge, table.IDs[0])

	title, err := s.Party(ctx, huge)
	require.NoError(t, err)
	assert.Equal(t, "Edge", title)
}
