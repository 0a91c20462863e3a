//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votesmart/pkg/testutil/containers"
)

func TestPostgresStoreAppendAndRecent(t *testing.T) {
	ctx := context.Background()

	pg := containers.NewPostgresContainer(t)
	require.NoError(t, EnsureSchema(ctx, pg.DB))
	t.Cleanup(func() {
		_ = pg.DB.Close()
		_ = pg.Container.Terminate(context.Background())
	})

	store := NewPostgresStore(pg.DB)

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, Event{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Actor:     "registrar",
			Action:    ActionPartiesAdded,
			Subject:   "1 party",
			RequestID: "req-1",
		}))
	}

	// Duplicate IDs are ignored, not duplicated.
	require.NoError(t, store.Append(ctx, Event{ID: "a", Timestamp: base}))

	events, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
	assert.Equal(t, ActionPartiesAdded, events[0].Action)

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
