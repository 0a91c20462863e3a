package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, AccountID(ctx))

	ctx = WithAccountID(ctx, "registrar")
	assert.Equal(t, "registrar", AccountID(ctx))
}

func TestClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "203.0.113.9", "agent/1.0")
	assert.Equal(t, "203.0.113.9", ClientIP(ctx))
	assert.Equal(t, "agent/1.0", UserAgent(ctx))
}

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before.Add(-time.Second)))

	stamped := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	ctx := WithTime(context.Background(), stamped)
	assert.Equal(t, stamped, Now(ctx))
}
