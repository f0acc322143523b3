package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, max, window), mr
}

func TestAllowWithinBudget(t *testing.T) {
	lim, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := lim.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestWindowExpires(t *testing.T) {
	lim, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	allowed, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	require.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)

	allowed, err = lim.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, allowed)
}

// Every counter must carry a TTL from the moment it exists. A counter
// without one never expires and would block the account forever.
func TestCounterAlwaysCarriesTTL(t *testing.T) {
	lim, mr := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := lim.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.Greater(t, mr.TTL(keyPrefix+"alice"), time.Duration(0), "attempt %d", i+1)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	lim, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)

	allowed, err := lim.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestReset(t *testing.T) {
	lim, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, lim.Reset(ctx, "alice"))

	allowed, err := lim.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNilClientFailsOpen(t *testing.T) {
	lim := New(nil, 1, time.Minute)

	for i := 0; i < 5; i++ {
		allowed, err := lim.Allow(context.Background(), "alice")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	require.NoError(t, lim.Reset(context.Background(), "alice"))
}
