package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMutexClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestMutexExcludesSecondHolder(t *testing.T) {
	_, client := newMutexClient(t)
	ctx := context.Background()

	a := NewMutex(client, "jobs:lock", time.Minute)
	b := NewMutex(client, "jobs:lock", time.Minute)

	locked, err := a.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, locked)

	locked, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, a.Unlock(ctx))

	locked, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestMutexStaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newMutexClient(t)
	ctx := context.Background()

	stale := NewMutex(client, "jobs:lock", time.Minute)
	locked, err := stale.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, locked)

	// The stale holder's TTL runs out and a new holder takes over.
	mr.FastForward(2 * time.Minute)
	next := NewMutex(client, "jobs:lock", time.Minute)
	locked, err = next.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, locked)

	// The late release must not delete the new holder's lock.
	require.NoError(t, stale.Unlock(ctx))

	third := NewMutex(client, "jobs:lock", time.Minute)
	locked, err = third.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMutexUnlockWithoutLockIsNoop(t *testing.T) {
	_, client := newMutexClient(t)
	m := NewMutex(client, "jobs:lock", time.Minute)
	assert.NoError(t, m.Unlock(context.Background()))
}
