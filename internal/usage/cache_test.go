package usage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, 10*time.Minute), mr
}

func TestCache_PutAndGet(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	userID := uuid.New()

	reset := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	in := Status{HasReachedLimit: true, Remaining: 0, ResetTime: &reset}
	require.NoError(t, c.Put(ctx, userID, in))

	out, ok, err := c.Get(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, out.HasReachedLimit)
	assert.Equal(t, 0, out.Remaining)
	if assert.NotNil(t, out.ResetTime) {
		assert.True(t, out.ResetTime.Equal(reset))
	}
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := setupCache(t)

	_, ok, err := c.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_RecordEventDecrements(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, c.Put(ctx, userID, Status{Remaining: 3}))

	now := time.Now()
	require.NoError(t, c.RecordEvent(ctx, userID, 10, 7*24*time.Hour, now))

	st, ok, err := c.Get(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, st.Remaining)
	assert.False(t, st.HasReachedLimit)
}

func TestCache_RecordEventReachesLimit(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, c.Put(ctx, userID, Status{Remaining: 1}))

	now := time.Now()
	require.NoError(t, c.RecordEvent(ctx, userID, 10, 7*24*time.Hour, now))

	st, _, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, st.HasReachedLimit)
	assert.Equal(t, 0, st.Remaining)
	assert.NotNil(t, st.ResetTime)
}

func TestCache_RecordEventWithoutPriorEntry(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, c.RecordEvent(ctx, userID, 10, 7*24*time.Hour, time.Now()))

	st, ok, err := c.Get(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, st.Remaining)
}

func TestCache_EntryExpires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, c.Put(ctx, userID, Status{Remaining: 5}))
	mr.FastForward(11 * time.Minute)

	_, ok, err := c.Get(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}
