package cache

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/infrastructure/database/redis"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/internal/testutil"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingStore) Delete(context.Context, string) error { return f.err }

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(time.Minute, time.Minute)

	_, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	v, found, _ := m.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, 1, m.ItemCount())

	require.NoError(t, m.Delete(ctx, "k"))
	_, found, _ = m.Get(ctx, "k")
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "short", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, found, _ = m.Get(ctx, "short")
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	m.Flush()
	assert.Equal(t, 0, m.ItemCount())
}

func TestLayeredCache_PromotesSharedHits(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	shared := NewMemoryCache(time.Hour, time.Minute)
	c := NewLayeredCache(local, shared, 30*time.Second, nil)

	require.NoError(t, shared.Set(ctx, "k", []byte("v"), 0))

	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	promoted, found, _ := local.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, []byte("v"), promoted)
}

func TestLayeredCache_SetAndDeleteBothLayers(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	shared := NewMemoryCache(time.Hour, time.Minute)
	c := NewLayeredCache(local, shared, 30*time.Second, nil)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, inLocal, _ := local.Get(ctx, "k")
	_, inShared, _ := shared.Get(ctx, "k")
	assert.True(t, inLocal)
	assert.True(t, inShared)

	require.NoError(t, c.Delete(ctx, "k"))
	_, inLocal, _ = local.Get(ctx, "k")
	_, inShared, _ = shared.Get(ctx, "k")
	assert.False(t, inLocal)
	assert.False(t, inShared)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLayeredCache_LocalOnly(t *testing.T) {
	ctx := context.Background()
	c := NewLayeredCache(NewMemoryCache(time.Minute, time.Minute), nil, time.Minute, nil)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestLayeredCache_SharedFailureDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	log := testutil.NewMockLogger()
	boom := stderrors.New("connection refused")
	c := NewLayeredCache(NewMemoryCache(time.Minute, time.Minute), failingStore{err: boom}, time.Minute, log)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.True(t, log.HasMessage("warn", "shared cache read failed"))

	c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.True(t, log.HasMessage("warn", "shared cache write failed"))

	v, ok := c.Get(ctx, "k")
	assert.True(t, ok, "local layer still serves the value")
	assert.Equal(t, []byte("v"), v)

	assert.ErrorIs(t, c.Delete(ctx, "k"), boom)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(&redis.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(redis.NewRedisCache(client, nil, redis.WithPrefix("t:")))

	_, found, err := store.Get(ctx, "claim:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "claim:1", []byte(`{"external_id":"1"}`), time.Minute))
	raw, err := mr.Get("t:claim:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"external_id":"1"}`, raw)

	v, found, err := store.Get(ctx, "claim:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"external_id":"1"}`, string(v))

	require.NoError(t, store.Delete(ctx, "claim:1"))
	assert.False(t, mr.Exists("t:claim:1"))
}
