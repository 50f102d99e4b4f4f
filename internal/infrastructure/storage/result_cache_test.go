package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestMemoryResultCache_MissHitExpire(t *testing.T) {
	cache := NewMemoryResultCache(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	data, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, data)

	payload := []byte(`{"boxes":[]}`)
	require.NoError(t, cache.Set(ctx, "abc", payload))
	payload[0] = 'X'

	data, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, `{"boxes":[]}`, string(data), "cache keeps its own copy")

	now = now.Add(time.Minute)
	data, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestMemoryResultCache_SweepsExpiredOnSet(t *testing.T) {
	cache := NewMemoryResultCache(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1")))
	require.NoError(t, cache.Set(ctx, "b", []byte("2")))
	require.Len(t, cache.items, 2)

	// "a" и "b" больше никто не читает
	now = now.Add(time.Minute)
	require.NoError(t, cache.Set(ctx, "c", []byte("3")))
	require.Len(t, cache.items, 1)

	data, err := cache.Get(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, "3", string(data))
}

func TestMemoryResultCache_NoTTL(t *testing.T) {
	cache := NewMemoryResultCache(0)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", []byte("v")))

	cache.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }
	data, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))
}

func TestRedisResultCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisResultCache(RedisOptions{Addr: mr.Addr(), TTL: time.Hour})
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	require.NoError(t, cache.Ping(ctx))

	data, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, data)

	require.NoError(t, cache.Set(ctx, "abc", []byte(`{"boxes":[[1,2,3,4]]}`)))
	require.True(t, mr.Exists("detections:abc"))
	require.Equal(t, time.Hour, mr.TTL("detections:abc"))

	data, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	require.JSONEq(t, `{"boxes":[[1,2,3,4]]}`, string(data))

	mr.FastForward(2 * time.Hour)
	data, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestRedisResultCache_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisResultCache(RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	mr.Close()

	_, err := cache.Get(context.Background(), "abc")
	require.Error(t, err)
}
