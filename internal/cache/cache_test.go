// internal/cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "plc:research:proj-1", ResearchKey("proj-1"))
	assert.Equal(t, "plc:intelligence:proj-1", IntelligenceKey("proj-1"))
}

// ==========================
// Memory Cache Tests
// ==========================

func TestMemoryCache_PutGet(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", []byte(`{"a":1}`)))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), val)
}

func TestMemoryCache_MissReturnsErrMiss(t *testing.T) {
	c := NewMemory(time.Minute)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_EntriesExpire(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(ctx, "k", []byte("v")))

	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", []byte("v")))
	require.NoError(t, c.Invalidate(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

// ==========================
// Redis Cache Tests
// ==========================

func newMiniredisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWithClient(client, ttl), mr
}

func TestRedisCache_PutGet(t *testing.T) {
	c, _ := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Put(ctx, ResearchKey("proj-1"), []byte(`{"population":45000}`)))

	val, err := c.Get(ctx, ResearchKey("proj-1"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"population":45000}`), val)
}

func TestRedisCache_MissReturnsErrMiss(t *testing.T) {
	c, _ := newMiniredisCache(t, time.Minute)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_EntriesCarryTTL(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", []byte("v")))
	assert.Greater(t, mr.TTL("k"), time.Duration(0))

	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, _ := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", []byte("v")))
	require.NoError(t, c.Invalidate(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_BackendErrorIsNotAMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisWithClient(client, time.Minute)

	mock.ExpectGet("k").SetErr(redis.ErrClosed)

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_PingFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisWithClient(client, time.Minute)

	mock.ExpectPing().SetErr(redis.ErrClosed)

	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
