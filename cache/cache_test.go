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

func newTestCache(t *testing.T) (ICache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, time.Minute), srv
}

func Test_Redis_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestCache(t)

	require.NoError(t, c.Set(ctx, CartCountKey("user-1"), 3))
	assert.Equal(t, "3", mustGet(t, srv, "cart:count:user-1"))

	var count int
	require.NoError(t, c.Get(ctx, CartCountKey("user-1"), &count))
	assert.Equal(t, 3, count)

	require.NoError(t, c.Delete(ctx, CartCountKey("user-1"), OrderListKey("user-1")))
	assert.ErrorIs(t, c.Get(ctx, CartCountKey("user-1"), &count), ErrMiss)
}

func Test_Redis_TTL(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestCache(t)

	require.NoError(t, c.Set(ctx, OrderListKey("user-1"), []string{"a"}))
	srv.FastForward(2 * time.Minute)

	var out []string
	assert.ErrorIs(t, c.Get(ctx, OrderListKey("user-1"), &out), ErrMiss)
}

func Test_New_EmptyURLIsNoop(t *testing.T) {
	c, err := New(context.Background(), "", time.Minute)
	require.NoError(t, err)

	var out int
	assert.NoError(t, c.Set(context.Background(), "k", 1))
	assert.ErrorIs(t, c.Get(context.Background(), "k", &out), ErrMiss)
	assert.NoError(t, c.Delete(context.Background(), "k"))
}

func Test_New_URL(t *testing.T) {
	srv := miniredis.RunT(t)
	c, err := New(context.Background(), "redis://"+srv.Addr(), time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "k", "v"))
	assert.True(t, srv.Exists("k"))

	_, err = New(context.Background(), "://bad", time.Minute)
	assert.Error(t, err)
}

func mustGet(t *testing.T, srv *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := srv.Get(key)
	require.NoError(t, err)
	return v
}
