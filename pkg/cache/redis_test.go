package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), NewRedisCacheConfig{Address: mr.Addr(), Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t, "")

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "cp.locations", `["Monterrey"]`, 0))
	v, err := c.Get(ctx, "cp.locations")
	require.NoError(t, err)
	assert.Equal(t, `["Monterrey"]`, v)

	require.NoError(t, c.Delete(ctx, "cp.locations"))
	_, err = c.Get(ctx, "cp.locations")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, "")

	require.NoError(t, c.Set(ctx, "cp.session.uid-m", "sealed", time.Hour))
	_, err := c.Get(ctx, "cp.session.uid-m")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = c.Get(ctx, "cp.session.uid-m")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_PrefixUsesColonSeparator(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, "shared")

	require.NoError(t, c.Set(ctx, "cp.plans", "[]", 0))
	assert.True(t, mr.Exists("shared:cp.plans"))
	assert.False(t, mr.Exists("sharedcp.plans"))

	c2, err := NewRedisCache(ctx, NewRedisCacheConfig{Address: mr.Addr(), Prefix: "shared:"})
	require.NoError(t, err)
	defer c2.Close()
	v, err := c2.Get(ctx, "cp.plans")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestNewRedisCache_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), NewRedisCacheConfig{Address: addr})
	assert.Error(t, err)
}
