package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client), server
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", testValue{Name: "widget", Count: 3}, time.Minute))

	var got testValue
	hit, err := c.Get(ctx, "key", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, testValue{Name: "widget", Count: 3}, got)
}

func TestRedisCache_Get_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	var got testValue
	hit, err := c.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Get_CorruptValueIsMiss(t *testing.T) {
	c, server := newTestCache(t)

	require.NoError(t, server.Set("key", "not-json"))

	var got testValue
	hit, err := c.Get(context.Background(), "key", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_TTLExpires(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", testValue{Name: "widget"}, time.Minute))

	server.FastForward(2 * time.Minute)

	var got testValue
	hit, err := c.Get(ctx, "key", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Remove(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", testValue{}, time.Minute))
	require.NoError(t, c.Remove(ctx, "key"))

	var got testValue
	hit, _ := c.Get(ctx, "key", &got)
	assert.False(t, hit)
}

func TestRedisCache_RemoveByPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "products:1", testValue{}, time.Minute))
	require.NoError(t, c.Set(ctx, "products:2", testValue{}, time.Minute))
	require.NoError(t, c.Set(ctx, "orders:1", testValue{}, time.Minute))

	require.NoError(t, c.RemoveByPrefix(ctx, "products:"))

	var got testValue
	hit, _ := c.Get(ctx, "products:1", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "products:2", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "orders:1", &got)
	assert.True(t, hit, "other prefixes must be untouched")
}

func TestRedisCache_ProviderDownIsNonFatal(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	server.Close()

	require.NoError(t, c.Set(ctx, "key", testValue{}, time.Minute))

	var got testValue
	hit, err := c.Get(ctx, "key", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Remove(ctx, "key"))
	require.NoError(t, c.RemoveByPrefix(ctx, "products:"))
}

func TestCacheKeys(t *testing.T) {
	id := uuid.Must(uuid.FromString("11111111-2222-3333-4444-555555555555"))

	assert.Equal(t, "products:"+id.String(), ProductKey(id))
	assert.Equal(t, "orders:"+id.String(), OrderKey(id))
	assert.Equal(t, "idempotency:abc", IdempotencyKey("abc"))

	active := true
	assert.Equal(t, "products:all:2:20:true", ProductsAllKey(2, 20, &active))
	assert.Equal(t, "products:all:1:10:any", ProductsAllKey(1, 10, nil))
}
