package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	deleted []string
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.deleted = append(f.deleted, keys...)
	for _, k := range keys {
		delete(f.values, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	c := newRedisWithClient(fake, "courtside:")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "court:c1")
	require.NoError(t, err)
	assert.False(t, ok, "missing keys are a cache miss, not an error")

	require.NoError(t, c.Set(ctx, "court:c1", []byte(`{"id":"c1"}`), 10*time.Minute))
	assert.Equal(t, 10*time.Minute, fake.ttls["courtside:court:c1"])

	val, ok, err := c.Get(ctx, "court:c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"c1"}`, string(val))

	require.NoError(t, c.Delete(ctx, "court:c1"))
	assert.Equal(t, []string{"courtside:court:c1"}, fake.deleted)
	_, ok, _ = c.Get(ctx, "court:c1")
	assert.False(t, ok)

	require.NoError(t, c.Ping(ctx))
}

func TestRedisCacheGetError(t *testing.T) {
	fake := newFakeRedis()
	fake.failGet = errors.New("connection refused")
	c := newRedisWithClient(fake, "")

	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNoopCache(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
