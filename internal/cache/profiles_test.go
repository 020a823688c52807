package cache

import (
	"context"
	"testing"
	"time"

	"amizades/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ProfileCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProfileCache(rdb, ttl), mr
}

func TestProfileCache_GetManySetMany(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	found, missing := c.GetMany(ctx, []string{"a", "b"})
	assert.Empty(t, found)
	assert.Equal(t, []string{"a", "b"}, missing)

	c.SetMany(ctx, []models.Profile{{ID: "a", Username: "alice", Email: "alice@example.com"}})

	found, missing = c.GetMany(ctx, []string{"a", "b"})
	require.Contains(t, found, "a")
	assert.Equal(t, "alice", found["a"].Username)
	assert.Empty(t, found["a"].Email)
	assert.Equal(t, []string{"b"}, missing)

	assert.Equal(t, time.Minute, mr.TTL(ProfileKey("a")))

	mr.FastForward(2 * time.Minute)
	_, missing = c.GetMany(ctx, []string{"a"})
	assert.Equal(t, []string{"a"}, missing)
}

func TestProfileCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(ProfileKey("a"), "{not json"))

	found, missing := c.GetMany(context.Background(), []string{"a"})
	assert.Empty(t, found)
	assert.Equal(t, []string{"a"}, missing)
}

func TestProfileCache_RedisDownDegradesToMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	found, missing := c.GetMany(context.Background(), []string{"a"})
	assert.Empty(t, found)
	assert.Equal(t, []string{"a"}, missing)
}

func TestProfileCache_NilClient(t *testing.T) {
	c := NewProfileCache(nil, 0)
	found, missing := c.GetMany(context.Background(), []string{"a"})
	assert.Empty(t, found)
	assert.Equal(t, []string{"a"}, missing)
	c.SetMany(context.Background(), []models.Profile{{ID: "a"}})
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer func() { _ = rdb.Close() }()

	rdb2, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer func() { _ = rdb2.Close() }()

	_, err = NewClient(context.Background(), "redis://%zz")
	assert.Error(t, err)
}
