package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"amizades/internal/middleware"
	"amizades/internal/models"
	"amizades/internal/observability"

	"github.com/redis/go-redis/v9"
)

const ProfileKeyPrefix = "profile:%s"

const ProfileTTL = 5 * time.Minute

func ProfileKey(id string) string {
	return fmt.Sprintf(ProfileKeyPrefix, id)
}

// ProfileCache is a cache-aside store for directory profiles.
// A nil client turns every call into a miss so callers need no special casing.
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProfileCache returns a cache backed by rdb; ttl <= 0 uses ProfileTTL.
func NewProfileCache(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = ProfileTTL
	}
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

// GetMany returns the cached profiles among ids and the ids that missed.
// Redis failures degrade to misses.
func (c *ProfileCache) GetMany(ctx context.Context, ids []string) (map[string]models.Profile, []string) {
	found := make(map[string]models.Profile, len(ids))
	if c == nil || c.rdb == nil || len(ids) == 0 {
		return found, ids
	}

	ctx, span := observability.TraceRedisOperation(ctx, "mget")
	defer span.End()

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProfileKey(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "profile cache read failed", slog.String("error", err.Error()))
		return found, ids
	}

	var missing []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p models.Profile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = p
	}
	observability.ProfileCacheLookups.WithLabelValues("hit").Add(float64(len(found)))
	observability.ProfileCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))
	return found, missing
}

// SetMany stores profiles with the cache TTL. Email is not serialized, so cached entries never carry it.
func (c *ProfileCache) SetMany(ctx context.Context, profiles []models.Profile) {
	if c == nil || c.rdb == nil || len(profiles) == 0 {
		return
	}

	ctx, span := observability.TraceRedisOperation(ctx, "set")
	defer span.End()

	pipe := c.rdb.Pipeline()
	for _, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, ProfileKey(p.ID), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "profile cache write failed", slog.String("error", err.Error()))
	}
}
