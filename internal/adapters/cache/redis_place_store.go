package cache

import (
	"biodiversity-map-service/internal/platform/obs"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPlacePrefix = "place:"

// RedisPlaceStore shares resolved place names between service instances.
// A zero TTL keeps entries until Redis evicts them.
type RedisPlaceStore struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedisPlaceStore(rc *redis.Client, ttl time.Duration) *RedisPlaceStore {
	return &RedisPlaceStore{rc: rc, ttl: ttl}
}

// Fetch cached place names for the given keys.
func (s *RedisPlaceStore) GetMany(ctx context.Context, keys []string) (_ map[string]string, err error) {
	defer obs.Time(ctx, "place.redis.GetMany")(&err)

	if s.rc == nil {
		return nil, errors.New("place store: redis client is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	rkeys := make([]string, len(uniq))
	for i, k := range uniq {
		rkeys[i] = redisPlacePrefix + k
	}

	vals, err := s.rc.MGet(ctx, rkeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get place cache: redis mget: %w", err)
	}

	out := make(map[string]string, len(uniq))
	for i, v := range vals {
		if name, ok := v.(string); ok {
			out[uniq[i]] = name
		}
	}
	return out, nil
}

// Store key -> place name mappings. Existing keys keep their first value.
func (s *RedisPlaceStore) PutMany(ctx context.Context, places map[string]string) error {
	if s.rc == nil {
		return errors.New("place store: redis client is nil")
	}

	if len(places) == 0 {
		return nil
	}

	pipe := s.rc.Pipeline()
	for key, name := range places {
		if key == "" {
			return fmt.Errorf("insert place cache: empty coordinate key")
		}
		pipe.SetNX(ctx, redisPlacePrefix+key, name, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert place cache: redis pipeline: %w", err)
	}

	return nil
}
