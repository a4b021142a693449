package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ozclean/submission-gateway/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Redis-backed Store so limits and blocks are shared across instances.
// Records are stored as JSON with a TTL matching the window or block
// duration, so expiry is handled by Redis itself.
type RedisStore struct {
	redis *storage.RedisClient
}

func NewRedisStore(redis *storage.RedisClient) *RedisStore {
	return &RedisStore{redis: redis}
}

func (r *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := r.redis.Get(ctx, key)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, record *Record, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = time.Hour
	}

	return r.redis.Set(ctx, key, data, ttl)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.redis.Del(ctx, key)
}
