package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "factura:seen_event:"

// RedisStore backs the seen-event set with redis so idempotency survives
// process restarts and is shared across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) MarkSeen(ctx context.Context, id string) (bool, error) {
	set, err := s.client.SetNX(ctx, redisKeyPrefix+id, 1, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}
