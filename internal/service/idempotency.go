package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// IdempotencyStore claims a checkout attempt key. Claim returns false when
// the key was already used, which is the server-side duplicate-submission
// guard behind the UI's submit debounce.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: 24 * time.Hour}
}

// Claim is a single SETNX round trip, so the check and the claim cannot be
// split by a concurrent duplicate submit.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	return s.rdb.SetNX(ctx, redisKey, "exists", s.ttl).Result()
}
