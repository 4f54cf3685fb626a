package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"wishlist/internal/ratelimit/models"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore is a fixed-window limiter shared by every replica: one counter
// per key and window, incremented with INCR and expired with the window.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	windowStart := now.Truncate(window)
	redisKey := redisKeyPrefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit incr: %w", err)
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &models.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	windowKeys, err := s.client.Keys(ctx, redisKeyPrefix+key+":*").Result()
	if err != nil {
		return fmt.Errorf("redis rate limit keys: %w", err)
	}
	if len(windowKeys) == 0 {
		return nil
	}
	return s.client.Del(ctx, windowKeys...).Err()
}
