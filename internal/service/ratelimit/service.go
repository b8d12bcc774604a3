package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes one hit against a fixed window.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Service interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type service struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewService limits each key to limit hits per window. A non-positive limit
// disables limiting.
func NewService(client *redis.Client, limit int, window time.Duration) Service {
	return &service{client: client, limit: limit, window: window}
}

func (s *service) Allow(ctx context.Context, key string) (Result, error) {
	if s.limit <= 0 {
		return Result{Allowed: true}, nil
	}
	if s.client == nil {
		return Result{}, fmt.Errorf("redis client is nil")
	}
	if key == "" || s.window <= 0 {
		return Result{}, fmt.Errorf("invalid rate window payload")
	}

	key = "ratelimit:" + key
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("increment rate key: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return Result{}, fmt.Errorf("set rate key ttl: %w", err)
		}
	}

	if count <= int64(s.limit) {
		return Result{Allowed: true, Remaining: s.limit - int(count)}, nil
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("read rate key ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return Result{Allowed: false, RetryAfter: ttl}, nil
}
