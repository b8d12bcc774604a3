package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/repository"
)

const (
	cacheKey = "stats:requests"
	cacheTTL = 5 * time.Minute
)

// Service serves per-status request counts for the admin dashboard.
type Service interface {
	RequestStats(ctx context.Context) (*domain.RequestStats, error)
	Invalidate(ctx context.Context)
}

type service struct {
	requestRepo repository.RequestRepository
	redis       *redis.Client
	log         *zap.Logger
}

func NewService(requestRepo repository.RequestRepository, redis *redis.Client, log *zap.Logger) Service {
	return &service{requestRepo: requestRepo, redis: redis, log: log}
}

func (s *service) RequestStats(ctx context.Context) (*domain.RequestStats, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var st domain.RequestStats
			if json.Unmarshal(cached, &st) == nil {
				return &st, nil
			}
		} else if err != redis.Nil {
			s.log.Warn("stats cache read failed", zap.Error(err))
		}
	}

	st, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(st); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
				s.log.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return st, nil
}

func (s *service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		s.log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
