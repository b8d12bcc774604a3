package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"connectaid/internal/domain"
)

type StatsService struct {
	mock.Mock
}

func (m *StatsService) RequestStats(ctx context.Context) (*domain.RequestStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RequestStats), args.Error(1)
}

func (m *StatsService) Invalidate(ctx context.Context) {
	m.Called(ctx)
}
