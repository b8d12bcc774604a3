package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"connectaid/internal/domain"
)

type FeedbackRepository struct {
	mock.Mock
}

func (m *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *FeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Feedback), args.Error(1)
}

func (m *FeedbackRepository) Exists(ctx context.Context, requestID, fromUser uuid.UUID) (bool, error) {
	args := m.Called(ctx, requestID, fromUser)
	return args.Bool(0), args.Error(1)
}

func (m *FeedbackRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Feedback, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Feedback), args.Error(1)
}

func (m *FeedbackRepository) ListForUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Feedback, int64, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Feedback), args.Get(1).(int64), args.Error(2)
}

func (m *FeedbackRepository) RatingForUser(ctx context.Context, userID uuid.UUID) (*domain.UserRating, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserRating), args.Error(1)
}

func (m *FeedbackRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
