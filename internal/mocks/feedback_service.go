package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"connectaid/internal/domain"
	"connectaid/internal/service/feedback"
)

type FeedbackService struct {
	mock.Mock
}

func (m *FeedbackService) Create(ctx context.Context, actor *domain.User, input domain.CreateFeedbackInput, meta *domain.RequestMeta) (*domain.Feedback, error) {
	args := m.Called(ctx, actor, input, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Feedback), args.Error(1)
}

func (m *FeedbackService) ListByRequest(ctx context.Context, actor *domain.User, requestID uuid.UUID) ([]domain.Feedback, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Feedback), args.Error(1)
}

func (m *FeedbackService) ListForUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (*feedback.UserFeedback, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feedback.UserFeedback), args.Error(1)
}

func (m *FeedbackService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) error {
	return m.Called(ctx, actor, id, meta).Error(0)
}
