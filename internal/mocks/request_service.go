package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"connectaid/internal/domain"
	"connectaid/internal/service/request"
)

type RequestService struct {
	mock.Mock
}

func (m *RequestService) result(args mock.Arguments) (*domain.ServiceRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *RequestService) Create(ctx context.Context, actor *domain.User, input domain.CreateRequestInput, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	return m.result(m.Called(ctx, actor, input, meta))
}

func (m *RequestService) Get(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.ServiceRequest, error) {
	return m.result(m.Called(ctx, actor, id))
}

func (m *RequestService) List(ctx context.Context, actor *domain.User, query request.ListQuery) (domain.PaginatedResponse[domain.ServiceRequest], error) {
	args := m.Called(ctx, actor, query)
	return args.Get(0).(domain.PaginatedResponse[domain.ServiceRequest]), args.Error(1)
}

func (m *RequestService) Accept(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	return m.result(m.Called(ctx, actor, id, meta))
}

func (m *RequestService) AdvanceStatus(ctx context.Context, actor *domain.User, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	return m.result(m.Called(ctx, actor, id, target, meta))
}

func (m *RequestService) Edit(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateRequestInput, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	return m.result(m.Called(ctx, actor, id, input, meta))
}

func (m *RequestService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) error {
	args := m.Called(ctx, actor, id, meta)
	return args.Error(0)
}
