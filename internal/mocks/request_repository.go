package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"connectaid/internal/domain"
)

type RequestRepository struct {
	mock.Mock
}

func (m *RequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *RequestRepository) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.ServiceRequest, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.ServiceRequest), args.Get(1).(int64), args.Error(2)
}

func (m *RequestRepository) UpdateEditable(ctx context.Context, req *domain.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RequestRepository) Accept(ctx context.Context, id, volunteerID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, volunteerID, at)
	return args.Error(0)
}

func (m *RequestRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, completedAt *time.Time) error {
	args := m.Called(ctx, id, from, to, completedAt)
	return args.Error(0)
}

func (m *RequestRepository) SoftDelete(ctx context.Context, id uuid.UUID, requireOpen bool) error {
	args := m.Called(ctx, id, requireOpen)
	return args.Error(0)
}

func (m *RequestRepository) CountByStatus(ctx context.Context) (*domain.RequestStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RequestStats), args.Error(1)
}
