package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"connectaid/internal/domain"
)

type MediaService struct {
	mock.Mock
}

func (m *MediaService) UploadBase64(ctx context.Context, prefix, data string) (*domain.RequestImage, error) {
	args := m.Called(ctx, prefix, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RequestImage), args.Error(1)
}

func (m *MediaService) Delete(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}
