package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/mocks"
	"connectaid/internal/service/user"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	phone := "555-0100"

	t.Run("Success", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, zap.NewNop())

		repo.On("GetByID", ctx, id).Return(&domain.User{ID: id, FullName: "Old", Phone: &phone}, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.FullName == "New Name" && u.Phone == nil
		})).Return(nil).Once()

		name := "  New Name "
		empty := ""
		u, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileInput{FullName: &name, Phone: &empty})
		require.NoError(t, err)
		assert.Equal(t, "New Name", u.FullName)
		repo.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, zap.NewNop())
		repo.On("GetByID", ctx, id).Return(nil, nil).Once()

		_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileInput{})
		assert.Equal(t, user.ErrUserNotFound, err)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, zap.NewNop())
		short := "x"

		_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileInput{FullName: &short})
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates When Missing", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, zap.NewNop())

		repo.On("GetByEmail", ctx, "admin@example.com").Return(nil, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleAdmin && u.IsEmailVerified && u.IsActive
		})).Return(nil).Once()

		require.NoError(t, svc.EnsureAdmin(ctx, "Admin@Example.com", "supersecret", "Admin"))
		repo.AssertExpectations(t)
	})

	t.Run("Existing Is Left Alone", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, zap.NewNop())

		repo.On("GetByEmail", ctx, "admin@example.com").Return(&domain.User{Role: domain.RoleAdmin}, nil).Once()

		require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "supersecret", "Admin"))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Disabled", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := user.NewService(repo, zap.NewNop())
		assert.NoError(t, svc.EnsureAdmin(ctx, "", "", "Admin"))
	})
}
