package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"connectaid/internal/config"
	"connectaid/internal/domain"
	"connectaid/internal/mocks"
	"connectaid/internal/repository"
	"connectaid/internal/service/auth"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

type fixture struct {
	users    *mocks.UserRepository
	sessions *mocks.SessionRepository
	email    *mocks.EmailService
	svc      auth.Service
}

func newFixture() *fixture {
	f := &fixture{
		users:    new(mocks.UserRepository),
		sessions: new(mocks.SessionRepository),
		email:    new(mocks.EmailService),
	}
	f.email.On("SendEmailVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.email.On("SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.email.On("SendRegistrationEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.svc = auth.NewService(f.users, f.sessions, f.email, testConfig(), zap.NewNop())
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Citizen", func(t *testing.T) {
		f := newFixture()
		f.users.On("ExistsByEmail", ctx, "citizen@example.com").Return(false, nil).Once()
		f.users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "citizen@example.com" && u.Role == domain.RoleCitizen && u.IsApproved && !u.IsEmailVerified
		})).Return(nil).Once()
		f.users.On("SetEmailVerificationToken", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		user, err := f.svc.Register(ctx, domain.RegisterInput{
			Email:    "  Citizen@Example.com ",
			Password: "password123",
			FullName: "Carla Citizen",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleCitizen, user.Role)
		f.users.AssertExpectations(t)
	})

	t.Run("Volunteer Starts Unapproved And Notifies Admins", func(t *testing.T) {
		f := newFixture()
		admin := domain.User{ID: uuid.New(), Email: "admin@example.com", FullName: "Ada", Role: domain.RoleAdmin}
		notified := make(chan struct{}, 1)

		f.users.On("ExistsByEmail", ctx, "vol@example.com").Return(false, nil).Once()
		f.users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleVolunteer && !u.IsApproved
		})).Return(nil).Once()
		f.users.On("SetEmailVerificationToken", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.users.On("ListAdmins", mock.Anything).Return([]domain.User{admin}, nil).Once()
		f.email.On("SendVolunteerApplicationEmail", mock.Anything, "admin@example.com", "Ada", "Victor Volunteer", "vol@example.com").
			Return(nil).Once().
			Run(func(mock.Arguments) { notified <- struct{}{} })

		_, err := f.svc.Register(ctx, domain.RegisterInput{
			Email:    "vol@example.com",
			Password: "password123",
			FullName: "Victor Volunteer",
			Role:     domain.RoleVolunteer,
		})
		require.NoError(t, err)

		select {
		case <-notified:
		case <-time.After(2 * time.Second):
			t.Fatal("admin notice was not sent")
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		f := newFixture()
		f.users.On("ExistsByEmail", ctx, "dup@example.com").Return(true, nil).Once()

		_, err := f.svc.Register(ctx, domain.RegisterInput{Email: "dup@example.com", Password: "password123", FullName: "Dup"})
		assert.Equal(t, auth.ErrEmailExists, err)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})

	t.Run("Duplicate On Insert Race", func(t *testing.T) {
		f := newFixture()
		f.users.On("ExistsByEmail", ctx, "race@example.com").Return(false, nil).Once()
		f.users.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate).Once()

		_, err := f.svc.Register(ctx, domain.RegisterInput{Email: "race@example.com", Password: "password123", FullName: "Race"})
		assert.Equal(t, auth.ErrEmailExists, err)
	})

	t.Run("Admin Role Rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Register(ctx, domain.RegisterInput{
			Email: "x@example.com", Password: "password123", FullName: "Mallory", Role: domain.RoleAdmin,
		})
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	password := "password123"

	newUser := func(mutate func(u *domain.User)) *domain.User {
		u := &domain.User{
			ID:              uuid.New(),
			Email:           "user@example.com",
			PasswordHash:    hashed(t, password),
			Role:            domain.RoleCitizen,
			IsActive:        true,
			IsApproved:      true,
			IsEmailVerified: true,
		}
		if mutate != nil {
			mutate(u)
		}
		return u
	}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		user := newUser(nil)
		f.users.On("GetByEmail", ctx, "user@example.com").Return(user, nil).Once()
		f.sessions.On("Create", ctx, mock.MatchedBy(func(s *repository.Session) bool {
			return s.UserID == user.ID && s.UserAgent != nil && *s.UserAgent == "test-agent"
		})).Return(nil).Once()

		got, tokens, err := f.svc.Login(ctx, domain.LoginInput{Email: "user@example.com", Password: password},
			&domain.RequestMeta{UserAgent: "test-agent"})

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, tokens.RefreshToken)

		claims, err := f.svc.ValidateAccessToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil).Once()

		_, _, err := f.svc.Login(ctx, domain.LoginInput{Email: "nobody@example.com", Password: password}, nil)
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	tests := []struct {
		name     string
		mutate   func(u *domain.User)
		password string
		want     error
	}{
		{"wrong password beats deactivation", func(u *domain.User) { u.IsActive = false }, "wrong-password", auth.ErrInvalidCredentials},
		{"deactivated", func(u *domain.User) { u.IsActive = false }, password, domain.ErrAccountDeactivated},
		{"unverified", func(u *domain.User) { u.IsEmailVerified = false }, password, domain.ErrEmailNotVerified},
		{"pending volunteer", func(u *domain.User) { u.Role = domain.RoleVolunteer; u.IsApproved = false }, password, domain.ErrPendingApproval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.users.On("GetByEmail", ctx, "user@example.com").Return(newUser(tt.mutate), nil).Once()

			_, tokens, err := f.svc.Login(ctx, domain.LoginInput{Email: "user@example.com", Password: tt.password}, nil)
			assert.Equal(t, tt.want, err)
			assert.Nil(t, tokens)
			f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleCitizen, IsActive: true, IsEmailVerified: true, IsApproved: true}
	session := &repository.Session{ID: uuid.New(), UserID: user.ID}

	t.Run("Rotates Session", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(session, nil).Once()
		f.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.sessions.On("Revoke", ctx, session.ID).Return(nil).Once()
		f.sessions.On("Create", ctx, mock.Anything).Return(nil).Once()

		tokens, err := f.svc.RefreshToken(ctx, "refresh", nil)
		require.NoError(t, err)
		assert.NotEqual(t, "refresh", tokens.RefreshToken)
		f.sessions.AssertExpectations(t)
	})

	t.Run("Replay Loses Race", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("GetByTokenHash", ctx, mock.Anything).Return(session, nil).Once()
		f.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.sessions.On("Revoke", ctx, session.ID).Return(repository.ErrStaleState).Once()

		_, err := f.svc.RefreshToken(ctx, "refresh", nil)
		assert.Equal(t, auth.ErrInvalidToken, err)
		f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Deactivated User", func(t *testing.T) {
		f := newFixture()
		inactive := *user
		inactive.IsActive = false
		f.sessions.On("GetByTokenHash", ctx, mock.Anything).Return(session, nil).Once()
		f.users.On("GetByID", ctx, user.ID).Return(&inactive, nil).Once()
		f.sessions.On("Revoke", ctx, session.ID).Return(nil).Once()

		_, err := f.svc.RefreshToken(ctx, "refresh", nil)
		assert.Equal(t, domain.ErrAccountDeactivated, err)
	})

	t.Run("Unknown Token", func(t *testing.T) {
		f := newFixture()
		f.sessions.On("GetByTokenHash", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := f.svc.RefreshToken(ctx, "nope", nil)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})
}

func TestAuthService_ValidateAccessToken_Garbage(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ValidateAccessToken("not-a-jwt")
	assert.Equal(t, auth.ErrInvalidToken, err)
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Revokes Sessions", func(t *testing.T) {
		f := newFixture()
		future := time.Now().Add(time.Hour)
		user := &domain.User{ID: uuid.New(), PasswordResetExpiresAt: &future}

		f.users.On("GetUserByResetToken", ctx, "tok").Return(user, nil).Once()
		f.users.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password")) == nil
		})).Return(nil).Once()
		f.users.On("ClearPasswordResetToken", ctx, user.ID).Return(nil).Once()
		f.sessions.On("RevokeAllForUser", ctx, user.ID).Return(nil).Once()

		require.NoError(t, f.svc.ResetPassword(ctx, "tok", "new-password"))
		f.users.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
	})

	t.Run("Expired", func(t *testing.T) {
		f := newFixture()
		past := time.Now().Add(-time.Minute)
		f.users.On("GetUserByResetToken", ctx, "tok").Return(&domain.User{ID: uuid.New(), PasswordResetExpiresAt: &past}, nil).Once()

		err := f.svc.ResetPassword(ctx, "tok", "new-password")
		assert.Equal(t, auth.ErrInvalidResetToken, err)
	})

	t.Run("Short Password", func(t *testing.T) {
		f := newFixture()
		err := f.svc.ResetPassword(ctx, "tok", "short")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestAuthService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil).Once()

	assert.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))
	f.users.AssertNotCalled(t, "SetPasswordResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		sent := time.Now().Add(-time.Hour)
		user := &domain.User{ID: uuid.New(), EmailVerificationSentAt: &sent}
		f.users.On("GetUserByEmailVerificationToken", ctx, "tok").Return(user, nil).Once()
		f.users.On("VerifyEmail", ctx, user.ID).Return(nil).Once()

		assert.NoError(t, f.svc.VerifyEmail(ctx, "tok"))
	})

	t.Run("Expired", func(t *testing.T) {
		f := newFixture()
		sent := time.Now().Add(-48 * time.Hour)
		f.users.On("GetUserByEmailVerificationToken", ctx, "tok").Return(&domain.User{ID: uuid.New(), EmailVerificationSentAt: &sent}, nil).Once()

		assert.Equal(t, auth.ErrInvalidVerificationToken, f.svc.VerifyEmail(ctx, "tok"))
	})
}
