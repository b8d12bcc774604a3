package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"connectaid/internal/domain"
	"connectaid/internal/repository"
)

var ErrUserNotFound = domain.NotFound("User not found")

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateProfileInput) (*domain.User, error)
	EnsureAdmin(ctx context.Context, email, password, fullName string) error
}

type service struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewService(userRepo repository.UserRepository, log *zap.Logger) Service {
	return &service{userRepo: userRepo, log: log}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateProfileInput) (*domain.User, error) {
	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		input.FullName = &trimmed
	}
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = emptyToNil(*input.Phone)
	}
	if input.Address != nil {
		user.Address = emptyToNil(*input.Address)
	}
	if input.Password != nil && *input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, domain.Internal(err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, domain.Internal(err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when the address is not
// registered yet. An empty email or password skips the bootstrap.
func (s *service) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return domain.Internal(err)
	}
	if existing != nil {
		if existing.Role != domain.RoleAdmin {
			s.log.Warn("bootstrap admin email belongs to a non-admin account", zap.String("email", email))
		}
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Internal(err)
	}

	admin := &domain.User{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    string(hashedPassword),
		FullName:        fullName,
		Role:            domain.RoleAdmin,
		IsApproved:      true,
		IsActive:        true,
		IsEmailVerified: true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return domain.Internal(err)
	}

	s.log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

func emptyToNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
