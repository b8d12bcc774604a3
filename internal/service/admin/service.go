package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/policy"
	"connectaid/internal/repository"
	"connectaid/internal/service/audit"
	"connectaid/internal/service/email"
)

var (
	ErrUserNotFound        = domain.NotFound("User not found")
	ErrNotPendingVolunteer = domain.Conflict("User is not a pending volunteer")
	ErrProtectedAccount    = domain.Forbidden("Admins cannot modify their own account or other admins")
	ErrRoleRequired        = domain.Validation("role is required for change_role")
)

type Service interface {
	ListUsers(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error)
	UpdateUser(ctx context.Context, actor *domain.User, input domain.AdminUpdateUserInput, meta *domain.RequestMeta) (*domain.User, error)
	ListPendingVolunteers(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error)
	ReviewVolunteer(ctx context.Context, actor *domain.User, input domain.ReviewVolunteerInput, meta *domain.RequestMeta) error
}

type service struct {
	userRepo     repository.UserRepository
	auditService audit.Service
	emailService email.Service
	log          *zap.Logger
}

func NewService(userRepo repository.UserRepository, auditService audit.Service, emailService email.Service, log *zap.Logger) Service {
	return &service{
		userRepo:     userRepo,
		auditService: auditService,
		emailService: emailService,
		log:          log,
	}
}

func (s *service) ListUsers(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error) {
	params.Validate()
	if filter.Role != nil && !filter.Role.IsValid() {
		return domain.PaginatedResponse[domain.User]{}, domain.Validation("role must be one of admin, volunteer, citizen")
	}

	users, total, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.User]{}, domain.Internal(err)
	}
	return domain.NewPaginatedResponse(users, params.Page, params.PageSize, total), nil
}

func (s *service) ListPendingVolunteers(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error) {
	role := domain.RoleVolunteer
	approved := false
	return s.ListUsers(ctx, domain.UserFilter{Role: &role, IsApproved: &approved}, params)
}

func (s *service) load(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.User, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.Forbidden("Admin access required")
	}
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	return target, nil
}

func (s *service) UpdateUser(ctx context.Context, actor *domain.User, input domain.AdminUpdateUserInput, meta *domain.RequestMeta) (*domain.User, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	target, err := s.load(ctx, actor, input.UserID)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"is_active": target.IsActive, "role": target.Role}

	switch input.Action {
	case domain.UserActionActivate:
		err = s.userRepo.SetActive(ctx, target.ID, true)
		target.IsActive = true
	case domain.UserActionDeactivate:
		if !policy.CanDeactivate(actor, target) {
			return nil, ErrProtectedAccount
		}
		err = s.userRepo.SetActive(ctx, target.ID, false)
		target.IsActive = false
	case domain.UserActionChangeRole:
		if input.Role == "" {
			return nil, ErrRoleRequired
		}
		if !policy.CanChangeRole(actor, target) {
			return nil, ErrProtectedAccount
		}
		err = s.userRepo.SetRole(ctx, target.ID, input.Role)
		target.Role = input.Role
	default:
		return nil, domain.Validation("action must be one of activate, deactivate, change_role")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, domain.Internal(err)
	}

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditUpdateUser,
		EntityType: domain.AuditEntityUser,
		EntityID:   target.ID,
		OldValue:   old,
		NewValue:   map[string]interface{}{"is_active": target.IsActive, "role": target.Role, "action": input.Action},
		Meta:       meta,
	})

	return target, nil
}

// ReviewVolunteer approves a pending volunteer or rejects the application.
// Rejection deletes the account outright.
func (s *service) ReviewVolunteer(ctx context.Context, actor *domain.User, input domain.ReviewVolunteerInput, meta *domain.RequestMeta) error {
	if err := domain.Validate(input); err != nil {
		return err
	}

	target, err := s.load(ctx, actor, input.UserID)
	if err != nil {
		return err
	}
	if target.Role != domain.RoleVolunteer || target.IsApproved {
		return ErrNotPendingVolunteer
	}

	entry := domain.CreateAuditLogInput{
		UserID:     actor.ID,
		EntityType: domain.AuditEntityUser,
		EntityID:   target.ID,
		OldValue:   map[string]interface{}{"email": target.Email, "full_name": target.FullName, "is_approved": false},
		Meta:       meta,
	}

	switch input.Action {
	case domain.VolunteerApprove:
		err = s.userRepo.Approve(ctx, target.ID)
		entry.Action = domain.AuditApproveVolunteer
		entry.NewValue = map[string]interface{}{"is_approved": true}
	case domain.VolunteerReject:
		err = s.userRepo.Delete(ctx, target.ID)
		entry.Action = domain.AuditRejectVolunteer
	default:
		return domain.Validation("action must be one of approve, reject")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return domain.Internal(err)
	}

	s.auditService.Record(ctx, entry)

	if input.Action == domain.VolunteerApprove {
		go func() {
			if err := s.emailService.SendVolunteerApprovedEmail(context.Background(), target.Email, target.FullName); err != nil {
				s.log.Warn("failed to send volunteer approval email",
					zap.String("user_id", target.ID.String()), zap.Error(err))
			}
		}()
	}

	return nil
}
