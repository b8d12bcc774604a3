package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/policy"
	"connectaid/internal/repository"
	"connectaid/internal/service/audit"
)

var (
	ErrRequestNotFound  = domain.NotFound("Request not found")
	ErrFeedbackNotFound = domain.NotFound("Feedback not found")
	ErrNotEligible      = domain.Forbidden("Feedback can only be left by the owner or the assigned volunteer of a completed request")
	ErrWrongRecipient   = domain.Validation("to_user must be the other party of the request")
	ErrAlreadyLeft      = domain.Conflict("You have already left feedback for this request")
	ErrCannotDelete     = domain.Forbidden("You cannot delete this feedback")
	ErrNoAccess         = domain.Forbidden("You do not have access to this request")
)

// UserFeedback is the public feedback received by a user plus their rating.
type UserFeedback struct {
	domain.PaginatedResponse[domain.Feedback]
	Rating *domain.UserRating `json:"rating"`
}

type Service interface {
	Create(ctx context.Context, actor *domain.User, input domain.CreateFeedbackInput, meta *domain.RequestMeta) (*domain.Feedback, error)
	ListByRequest(ctx context.Context, actor *domain.User, requestID uuid.UUID) ([]domain.Feedback, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (*UserFeedback, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) error
}

type service struct {
	feedbackRepo repository.FeedbackRepository
	requestRepo  repository.RequestRepository
	auditService audit.Service
	log          *zap.Logger
}

func NewService(
	feedbackRepo repository.FeedbackRepository,
	requestRepo repository.RequestRepository,
	auditService audit.Service,
	log *zap.Logger,
) Service {
	return &service{
		feedbackRepo: feedbackRepo,
		requestRepo:  requestRepo,
		auditService: auditService,
		log:          log,
	}
}

func (s *service) loadRequest(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// counterpart returns the other party of a completed request: the assignee
// for the owner and the owner for the assignee.
func counterpart(actor *domain.User, req *domain.ServiceRequest) uuid.UUID {
	if req.CreatedBy == actor.ID && req.AssignedTo != nil {
		return *req.AssignedTo
	}
	return req.CreatedBy
}

func (s *service) Create(ctx context.Context, actor *domain.User, input domain.CreateFeedbackInput, meta *domain.RequestMeta) (*domain.Feedback, error) {
	input.Normalize()
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	req, err := s.loadRequest(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if !policy.CanLeaveFeedback(actor, req) {
		return nil, ErrNotEligible
	}

	to := counterpart(actor, req)
	if input.ToUser != nil && *input.ToUser != to {
		return nil, ErrWrongRecipient
	}

	exists, err := s.feedbackRepo.Exists(ctx, req.ID, actor.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if exists {
		return nil, ErrAlreadyLeft
	}

	fb := &domain.Feedback{
		ID:        uuid.New(),
		RequestID: req.ID,
		FromUser:  actor.ID,
		ToUser:    to,
		Rating:    input.Rating,
		Comment:   input.Comment,
		IsPublic:  true,
		IsActive:  true,
	}
	if input.IsPublic != nil {
		fb.IsPublic = *input.IsPublic
	}

	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLeft
		}
		return nil, domain.Internal(err)
	}

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditCreateFeedback,
		EntityType: domain.AuditEntityFeedback,
		EntityID:   fb.ID,
		NewValue:   fb,
		Meta:       meta,
	})

	return fb, nil
}

func (s *service) ListByRequest(ctx context.Context, actor *domain.User, requestID uuid.UUID) ([]domain.Feedback, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, req) {
		return nil, ErrNoAccess
	}

	items, err := s.feedbackRepo.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if items == nil {
		items = []domain.Feedback{}
	}
	return items, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (*UserFeedback, error) {
	params.Validate()

	items, total, err := s.feedbackRepo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, domain.Internal(err)
	}
	rating, err := s.feedbackRepo.RatingForUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	return &UserFeedback{
		PaginatedResponse: domain.NewPaginatedResponse(items, params.Page, params.PageSize, total),
		Rating:            rating,
	}, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) error {
	fb, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Internal(err)
	}
	if fb == nil {
		return ErrFeedbackNotFound
	}
	if !policy.CanDeleteFeedback(actor, fb) {
		return ErrCannotDelete
	}

	if err := s.feedbackRepo.SoftDelete(ctx, fb.ID); err != nil {
		if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrNotFound) {
			return ErrFeedbackNotFound
		}
		return domain.Internal(err)
	}

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditDeleteFeedback,
		EntityType: domain.AuditEntityFeedback,
		EntityID:   fb.ID,
		OldValue:   fb,
		Meta:       meta,
	})
	return nil
}
