package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/policy"
	"connectaid/internal/repository"
	"connectaid/internal/service/audit"
	"connectaid/internal/service/email"
	"connectaid/internal/service/media"
	"connectaid/internal/service/stats"
)

var (
	ErrRequestNotFound = domain.NotFound("Request not found")
	ErrCitizenOnly     = domain.Forbidden("Only citizens can create requests")
	ErrVolunteerOnly   = domain.Forbidden("Only volunteers can accept requests")
	ErrNoAccess        = domain.Forbidden("You do not have access to this request")
	ErrNotOwner        = domain.Forbidden("Only the request owner can edit this request")
	ErrNotAssignee     = domain.Forbidden("Only the assigned volunteer or an admin can update the status")
	ErrCannotDelete    = domain.Forbidden("You cannot delete this request")
	ErrStatusChanged   = domain.Conflict("Request status changed, reload and try again")
	ErrTooManyImages   = domain.Validation(fmt.Sprintf("A request can have at most %d images", domain.MaxRequestImages))
	ErrInvalidStatus   = domain.Validation("status must be one of open, accepted, in_progress, completed")
	ErrInvalidType     = domain.Validation("type must be one of blood, garbage, other")
	errOpenDeleteRace  = domain.Conflict("Only open requests can be deleted")
)

// ListQuery holds the optional filters of a request listing.
type ListQuery struct {
	Status *domain.RequestStatus
	Type   *domain.RequestType
	domain.PaginationParams
}

type Service interface {
	Create(ctx context.Context, actor *domain.User, input domain.CreateRequestInput, meta *domain.RequestMeta) (*domain.ServiceRequest, error)
	Get(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.ServiceRequest, error)
	List(ctx context.Context, actor *domain.User, query ListQuery) (domain.PaginatedResponse[domain.ServiceRequest], error)
	Accept(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) (*domain.ServiceRequest, error)
	AdvanceStatus(ctx context.Context, actor *domain.User, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.ServiceRequest, error)
	Edit(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateRequestInput, meta *domain.RequestMeta) (*domain.ServiceRequest, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) error
}

type service struct {
	requestRepo  repository.RequestRepository
	userRepo     repository.UserRepository
	mediaService media.Service
	emailService email.Service
	auditService audit.Service
	statsService stats.Service
	log          *zap.Logger
	now          func() time.Time
}

func NewService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	mediaService media.Service,
	emailService email.Service,
	auditService audit.Service,
	statsService stats.Service,
	log *zap.Logger,
) Service {
	return &service{
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		mediaService: mediaService,
		emailService: emailService,
		auditService: auditService,
		statsService: statsService,
		log:          log,
		now:          time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor *domain.User, input domain.CreateRequestInput, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	if actor == nil || actor.Role != domain.RoleCitizen {
		return nil, ErrCitizenOnly
	}

	input.Normalize()
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	req := &domain.ServiceRequest{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Priority:    input.Priority,
		Status:      domain.StatusOpen,
		Location:    input.Location,
		CreatedBy:   actor.ID,
		ContactInfo: input.ContactInfo,
		IsActive:    true,
	}
	req.Images = s.uploadImages(ctx, req.ID, input.Images)

	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.purgeImages(req.ID, req.Images)
		return nil, domain.Internal(err)
	}

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditCreateRequest,
		EntityType: domain.AuditEntityRequest,
		EntityID:   req.ID,
		NewValue:   req,
		Meta:       meta,
	})
	s.statsService.Invalidate(ctx)

	return req, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

func (s *service) Get(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.ServiceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, req) {
		return nil, ErrNoAccess
	}
	return req, nil
}

func (s *service) List(ctx context.Context, actor *domain.User, query ListQuery) (domain.PaginatedResponse[domain.ServiceRequest], error) {
	var empty domain.PaginatedResponse[domain.ServiceRequest]

	if query.Status != nil && !query.Status.IsValid() {
		return empty, ErrInvalidStatus
	}
	if query.Type != nil && !query.Type.IsValid() {
		return empty, ErrInvalidType
	}

	filter, ok := policy.VisibilityFor(actor, query.Status, query.Type)
	if !ok {
		return empty, ErrNoAccess
	}

	params := query.PaginationParams
	params.Validate()

	requests, total, err := s.requestRepo.List(ctx, filter, params)
	if err != nil {
		return empty, domain.Internal(err)
	}
	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

// Accept assigns an open request to the calling volunteer. The store write is
// conditional on the request still being open, so of several concurrent
// callers exactly one wins and the rest get ErrNotAvailable.
func (s *service) Accept(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanAccept(actor, req) {
		switch {
		case actor == nil || actor.Role != domain.RoleVolunteer:
			return nil, ErrVolunteerOnly
		case req.CreatedBy == actor.ID:
			return nil, domain.ErrSelfAccept
		default:
			return nil, domain.ErrNotAvailable
		}
	}

	now := s.now()
	if err := req.Accept(actor.ID, now); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Accept(ctx, req.ID, actor.ID, now); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, domain.ErrNotAvailable
		}
		return nil, domain.Internal(err)
	}

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditAcceptRequest,
		EntityType: domain.AuditEntityRequest,
		EntityID:   req.ID,
		OldValue:   map[string]interface{}{"status": domain.StatusOpen},
		NewValue:   map[string]interface{}{"status": req.Status, "assigned_to": actor.ID},
		Meta:       meta,
	})
	s.statsService.Invalidate(ctx)
	s.notifyAccepted(req, actor)

	return req, nil
}

func (s *service) notifyAccepted(req *domain.ServiceRequest, volunteer *domain.User) {
	go func() {
		ctx := context.Background()
		citizen, err := s.userRepo.GetByID(ctx, req.CreatedBy)
		if err != nil || citizen == nil {
			s.log.Warn("failed to load request owner for acceptance email",
				zap.String("request_id", req.ID.String()), zap.Error(err))
			return
		}
		if err := s.emailService.SendRequestAcceptedEmail(ctx, citizen.Email, citizen.FullName, volunteer.FullName, req.Title); err != nil {
			s.log.Warn("failed to send acceptance email",
				zap.String("request_id", req.ID.String()), zap.Error(err))
		}
	}()
}

func (s *service) AdvanceStatus(ctx context.Context, actor *domain.User, id uuid.UUID, target domain.RequestStatus, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanUpdateStatus(actor, req) {
		return nil, ErrNotAssignee
	}

	from := req.Status
	if err := req.Advance(target, s.now()); err != nil {
		return nil, err
	}

	if err := s.requestRepo.AdvanceStatus(ctx, req.ID, from, req.Status, req.CompletedAt); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrStatusChanged
		}
		return nil, domain.Internal(err)
	}

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditUpdateStatus,
		EntityType: domain.AuditEntityRequest,
		EntityID:   req.ID,
		OldValue:   map[string]interface{}{"status": from},
		NewValue:   map[string]interface{}{"status": req.Status},
		Meta:       meta,
	})
	s.statsService.Invalidate(ctx)

	return req, nil
}

func (s *service) Edit(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateRequestInput, meta *domain.RequestMeta) (*domain.ServiceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanEdit(actor, req) {
		return nil, ErrNotOwner
	}

	input.Normalize()
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	before := *req
	if err := req.ApplyEdit(input); err != nil {
		return nil, err
	}

	kept, removed := pruneImages(req.Images, input.ExistingImages)
	if len(kept)+len(input.NewImages) > domain.MaxRequestImages {
		return nil, ErrTooManyImages
	}
	added := s.uploadImages(ctx, req.ID, input.NewImages)
	req.Images = append(kept, added...)

	if err := s.requestRepo.UpdateEditable(ctx, req); err != nil {
		s.purgeImages(req.ID, added)
		if errors.Is(err, repository.ErrStaleState) {
			return nil, domain.ErrNotEditable
		}
		return nil, domain.Internal(err)
	}

	s.purgeImages(req.ID, removed)

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditEditRequest,
		EntityType: domain.AuditEntityRequest,
		EntityID:   req.ID,
		OldValue:   before,
		NewValue:   req,
		Meta:       meta,
	})

	return req, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta *domain.RequestMeta) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !policy.CanDelete(actor, req) {
		return ErrCannotDelete
	}

	requireOpen := !actor.IsAdmin()
	if err := s.requestRepo.SoftDelete(ctx, req.ID, requireOpen); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			if requireOpen {
				return errOpenDeleteRace
			}
			return ErrRequestNotFound
		}
		return domain.Internal(err)
	}

	s.purgeImages(req.ID, req.Images)

	s.auditService.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditDeleteRequest,
		EntityType: domain.AuditEntityRequest,
		EntityID:   req.ID,
		OldValue:   map[string]interface{}{"status": req.Status, "is_active": true},
		NewValue:   map[string]interface{}{"is_active": false},
		Meta:       meta,
	})
	s.statsService.Invalidate(ctx)

	return nil
}

// uploadImages stores each encoded image and returns the ones that made it.
// Failures are logged and skipped; the request is saved either way.
func (s *service) uploadImages(ctx context.Context, requestID uuid.UUID, encoded []string) domain.RequestImages {
	images := domain.RequestImages{}
	prefix := "requests/" + requestID.String()

	for i, data := range encoded {
		if len(images) >= domain.MaxRequestImages {
			break
		}
		img, err := s.mediaService.UploadBase64(ctx, prefix, data)
		if err != nil {
			s.log.Warn("image upload failed, continuing without it",
				zap.String("request_id", requestID.String()), zap.Int("index", i), zap.Error(err))
			continue
		}
		images = append(images, *img)
	}
	return images
}

func (s *service) purgeImages(requestID uuid.UUID, images domain.RequestImages) {
	for _, img := range images {
		if err := s.mediaService.Delete(context.Background(), img.StorageKey); err != nil {
			s.log.Warn("failed to purge request image",
				zap.String("request_id", requestID.String()),
				zap.String("storage_key", img.StorageKey),
				zap.Error(err))
		}
	}
}

// pruneImages keeps the images referenced by existing (matched on URL or
// storage key). A nil existing list keeps everything.
func pruneImages(current domain.RequestImages, existing []string) (kept, removed domain.RequestImages) {
	kept = domain.RequestImages{}
	if existing == nil {
		return append(kept, current...), nil
	}

	keep := make(map[string]struct{}, len(existing))
	for _, ref := range existing {
		keep[ref] = struct{}{}
	}

	for _, img := range current {
		_, byURL := keep[img.URL]
		_, byKey := keep[img.StorageKey]
		if byURL || byKey {
			kept = append(kept, img)
		} else {
			removed = append(removed, img)
		}
	}
	return kept, removed
}
