package audit

import (
	"context"

	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/repository"
)

type Service interface {
	Record(ctx context.Context, input domain.CreateAuditLogInput)
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
}

type service struct {
	auditRepo repository.AuditLogRepository
	log       *zap.Logger
}

func NewService(auditRepo repository.AuditLogRepository, log *zap.Logger) Service {
	return &service{
		auditRepo: auditRepo,
		log:       log,
	}
}

// Record never fails the calling operation; write errors are logged.
func (s *service) Record(ctx context.Context, input domain.CreateAuditLogInput) {
	if err := repository.CreateAuditLog(ctx, s.auditRepo, input); err != nil {
		s.log.Error("failed to write audit log",
			zap.String("action", input.Action),
			zap.String("entity_id", input.EntityID.String()),
			zap.Error(err))
	}
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()
	logs, total, err := s.auditRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, domain.Internal(err)
	}
	return domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total), nil
}
