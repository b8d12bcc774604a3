package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"connectaid/internal/domain"
)

// RequestRepository persists service requests. Every state-changing method
// is a single conditional UPDATE so concurrent callers cannot both observe
// the same precondition; a lost race surfaces as ErrStaleState.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.ServiceRequest, int64, error)
	UpdateEditable(ctx context.Context, req *domain.ServiceRequest) error
	Accept(ctx context.Context, id, volunteerID uuid.UUID, at time.Time) error
	AdvanceStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, completedAt *time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, requireOpen bool) error
	CountByStatus(ctx context.Context) (*domain.RequestStats, error)
}

type requestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `request_id, title, description, type, priority, status, location, created_by, assigned_to,
	images, contact_info, accepted_at, completed_at, is_active, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (request_id, title, description, type, priority, status, location, created_by, images, contact_info, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.Title, req.Description, req.Type, req.Priority, req.Status, req.Location,
		req.CreatedBy, req.Images, req.ContactInfo, req.IsActive,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	var req domain.ServiceRequest
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE request_id = $1 AND is_active`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func buildRequestWhere(filter domain.RequestFilter) (string, []interface{}) {
	conds := []string{"is_active"}
	var args []interface{}
	next := func(arg interface{}) int {
		args = append(args, arg)
		return len(args)
	}

	if filter.CreatedBy != nil {
		conds = append(conds, fmt.Sprintf("created_by = $%d", next(*filter.CreatedBy)))
	}
	if filter.VolunteerID != nil {
		n := next(*filter.VolunteerID)
		conds = append(conds, fmt.Sprintf(
			"((status = 'open' AND assigned_to IS NULL AND created_by <> $%d) OR assigned_to = $%d)", n, n))
	}
	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", next(*filter.Status)))
	}
	if filter.Type != nil {
		conds = append(conds, fmt.Sprintf("type = $%d", next(*filter.Type)))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *requestRepository) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.ServiceRequest, int64, error) {
	params.Validate()
	where, args := buildRequestWhere(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM service_requests`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM service_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		requestColumns, where, len(args)+1, len(args)+2)

	var requests []domain.ServiceRequest
	if err := r.db.SelectContext(ctx, &requests, query, append(args, params.PageSize, params.Offset())...); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *requestRepository) UpdateEditable(ctx context.Context, req *domain.ServiceRequest) error {
	query := `
		UPDATE service_requests
		SET title = $2, description = $3, type = $4, priority = $5, location = $6,
			contact_info = $7, images = $8, updated_at = NOW()
		WHERE request_id = $1 AND status = 'open' AND is_active
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID, req.Title, req.Description, req.Type, req.Priority, req.Location, req.ContactInfo, req.Images,
	).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleState
	}
	return err
}

func (r *requestRepository) Accept(ctx context.Context, id, volunteerID uuid.UUID, at time.Time) error {
	query := `
		UPDATE service_requests
		SET status = 'accepted', assigned_to = $2, accepted_at = $3, updated_at = NOW()
		WHERE request_id = $1 AND status = 'open' AND assigned_to IS NULL AND created_by <> $2 AND is_active`

	res, err := r.db.ExecContext(ctx, query, id, volunteerID, at)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

func (r *requestRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, completedAt *time.Time) error {
	query := `
		UPDATE service_requests
		SET status = $3, completed_at = COALESCE($4, completed_at), updated_at = NOW()
		WHERE request_id = $1 AND status = $2 AND is_active`

	res, err := r.db.ExecContext(ctx, query, id, from, to, completedAt)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

// SoftDelete deactivates the request. With requireOpen the write only lands
// while the request is still open.
func (r *requestRepository) SoftDelete(ctx context.Context, id uuid.UUID, requireOpen bool) error {
	query := `UPDATE service_requests SET is_active = FALSE, updated_at = NOW() WHERE request_id = $1 AND is_active`
	if requireOpen {
		query += ` AND status = 'open'`
	}

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}

func (r *requestRepository) CountByStatus(ctx context.Context) (*domain.RequestStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'open') AS open,
			COUNT(*) FILTER (WHERE status = 'accepted') AS accepted,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) AS total
		FROM service_requests
		WHERE is_active`

	var stats domain.RequestStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
