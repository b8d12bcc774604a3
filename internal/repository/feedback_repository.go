package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"connectaid/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Feedback, error)
	Exists(ctx context.Context, requestID, fromUser uuid.UUID) (bool, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Feedback, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Feedback, int64, error)
	RatingForUser(ctx context.Context, userID uuid.UUID) (*domain.UserRating, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type feedbackRepository struct {
	db *sqlx.DB
}

func NewFeedbackRepository(db *sqlx.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create relies on the (request_id, from_user) unique constraint; a second
// insert for the same pair returns ErrDuplicate.
func (r *feedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	query := `
		INSERT INTO feedback (feedback_id, request_id, from_user, to_user, rating, comment, is_public, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		fb.ID, fb.RequestID, fb.FromUser, fb.ToUser, fb.Rating, fb.Comment, fb.IsPublic, fb.IsActive,
	).Scan(&fb.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feedback, error) {
	var fb domain.Feedback
	query := `
		SELECT f.feedback_id, f.request_id, f.from_user, f.to_user, f.rating, f.comment, f.is_public, f.is_active, f.created_at
		FROM feedback f
		WHERE f.feedback_id = $1 AND f.is_active`

	err := r.db.GetContext(ctx, &fb, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *feedbackRepository) Exists(ctx context.Context, requestID, fromUser uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM feedback WHERE request_id = $1 AND from_user = $2)`
	err := r.db.GetContext(ctx, &exists, query, requestID, fromUser)
	return exists, err
}

func (r *feedbackRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Feedback, error) {
	query := `
		SELECT f.feedback_id, f.request_id, f.from_user, f.to_user, f.rating, f.comment, f.is_public, f.is_active, f.created_at,
			u.full_name AS from_user_name
		FROM feedback f
		INNER JOIN users u ON u.user_id = f.from_user
		WHERE f.request_id = $1 AND f.is_active
		ORDER BY f.created_at DESC`

	var items []domain.Feedback
	err := r.db.SelectContext(ctx, &items, query, requestID)
	return items, err
}

func (r *feedbackRepository) ListForUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Feedback, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM feedback WHERE to_user = $1 AND is_active AND is_public`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT f.feedback_id, f.request_id, f.from_user, f.to_user, f.rating, f.comment, f.is_public, f.is_active, f.created_at,
			u.full_name AS from_user_name
		FROM feedback f
		INNER JOIN users u ON u.user_id = f.from_user
		WHERE f.to_user = $1 AND f.is_active AND f.is_public
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`

	var items []domain.Feedback
	err := r.db.SelectContext(ctx, &items, query, userID, params.PageSize, params.Offset())
	return items, total, err
}

func (r *feedbackRepository) RatingForUser(ctx context.Context, userID uuid.UUID) (*domain.UserRating, error) {
	query := `
		SELECT $1::uuid AS user_id, COALESCE(AVG(rating), 0)::float8 AS average, COUNT(*) AS count
		FROM feedback
		WHERE to_user = $1 AND is_active`

	var rating domain.UserRating
	if err := r.db.GetContext(ctx, &rating, query, userID); err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *feedbackRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE feedback SET is_active = FALSE WHERE feedback_id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	return checkAffected(res.RowsAffected())
}
