package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectaid/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestRequestRepository_Accept(t *testing.T) {
	ctx := context.Background()
	id, volunteer := uuid.New(), uuid.New()
	at := time.Now()
	pattern := regexp.QuoteMeta("WHERE request_id = $1 AND status = 'open' AND assigned_to IS NULL AND created_by <> $2 AND is_active")

	t.Run("Wins", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(pattern).WithArgs(id, volunteer, at).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewRequestRepository(db).Accept(ctx, id, volunteer, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Loses", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(pattern).WithArgs(id, volunteer, at).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewRequestRepository(db).Accept(ctx, id, volunteer, at), ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_AdvanceStatus(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("WHERE request_id = $1 AND status = $2 AND is_active")).
		WithArgs(id, domain.StatusAccepted, domain.StatusInProgress, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRequestRepository(db).AdvanceStatus(ctx, id, domain.StatusAccepted, domain.StatusInProgress, nil)
	assert.ErrorIs(t, err, ErrStaleState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Owner Requires Open", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("AND is_active AND status = 'open'")).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewRequestRepository(db).SoftDelete(ctx, id, true), ErrStaleState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Admin Any Status", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE service_requests SET is_active = FALSE, updated_at = NOW\(\) WHERE request_id = \$1 AND is_active$`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewRequestRepository(db).SoftDelete(ctx, id, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequestRepository_UpdateEditable_Stale(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	req := &domain.ServiceRequest{ID: uuid.New(), Title: "t", Images: domain.RequestImages{}}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE request_id = $1 AND status = 'open' AND is_active")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	assert.ErrorIs(t, NewRequestRepository(db).UpdateEditable(ctx, req), ErrStaleState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery("FROM service_requests WHERE request_id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}))

	req, err := NewRequestRepository(db).GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, req)
}

func TestRequestRepository_List_VolunteerFilter(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	volunteer := uuid.New()
	status := domain.StatusOpen

	where := regexp.QuoteMeta("WHERE is_active AND ((status = 'open' AND assigned_to IS NULL AND created_by <> $1) OR assigned_to = $1) AND status = $2")
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM service_requests " + where).
		WithArgs(volunteer, status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(where + ".*LIMIT \\$3 OFFSET \\$4").
		WithArgs(volunteer, status, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}))

	items, total, err := NewRequestRepository(db).List(ctx,
		domain.RequestFilter{VolunteerID: &volunteer, Status: &status},
		domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO feedback").WillReturnError(&pq.Error{Code: "23505"})

	fb := &domain.Feedback{ID: uuid.New(), RequestID: uuid.New(), FromUser: uuid.New(), ToUser: uuid.New(), Rating: 5}
	assert.ErrorIs(t, NewFeedbackRepository(db).Create(ctx, fb), ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	user := &domain.User{ID: uuid.New(), Email: "a@example.com", Role: domain.RoleCitizen}
	assert.ErrorIs(t, NewUserRepository(db).Create(ctx, user), ErrDuplicate)
}

func TestUserRepository_SetActive_Missing(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET is_active").WithArgs(id, false).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewUserRepository(db).SetActive(ctx, id, false), ErrNotFound)
}
