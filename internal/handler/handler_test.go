package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"connectaid/internal/domain"
	"connectaid/internal/middleware"
	"connectaid/internal/mocks"
	"connectaid/internal/service/request"
)

func newTestApp(actor *domain.User) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(zap.NewNop())})
	app.Use(middleware.RequestInfo())
	if actor != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.UserContextKey, actor)
			c.Locals(middleware.UserIDContextKey, actor.ID)
			return c.Next()
		})
	}
	return app
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRequestHandler_Update(t *testing.T) {
	volunteer := &domain.User{ID: uuid.New(), Role: domain.RoleVolunteer, IsActive: true}
	id := uuid.New()
	accepted := &domain.ServiceRequest{ID: id, Status: domain.StatusAccepted, AssignedTo: &volunteer.ID}

	setup := func() (*fiber.App, *mocks.RequestService) {
		svc := new(mocks.RequestService)
		app := newTestApp(volunteer)
		h := NewRequestHandler(svc)
		app.Put("/requests/:id", h.Update)
		return app, svc
	}

	t.Run("Accept", func(t *testing.T) {
		app, svc := setup()
		svc.On("Accept", mock.Anything, volunteer, id, mock.Anything).Return(accepted, nil).Once()

		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/"+id.String(), fiber.Map{"action": "accept"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got domain.ServiceRequest
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, domain.StatusAccepted, got.Status)
		svc.AssertExpectations(t)
	})

	t.Run("Accept Conflict", func(t *testing.T) {
		app, svc := setup()
		svc.On("Accept", mock.Anything, volunteer, id, mock.Anything).Return(nil, domain.ErrNotAvailable).Once()

		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/"+id.String(), fiber.Map{"action": "accept"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("Update Status", func(t *testing.T) {
		app, svc := setup()
		svc.On("AdvanceStatus", mock.Anything, volunteer, id, domain.StatusInProgress, mock.Anything).
			Return(&domain.ServiceRequest{ID: id, Status: domain.StatusInProgress}, nil).Once()

		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/"+id.String(), fiber.Map{"action": "update_status", "status": "in_progress"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("Update Status Without Status", func(t *testing.T) {
		app, _ := setup()
		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/"+id.String(), fiber.Map{"action": "update_status"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Edit", func(t *testing.T) {
		app, svc := setup()
		svc.On("Edit", mock.Anything, volunteer, id, mock.MatchedBy(func(in domain.UpdateRequestInput) bool {
			return in.Title != nil && *in.Title == "new title"
		}), mock.Anything).Return(nil, domain.ErrNotEditable).Once()

		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/"+id.String(), fiber.Map{"title": "new title"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("Unknown Action", func(t *testing.T) {
		app, _ := setup()
		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/"+id.String(), fiber.Map{"action": "cancel"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Bad ID", func(t *testing.T) {
		app, _ := setup()
		resp, err := app.Test(jsonRequest(t, "PUT", "/requests/not-a-uuid", fiber.Map{"action": "accept"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestRequestHandler_List(t *testing.T) {
	citizen := &domain.User{ID: uuid.New(), Role: domain.RoleCitizen, IsActive: true}
	svc := new(mocks.RequestService)
	app := newTestApp(citizen)
	app.Get("/requests", NewRequestHandler(svc).List)

	svc.On("List", mock.Anything, citizen, mock.MatchedBy(func(q request.ListQuery) bool {
		return q.Status != nil && *q.Status == domain.StatusOpen &&
			q.Type != nil && *q.Type == domain.TypeBlood &&
			q.Page == 2 && q.PageSize == 5
	})).Return(domain.NewPaginatedResponse([]domain.ServiceRequest{}, 2, 5, 0), nil).Once()

	resp, err := app.Test(httptest.NewRequest("GET", "/requests?status=open&type=blood&page=2&limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestRequestHandler_Create_Unauthenticated(t *testing.T) {
	app := newTestApp(nil)
	app.Post("/requests", NewRequestHandler(new(mocks.RequestService)).Create)

	resp, err := app.Test(jsonRequest(t, "POST", "/requests", fiber.Map{"title": "x"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_LoginSetsCookie(t *testing.T) {
	svc := new(mocks.AuthService)
	cookie := sessionCookie{name: "connectaid_session", maxAge: 15 * time.Minute}
	app := newTestApp(nil)
	h := NewAuthHandler(svc, cookie)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/logout", h.Logout)

	user := &domain.User{ID: uuid.New(), Email: "c@example.com", Role: domain.RoleCitizen}
	svc.On("Login", mock.Anything, domain.LoginInput{Email: "c@example.com", Password: "password1"}, mock.Anything).
		Return(user, &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil).Once()
	svc.On("Logout", mock.Anything, "refresh").Return(nil).Once()

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/login", fiber.Map{"email": "c@example.com", "password": "password1"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	assert.Equal(t, "connectaid_session", resp.Cookies()[0].Name)
	assert.Equal(t, "access", resp.Cookies()[0].Value)
	assert.True(t, resp.Cookies()[0].HttpOnly)

	resp, err = app.Test(jsonRequest(t, "POST", "/auth/logout", fiber.Map{"refresh_token": "refresh"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	assert.Empty(t, resp.Cookies()[0].Value)
	svc.AssertExpectations(t)
}

func TestAuthHandler_LoginPendingVolunteer(t *testing.T) {
	svc := new(mocks.AuthService)
	app := newTestApp(nil)
	app.Post("/auth/login", NewAuthHandler(svc, sessionCookie{}).Login)

	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil, domain.ErrPendingApproval).Once()

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/login", fiber.Map{"email": "v@example.com", "password": "password1"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestFeedbackHandler_ListRequiresFilter(t *testing.T) {
	actor := &domain.User{ID: uuid.New(), Role: domain.RoleCitizen}
	svc := new(mocks.FeedbackService)
	app := newTestApp(actor)
	app.Get("/feedback", NewFeedbackHandler(svc).List)

	resp, err := app.Test(httptest.NewRequest("GET", "/feedback", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	requestID := uuid.New()
	svc.On("ListByRequest", mock.Anything, actor, requestID).Return([]domain.Feedback{}, nil).Once()
	resp, err = app.Test(httptest.NewRequest("GET", "/feedback?requestId="+requestID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}
