package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRequest() *ServiceRequest {
	return &ServiceRequest{
		ID:        uuid.New(),
		Title:     "Need blood",
		Type:      TypeBlood,
		Priority:  PriorityMedium,
		Status:    StatusOpen,
		CreatedBy: uuid.New(),
		IsActive:  true,
	}
}

func TestServiceRequest_Accept(t *testing.T) {
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		req := openRequest()
		volunteer := uuid.New()

		require.NoError(t, req.Accept(volunteer, now))
		assert.Equal(t, StatusAccepted, req.Status)
		assert.Equal(t, volunteer, *req.AssignedTo)
		assert.Equal(t, now, *req.AcceptedAt)
	})

	t.Run("Self Accept", func(t *testing.T) {
		req := openRequest()
		err := req.Accept(req.CreatedBy, now)
		assert.True(t, IsKind(err, KindForbidden))
		assert.Nil(t, req.AssignedTo)
	})

	t.Run("Not Open", func(t *testing.T) {
		req := openRequest()
		first := uuid.New()
		require.NoError(t, req.Accept(first, now))

		assert.True(t, IsKind(req.Accept(uuid.New(), now), KindConflict))
		assert.True(t, IsKind(req.Accept(first, now), KindConflict))
		assert.Equal(t, first, *req.AssignedTo)
	})

	t.Run("Soft Deleted", func(t *testing.T) {
		req := openRequest()
		req.IsActive = false
		assert.True(t, IsKind(req.Accept(uuid.New(), now), KindConflict))
	})
}

func TestServiceRequest_Advance(t *testing.T) {
	now := time.Now()

	t.Run("Forward Path", func(t *testing.T) {
		req := openRequest()
		require.NoError(t, req.Accept(uuid.New(), now))

		require.NoError(t, req.Advance(StatusInProgress, now))
		assert.Equal(t, StatusInProgress, req.Status)
		assert.Nil(t, req.CompletedAt)

		require.NoError(t, req.Advance(StatusCompleted, now))
		assert.Equal(t, StatusCompleted, req.Status)
		assert.NotNil(t, req.CompletedAt)
	})

	t.Run("Never Backward", func(t *testing.T) {
		statuses := []RequestStatus{StatusOpen, StatusAccepted, StatusInProgress, StatusCompleted}
		for _, from := range statuses {
			for _, to := range statuses {
				req := openRequest()
				req.Status = from
				before := from.Rank()

				_ = req.Advance(to, now)
				assert.GreaterOrEqual(t, req.Status.Rank(), before, "%s -> %s", from, to)
			}
		}
	})

	t.Run("Open Cannot Skip Accept", func(t *testing.T) {
		req := openRequest()
		assert.True(t, IsKind(req.Advance(StatusInProgress, now), KindConflict))
		assert.Equal(t, StatusOpen, req.Status)
	})

	t.Run("Invalid Target", func(t *testing.T) {
		req := openRequest()
		req.Status = StatusAccepted
		assert.True(t, IsKind(req.Advance(StatusOpen, now), KindValidation))
		assert.True(t, IsKind(req.Advance("cancelled", now), KindValidation))
	})
}

func TestServiceRequest_ApplyEdit(t *testing.T) {
	title := "new"

	req := openRequest()
	require.NoError(t, req.ApplyEdit(UpdateRequestInput{Title: &title}))
	assert.Equal(t, "new", req.Title)

	req.Status = StatusCompleted
	err := req.ApplyEdit(UpdateRequestInput{Title: &title})
	assert.True(t, IsKind(err, KindConflict))
}

func TestUser_LoginEligibility(t *testing.T) {
	tests := []struct {
		name string
		user User
		want error
	}{
		{"inactive", User{IsActive: false, IsEmailVerified: false, Role: RoleVolunteer}, ErrAccountDeactivated},
		{"unverified", User{IsActive: true, IsEmailVerified: false, Role: RoleCitizen}, ErrEmailNotVerified},
		{"pending volunteer", User{IsActive: true, IsEmailVerified: true, Role: RoleVolunteer}, ErrPendingApproval},
		{"approved volunteer", User{IsActive: true, IsEmailVerified: true, IsApproved: true, Role: RoleVolunteer}, nil},
		{"citizen", User{IsActive: true, IsEmailVerified: true, Role: RoleCitizen}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.LoginEligibility()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestValidate_CreateRequestInput(t *testing.T) {
	input := CreateRequestInput{
		Title:       "  Need blood  ",
		Description: "O+ needed",
		Type:        TypeBlood,
		Location:    "City hospital",
	}
	input.Normalize()

	require.NoError(t, Validate(input))
	assert.Equal(t, "Need blood", input.Title)
	assert.Equal(t, PriorityMedium, input.Priority)
	assert.Equal(t, ContactBoth, input.ContactInfo.PreferredContact)

	input.Title = string(make([]byte, 101))
	err := Validate(input)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "title")

	input.Title = "ok"
	input.Type = "food"
	assert.True(t, IsKind(Validate(input), KindValidation))

	input.Type = TypeOther
	input.Location = ""
	assert.True(t, IsKind(Validate(input), KindValidation))
}
