package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID        uuid.UUID `json:"id" db:"feedback_id"`
	RequestID uuid.UUID `json:"request_id" db:"request_id"`
	FromUser  uuid.UUID `json:"from_user" db:"from_user"`
	ToUser    uuid.UUID `json:"to_user" db:"to_user"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	IsPublic  bool      `json:"is_public" db:"is_public"`
	IsActive  bool      `json:"-" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	FromUserName *string `json:"from_user_name,omitempty" db:"from_user_name"`
}

type CreateFeedbackInput struct {
	RequestID uuid.UUID  `json:"request_id" validate:"required"`
	ToUser    *uuid.UUID `json:"to_user,omitempty"`
	Rating    int        `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string    `json:"comment,omitempty" validate:"omitempty,max=500"`
	IsPublic  *bool      `json:"is_public,omitempty"`
}

func (in *CreateFeedbackInput) Normalize() {
	if in.Comment != nil {
		trimmed := strings.TrimSpace(*in.Comment)
		if trimmed == "" {
			in.Comment = nil
		} else {
			in.Comment = &trimmed
		}
	}
}

type UserRating struct {
	UserID  uuid.UUID `json:"user_id" db:"user_id"`
	Average float64   `json:"average" db:"average"`
	Count   int64     `json:"count" db:"count"`
}
