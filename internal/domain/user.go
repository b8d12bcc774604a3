package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                      uuid.UUID  `json:"id" db:"user_id"`
	Email                   string     `json:"email" db:"email"`
	PasswordHash            string     `json:"-" db:"password_hash"`
	FullName                string     `json:"full_name" db:"full_name"`
	Phone                   *string    `json:"phone,omitempty" db:"phone"`
	Address                 *string    `json:"address,omitempty" db:"address"`
	Role                    Role       `json:"role" db:"role"`
	IsApproved              bool       `json:"is_approved" db:"is_approved"`
	IsActive                bool       `json:"is_active" db:"is_active"`
	IsEmailVerified         bool       `json:"is_email_verified" db:"is_email_verified"`
	EmailVerificationToken  *string    `json:"-" db:"email_verification_token"`
	EmailVerificationSentAt *time.Time `json:"-" db:"email_verification_sent_at"`
	PasswordResetToken      *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiresAt  *time.Time `json:"-" db:"password_reset_expires_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
	RoleCitizen   Role = "citizen"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleVolunteer, RoleCitizen:
		return true
	default:
		return false
	}
}

var (
	ErrAccountDeactivated = Forbidden("Account is deactivated")
	ErrEmailNotVerified   = Forbidden("Email not verified")
	ErrPendingApproval    = Forbidden("Account pending admin approval")
)

// LoginEligibility applies the account-state checks that gate a login, in
// order: deactivated, unverified, unapproved volunteer.
func (u *User) LoginEligibility() error {
	if !u.IsActive {
		return ErrAccountDeactivated
	}
	if !u.IsEmailVerified {
		return ErrEmailNotVerified
	}
	if u.Role == RoleVolunteer && !u.IsApproved {
		return ErrPendingApproval
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName string  `json:"full_name" validate:"required,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Role     Role    `json:"role" validate:"omitempty,oneof=citizen volunteer"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

type UserAction string

const (
	UserActionActivate   UserAction = "activate"
	UserActionDeactivate UserAction = "deactivate"
	UserActionChangeRole UserAction = "change_role"
)

type AdminUpdateUserInput struct {
	UserID uuid.UUID  `json:"user_id" validate:"required"`
	Action UserAction `json:"action" validate:"required,oneof=activate deactivate change_role"`
	Role   Role       `json:"role,omitempty" validate:"omitempty,oneof=admin volunteer citizen"`
}

type VolunteerDecision string

const (
	VolunteerApprove VolunteerDecision = "approve"
	VolunteerReject  VolunteerDecision = "reject"
)

type ReviewVolunteerInput struct {
	UserID uuid.UUID         `json:"user_id" validate:"required"`
	Action VolunteerDecision `json:"action" validate:"required,oneof=approve reject"`
}

type UserFilter struct {
	Role       *Role
	IsApproved *bool
	IsActive   *bool
	Search     string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
