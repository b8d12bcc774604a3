package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxRequestImages = 5

type RequestType string

const (
	TypeBlood   RequestType = "blood"
	TypeGarbage RequestType = "garbage"
	TypeOther   RequestType = "other"
)

func (t RequestType) IsValid() bool {
	switch t {
	case TypeBlood, TypeGarbage, TypeOther:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type RequestStatus string

const (
	StatusOpen       RequestStatus = "open"
	StatusAccepted   RequestStatus = "accepted"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
)

// Rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s RequestStatus) Rank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusAccepted:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	default:
		return -1
	}
}

func (s RequestStatus) IsValid() bool {
	return s.Rank() >= 0
}

type ContactMethod string

const (
	ContactPhone ContactMethod = "phone"
	ContactEmail ContactMethod = "email"
	ContactBoth  ContactMethod = "both"
)

type ContactInfo struct {
	Phone            *string       `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email            *string       `json:"email,omitempty" validate:"omitempty,email"`
	PreferredContact ContactMethod `json:"preferred_contact" validate:"omitempty,oneof=phone email both"`
}

func (c ContactInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ContactInfo) Scan(src interface{}) error {
	return scanJSON(src, c)
}

type RequestImage struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
}

type RequestImages []RequestImage

func (imgs RequestImages) Value() (driver.Value, error) {
	if imgs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(imgs)
}

func (imgs *RequestImages) Scan(src interface{}) error {
	return scanJSON(src, imgs)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported json column type")
	}
}

type ServiceRequest struct {
	ID          uuid.UUID     `json:"id" db:"request_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Type        RequestType   `json:"type" db:"type"`
	Priority    Priority      `json:"priority" db:"priority"`
	Status      RequestStatus `json:"status" db:"status"`
	Location    string        `json:"location" db:"location"`
	CreatedBy   uuid.UUID     `json:"created_by" db:"created_by"`
	AssignedTo  *uuid.UUID    `json:"assigned_to" db:"assigned_to"`
	Images      RequestImages `json:"images" db:"images"`
	ContactInfo ContactInfo   `json:"contact_info" db:"contact_info"`
	AcceptedAt  *time.Time    `json:"accepted_at" db:"accepted_at"`
	CompletedAt *time.Time    `json:"completed_at" db:"completed_at"`
	IsActive    bool          `json:"-" db:"is_active"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

var (
	ErrNotAvailable       = Conflict("Request is not available for acceptance")
	ErrSelfAccept         = Forbidden("Cannot accept your own request")
	ErrNotEditable        = Conflict("Only open requests can be edited")
	ErrInvalidTarget      = Validation("Status must be one of in_progress, completed")
	ErrBackwardTransition = Conflict("Request status can only move forward")
)

func (r *ServiceRequest) IsAssignee(userID uuid.UUID) bool {
	return r.AssignedTo != nil && *r.AssignedTo == userID
}

// Accept moves an open request to accepted and assigns it to volunteerID.
func (r *ServiceRequest) Accept(volunteerID uuid.UUID, now time.Time) error {
	if r.CreatedBy == volunteerID {
		return ErrSelfAccept
	}
	if r.Status != StatusOpen || !r.IsActive {
		return ErrNotAvailable
	}

	r.Status = StatusAccepted
	r.AssignedTo = &volunteerID
	r.AcceptedAt = &now
	return nil
}

// CanTransitionTo reports whether target is a legal forward move from the
// current status. Open requests can only leave through Accept.
func (r *ServiceRequest) CanTransitionTo(target RequestStatus) bool {
	if target != StatusInProgress && target != StatusCompleted {
		return false
	}
	if r.Status == StatusOpen {
		return false
	}
	return target.Rank() > r.Status.Rank()
}

func (r *ServiceRequest) Advance(target RequestStatus, now time.Time) error {
	if target != StatusInProgress && target != StatusCompleted {
		return ErrInvalidTarget
	}
	if !r.CanTransitionTo(target) {
		return ErrBackwardTransition
	}

	r.Status = target
	if target == StatusCompleted {
		r.CompletedAt = &now
	}
	return nil
}

// ApplyEdit overwrites the editable fields of an open request. Images are
// handled by the caller since they involve external storage.
func (r *ServiceRequest) ApplyEdit(input UpdateRequestInput) error {
	if r.Status != StatusOpen {
		return ErrNotEditable
	}

	if input.Title != nil {
		r.Title = *input.Title
	}
	if input.Description != nil {
		r.Description = *input.Description
	}
	if input.Type != nil {
		r.Type = *input.Type
	}
	if input.Priority != nil {
		r.Priority = *input.Priority
	}
	if input.Location != nil {
		r.Location = *input.Location
	}
	if input.ContactInfo != nil {
		r.ContactInfo = *input.ContactInfo
	}
	return nil
}

type CreateRequestInput struct {
	Title       string      `json:"title" validate:"required,max=100"`
	Description string      `json:"description" validate:"required,max=1000"`
	Type        RequestType `json:"type" validate:"required,oneof=blood garbage other"`
	Priority    Priority    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Location    string      `json:"location" validate:"required,max=200"`
	ContactInfo ContactInfo `json:"contact_info"`
	Images      []string    `json:"images" validate:"max=5"`
}

func (in *CreateRequestInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.ContactInfo.PreferredContact == "" {
		in.ContactInfo.PreferredContact = ContactBoth
	}
}

type UpdateRequestInput struct {
	Title          *string      `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description    *string      `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
	Type           *RequestType `json:"type,omitempty" validate:"omitempty,oneof=blood garbage other"`
	Priority       *Priority    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Location       *string      `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	ContactInfo    *ContactInfo `json:"contact_info,omitempty"`
	ExistingImages []string     `json:"existing_images,omitempty"`
	NewImages      []string     `json:"new_images,omitempty" validate:"max=5"`
}

func (in *UpdateRequestInput) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(in.Title)
	trim(in.Description)
	trim(in.Location)
}

// RequestFilter is the read-path predicate produced from the caller's role.
// Nil fields do not constrain the query. VolunteerID selects the union of
// the open pool (unassigned, not created by the volunteer) and the
// volunteer's own assignments.
type RequestFilter struct {
	CreatedBy   *uuid.UUID
	VolunteerID *uuid.UUID
	Status      *RequestStatus
	Type        *RequestType
}

type RequestStats struct {
	Open       int64 `json:"open" db:"open"`
	Accepted   int64 `json:"accepted" db:"accepted"`
	InProgress int64 `json:"in_progress" db:"in_progress"`
	Completed  int64 `json:"completed" db:"completed"`
	Total      int64 `json:"total" db:"total"`
}
