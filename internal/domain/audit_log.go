package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"audit_id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	UserName   *string         `json:"user_name,omitempty" db:"user_name"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	AuditEntityRequest  = "REQUEST"
	AuditEntityFeedback = "FEEDBACK"
	AuditEntityUser     = "USER"
)

const (
	AuditCreateRequest    = "CREATE_REQUEST"
	AuditAcceptRequest    = "ACCEPT_REQUEST"
	AuditUpdateStatus     = "UPDATE_REQUEST_STATUS"
	AuditEditRequest      = "EDIT_REQUEST"
	AuditDeleteRequest    = "DELETE_REQUEST"
	AuditCreateFeedback   = "CREATE_FEEDBACK"
	AuditDeleteFeedback   = "DELETE_FEEDBACK"
	AuditApproveVolunteer = "APPROVE_VOLUNTEER"
	AuditRejectVolunteer  = "REJECT_VOLUNTEER"
	AuditUpdateUser       = "UPDATE_USER"
)

// RequestMeta carries caller details recorded alongside audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type CreateAuditLogInput struct {
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	OldValue   interface{}
	NewValue   interface{}
	Meta       *RequestMeta
}
