package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User     UserRepository
	Request  RequestRepository
	Feedback FeedbackRepository
	AuditLog AuditLogRepository
	Session  SessionRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Request:  NewRequestRepository(db),
		Feedback: NewFeedbackRepository(db),
		AuditLog: NewAuditLogRepository(db),
		Session:  NewSessionRepository(db),
	}
}
