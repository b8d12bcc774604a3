package jobs

import (
	"context"

	"go.uber.org/zap"
)

type SessionStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type ResetTokenStore interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// SessionCleanupJob drops refresh sessions that are expired or revoked.
type SessionCleanupJob struct {
	sessions SessionStore
	log      *zap.Logger
}

func NewSessionCleanupJob(sessions SessionStore, log *zap.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, log: log}
}

func (j *SessionCleanupJob) Name() string       { return "session-cleanup" }
func (j *SessionCleanupJob) Schedule() Schedule { return Hourly }

func (j *SessionCleanupJob) Execute(ctx context.Context) error {
	n, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	j.log.Info("expired sessions removed", zap.Int64("count", n))
	return nil
}

// ResetTokenCleanupJob clears password reset tokens past their expiry.
type ResetTokenCleanupJob struct {
	users ResetTokenStore
	log   *zap.Logger
}

func NewResetTokenCleanupJob(users ResetTokenStore, log *zap.Logger) *ResetTokenCleanupJob {
	return &ResetTokenCleanupJob{users: users, log: log}
}

func (j *ResetTokenCleanupJob) Name() string       { return "reset-token-cleanup" }
func (j *ResetTokenCleanupJob) Schedule() Schedule { return Daily }

func (j *ResetTokenCleanupJob) Execute(ctx context.Context) error {
	n, err := j.users.ClearExpiredResetTokens(ctx)
	if err != nil {
		return err
	}
	j.log.Info("expired reset tokens cleared", zap.Int64("count", n))
	return nil
}
