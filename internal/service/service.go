package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"connectaid/internal/config"
	"connectaid/internal/repository"
	"connectaid/internal/service/admin"
	"connectaid/internal/service/audit"
	"connectaid/internal/service/auth"
	"connectaid/internal/service/email"
	"connectaid/internal/service/feedback"
	"connectaid/internal/service/media"
	"connectaid/internal/service/ratelimit"
	"connectaid/internal/service/request"
	"connectaid/internal/service/stats"
	"connectaid/internal/service/user"
)

type Services struct {
	Auth      auth.Service
	User      user.Service
	Admin     admin.Service
	Request   request.Service
	Feedback  feedback.Service
	Media     media.Service
	Email     email.Service
	Audit     audit.Service
	Stats     stats.Service
	RateLimit ratelimit.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, cfg *config.Config, log *zap.Logger) *Services {
	emailService := email.NewService(cfg, log.Named("email"))
	auditService := audit.NewService(repos.AuditLog, log.Named("audit"))
	mediaService := media.NewMinIOService(minioClient, cfg)
	statsService := stats.NewService(repos.Request, redis, log.Named("stats"))

	authService := auth.NewService(repos.User, repos.Session, emailService, cfg, log.Named("auth"))
	userService := user.NewService(repos.User, log.Named("user"))
	adminService := admin.NewService(repos.User, auditService, emailService, log.Named("admin"))

	requestService := request.NewService(
		repos.Request,
		repos.User,
		mediaService,
		emailService,
		auditService,
		statsService,
		log.Named("request"),
	)
	feedbackService := feedback.NewService(repos.Feedback, repos.Request, auditService, log.Named("feedback"))

	return &Services{
		Auth:      authService,
		User:      userService,
		Admin:     adminService,
		Request:   requestService,
		Feedback:  feedbackService,
		Media:     mediaService,
		Email:     emailService,
		Audit:     auditService,
		Stats:     statsService,
		RateLimit: ratelimit.NewService(redis, cfg.AuthRateLimit, cfg.AuthRateWindow),
	}
}
