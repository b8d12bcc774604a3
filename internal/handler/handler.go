package handler

import (
	"connectaid/internal/config"
	"connectaid/internal/service"
)

type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Request  *RequestHandler
	Feedback *FeedbackHandler
	Admin    *AdminHandler
	Audit    *AuditHandler
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(services.Auth, newSessionCookie(cfg)),
		User:     NewUserHandler(services.User),
		Request:  NewRequestHandler(services.Request),
		Feedback: NewFeedbackHandler(services.Feedback),
		Admin:    NewAdminHandler(services.Admin, services.Stats),
		Audit:    NewAuditHandler(services.Audit),
	}
}
