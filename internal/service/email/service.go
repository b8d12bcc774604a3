package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"

	"connectaid/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendRegistrationEmail(ctx context.Context, toEmail, fullName string) error
	SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error
	SendVolunteerApplicationEmail(ctx context.Context, toEmail, adminName, volunteerName, volunteerEmail string) error
	SendVolunteerApprovedEmail(ctx context.Context, toEmail, fullName string) error
	SendRequestAcceptedEmail(ctx context.Context, toEmail, citizenName, volunteerName, requestTitle string) error
}

// Sender is the part of the Resend client used to deliver mail.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	sender Sender
	config *config.Config
	log    *zap.Logger
}

func NewService(cfg *config.Config, log *zap.Logger) Service {
	var sender Sender
	if cfg.ResendAPIKey != "" {
		sender = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return NewServiceWithSender(sender, cfg, log)
}

// NewServiceWithSender builds the service around an explicit sender. A nil
// sender renders templates but drops the message.
func NewServiceWithSender(sender Sender, cfg *config.Config, log *zap.Logger) Service {
	return &service{sender: sender, config: cfg, log: log}
}

func render(templateName string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout.html", data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) sendEmail(toEmail, subject, templateName string, data interface{}) error {
	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	if s.sender == nil {
		s.log.Debug("email delivery disabled, dropping message",
			zap.String("to", toEmail), zap.String("template", templateName))
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("ConnectAid <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body,
		Subject: subject,
	}

	_, err = s.sender.Send(params)
	return err
}

type message struct {
	Title string
	Name  string
	Link  string
	Extra map[string]string
}

func (s *service) link(path string) string {
	return fmt.Sprintf("https://%s%s", s.config.Domain, path)
}

func (s *service) SendRegistrationEmail(ctx context.Context, toEmail, fullName string) error {
	data := message{
		Title: "Welcome to ConnectAid",
		Name:  fullName,
		Link:  s.link("/login"),
	}
	return s.sendEmail(toEmail, "Welcome to ConnectAid!", "registration.html", data)
}

func (s *service) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	data := message{
		Title: "Verify your email",
		Name:  fullName,
		Link:  s.link("/verify-email?token=" + verificationToken),
	}
	return s.sendEmail(toEmail, "Verify your email - ConnectAid", "verification.html", data)
}

func (s *service) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	data := message{
		Title: "Reset your password",
		Name:  fullName,
		Link:  s.link("/reset-password?token=" + resetToken),
	}
	return s.sendEmail(toEmail, "Password reset request - ConnectAid", "reset_password.html", data)
}

func (s *service) SendVolunteerApplicationEmail(ctx context.Context, toEmail, adminName, volunteerName, volunteerEmail string) error {
	data := message{
		Title: "New volunteer application",
		Name:  adminName,
		Link:  s.link("/admin/volunteers"),
		Extra: map[string]string{"VolunteerName": volunteerName, "VolunteerEmail": volunteerEmail},
	}
	return s.sendEmail(toEmail, "New volunteer awaiting approval - ConnectAid", "volunteer_application.html", data)
}

func (s *service) SendVolunteerApprovedEmail(ctx context.Context, toEmail, fullName string) error {
	data := message{
		Title: "Your volunteer account is approved",
		Name:  fullName,
		Link:  s.link("/login"),
	}
	return s.sendEmail(toEmail, "You're approved - ConnectAid", "volunteer_approved.html", data)
}

func (s *service) SendRequestAcceptedEmail(ctx context.Context, toEmail, citizenName, volunteerName, requestTitle string) error {
	data := message{
		Title: "Your request was accepted",
		Name:  citizenName,
		Link:  s.link("/requests"),
		Extra: map[string]string{"VolunteerName": volunteerName, "RequestTitle": requestTitle},
	}
	return s.sendEmail(toEmail, fmt.Sprintf("%s accepted your request - ConnectAid", volunteerName), "request_accepted.html", data)
}
