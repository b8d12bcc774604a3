package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendRegistrationEmail(ctx context.Context, toEmail, fullName string) error {
	args := m.Called(ctx, toEmail, fullName)
	return args.Error(0)
}

func (m *EmailService) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	args := m.Called(ctx, toEmail, fullName, verificationToken)
	return args.Error(0)
}

func (m *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	args := m.Called(ctx, toEmail, fullName, resetToken)
	return args.Error(0)
}

func (m *EmailService) SendVolunteerApplicationEmail(ctx context.Context, toEmail, adminName, volunteerName, volunteerEmail string) error {
	args := m.Called(ctx, toEmail, adminName, volunteerName, volunteerEmail)
	return args.Error(0)
}

func (m *EmailService) SendVolunteerApprovedEmail(ctx context.Context, toEmail, fullName string) error {
	args := m.Called(ctx, toEmail, fullName)
	return args.Error(0)
}

func (m *EmailService) SendRequestAcceptedEmail(ctx context.Context, toEmail, citizenName, volunteerName, requestTitle string) error {
	args := m.Called(ctx, toEmail, citizenName, volunteerName, requestTitle)
	return args.Error(0)
}
