package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"connectaid/internal/config"
	"connectaid/internal/domain"
	"connectaid/internal/repository"
	"connectaid/internal/service/email"
)

const (
	resetTokenTTL        = time.Hour
	verificationTokenTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials       = domain.Unauthorized("Invalid email or password")
	ErrEmailExists              = domain.Conflict("Email already registered")
	ErrInvalidToken             = domain.Unauthorized("Invalid or expired token")
	ErrInvalidResetToken        = domain.Validation("Invalid or expired reset token")
	ErrInvalidVerificationToken = domain.Validation("Invalid or expired verification token")
)

type Service interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input domain.LoginInput, meta *domain.RequestMeta) (*domain.User, *domain.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string, meta *domain.RequestMeta) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(token string) (*Claims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerificationEmail(ctx context.Context, email string) error
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

type service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	emailService email.Service
	cfg          *config.Config
	log          *zap.Logger
}

func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, emailService email.Service, cfg *config.Config, log *zap.Logger) Service {
	return &service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		emailService: emailService,
		cfg:          cfg,
		log:          log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCitizen
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	user := &domain.User{
		ID:              uuid.New(),
		Email:           input.Email,
		PasswordHash:    string(hashedPassword),
		FullName:        input.FullName,
		Phone:           input.Phone,
		Address:         input.Address,
		Role:            role,
		IsApproved:      role != domain.RoleVolunteer,
		IsActive:        true,
		IsEmailVerified: false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, domain.Internal(err)
	}

	verificationToken, err := randomToken()
	if err != nil {
		return nil, domain.Internal(err)
	}
	if err := s.userRepo.SetEmailVerificationToken(ctx, user.ID, verificationToken, time.Now()); err != nil {
		return nil, domain.Internal(err)
	}

	s.sendAsync("verification", user.Email, func(ctx context.Context) error {
		return s.emailService.SendEmailVerification(ctx, user.Email, user.FullName, verificationToken)
	})

	if role == domain.RoleVolunteer {
		s.notifyAdminsOfVolunteer(user)
	}

	return user, nil
}

// notifyAdminsOfVolunteer emails every active admin about a pending
// volunteer application.
func (s *service) notifyAdminsOfVolunteer(volunteer *domain.User) {
	go func() {
		ctx := context.Background()
		admins, err := s.userRepo.ListAdmins(ctx)
		if err != nil {
			s.log.Warn("failed to load admins for volunteer notice", zap.Error(err))
			return
		}
		for _, admin := range admins {
			if err := s.emailService.SendVolunteerApplicationEmail(ctx, admin.Email, admin.FullName, volunteer.FullName, volunteer.Email); err != nil {
				s.log.Warn("failed to send volunteer application email",
					zap.String("to", admin.Email), zap.Error(err))
			}
		}
	}()
}

func (s *service) Login(ctx context.Context, input domain.LoginInput, meta *domain.RequestMeta) (*domain.User, *domain.TokenPair, error) {
	input.Email = normalizeEmail(input.Email)
	if err := domain.Validate(input); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, domain.Internal(err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := user.LoginEligibility(); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string, meta *domain.RequestMeta) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, domain.Internal(err)
	}
	if session == nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidToken
		}
		return nil, domain.Internal(err)
	}

	if err := user.LoginEligibility(); err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, user, meta)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return domain.Internal(err)
	}
	if session == nil {
		return nil
	}

	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrStaleState) {
		return domain.Internal(err)
	}
	return nil
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return user, nil
}

func (s *service) generateTokenPair(ctx context.Context, user *domain.User, meta *domain.RequestMeta) (*domain.TokenPair, error) {
	now := time.Now()
	accessClaims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID.String(),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, domain.Internal(err)
	}

	refreshTokenRaw, err := randomToken()
	if err != nil {
		return nil, domain.Internal(err)
	}

	session := &repository.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: now.Add(s.cfg.JWTRefreshExpiry),
	}
	if meta != nil {
		if meta.UserAgent != "" {
			ua := meta.UserAgent
			session.UserAgent = &ua
		}
		if meta.IPAddress != "" {
			ip := meta.IPAddress
			session.IPAddress = &ip
		}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, domain.Internal(err)
	}

	return &domain.TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
	}, nil
}

// RequestPasswordReset never reveals whether the address is registered.
func (s *service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		return domain.Internal(err)
	}
	if user == nil || !user.IsActive {
		return nil
	}

	resetToken, err := randomToken()
	if err != nil {
		return domain.Internal(err)
	}

	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return domain.Internal(err)
	}

	s.sendAsync("password_reset", user.Email, func(ctx context.Context) error {
		return s.emailService.SendPasswordResetEmail(ctx, user.Email, user.FullName, resetToken)
	})

	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 || len(newPassword) > 72 {
		return domain.Validation("password must be between 8 and 72 characters")
	}
	if token == "" {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.GetUserByResetToken(ctx, token)
	if err != nil {
		return domain.Internal(err)
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	if user.PasswordResetExpiresAt != nil && time.Now().After(*user.PasswordResetExpiresAt) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.Internal(err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return domain.Internal(err)
	}

	if err := s.userRepo.ClearPasswordResetToken(ctx, user.ID); err != nil {
		return domain.Internal(err)
	}

	if err := s.sessionRepo.RevokeAllForUser(ctx, user.ID); err != nil {
		return domain.Internal(err)
	}

	return nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidVerificationToken
	}

	user, err := s.userRepo.GetUserByEmailVerificationToken(ctx, token)
	if err != nil {
		return domain.Internal(err)
	}
	if user == nil {
		return ErrInvalidVerificationToken
	}

	if user.EmailVerificationSentAt != nil && time.Now().After(user.EmailVerificationSentAt.Add(verificationTokenTTL)) {
		return ErrInvalidVerificationToken
	}

	if err := s.userRepo.VerifyEmail(ctx, user.ID); err != nil {
		return domain.Internal(err)
	}

	s.sendAsync("registration", user.Email, func(ctx context.Context) error {
		return s.emailService.SendRegistrationEmail(ctx, user.Email, user.FullName)
	})

	return nil
}

func (s *service) ResendVerificationEmail(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		return domain.Internal(err)
	}
	if user == nil || user.IsEmailVerified {
		return nil
	}

	verificationToken, err := randomToken()
	if err != nil {
		return domain.Internal(err)
	}

	if err := s.userRepo.SetEmailVerificationToken(ctx, user.ID, verificationToken, time.Now()); err != nil {
		return domain.Internal(err)
	}

	s.sendAsync("verification", user.Email, func(ctx context.Context) error {
		return s.emailService.SendEmailVerification(ctx, user.Email, user.FullName, verificationToken)
	})

	return nil
}

func (s *service) sendAsync(kind, to string, send func(ctx context.Context) error) {
	go func() {
		if err := send(context.Background()); err != nil {
			s.log.Warn("failed to send email", zap.String("kind", kind), zap.String("to", to), zap.Error(err))
		}
	}()
}

func randomToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
