package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/auth"
	"github.com/yigit/edulearn/internal/pkg/email"
)

// AuthService handles sign-up, sign-in and account recovery
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, token string) (*dto.VerifyEmailResponse, error)
	ResendVerification(ctx context.Context, emailAddr string) error
	Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string, client ClientInfo) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	FindEmail(ctx context.Context, req *dto.FindEmailRequest) (*dto.FindEmailResponse, error)
}

// ClientInfo identifies the device a refresh token is issued to
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// TokenLifetimes configures one-time link expiry
type TokenLifetimes struct {
	Verification  time.Duration
	PasswordReset time.Duration
}

type authServiceImpl struct {
	users         UserStore
	refreshTokens RefreshTokenStore
	verifications OneTimeTokenStore
	resets        OneTimeTokenStore
	jwtService    *auth.JWTService
	mailer        email.EmailService
	lifetimes     TokenLifetimes
	now           func() time.Time
	logger        zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	refreshTokens RefreshTokenStore,
	verifications OneTimeTokenStore,
	resets OneTimeTokenStore,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	lifetimes TokenLifetimes,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:         users,
		refreshTokens: refreshTokens,
		verifications: verifications,
		resets:        resets,
		jwtService:    jwtService,
		mailer:        mailer,
		lifetimes:     lifetimes,
		now:           time.Now,
		logger:        logger,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Register creates an inactive, unverified account and mails a verification link
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if !req.TermsAgreed {
		return nil, apperrors.ErrTermsNotAccepted
	}
	if !req.RoleType.SelfRegistrable() {
		return nil, apperrors.NewValidationError("role must be STUDENT or INSTRUCTOR")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	addr := normalizeEmail(req.Email)
	exists, err := s.users.EmailExists(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	agreedAt := s.now()
	user := &models.User{
		Email:         addr,
		Password:      hash,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Phone:         strings.TrimSpace(req.Phone),
		RoleType:      req.RoleType,
		IsActive:      false,
		EmailVerified: false,
		TermsAgreedAt: &agreedAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send verification email")
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.RoleType)).Msg("User registered")
	return &dto.RegisterResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Message: "Registration complete. Check your inbox to verify your email address.",
	}, nil
}

func (s *authServiceImpl) sendVerification(ctx context.Context, user *models.User) error {
	value, err := email.GenerateToken()
	if err != nil {
		return err
	}
	token := &models.OneTimeToken{
		Token:     value,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.lifetimes.Verification),
	}
	if err := s.verifications.Create(ctx, token); err != nil {
		return err
	}
	return s.mailer.SendVerificationEmail(user.Email, user.FullName(), value)
}

// VerifyEmail consumes a verification token and activates the account
func (s *authServiceImpl) VerifyEmail(ctx context.Context, value string) (*dto.VerifyEmailResponse, error) {
	if strings.TrimSpace(value) == "" {
		return nil, apperrors.ErrInvalidEmailToken
	}

	token, err := s.verifications.GetByToken(ctx, value)
	if err != nil {
		return nil, err
	}
	if !token.Usable(s.now()) {
		return nil, apperrors.ErrInvalidEmailToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return nil, apperrors.ErrEmailAlreadyVerified
	}

	if err := s.verifications.MarkUsed(ctx, token.ID); err != nil {
		return nil, err
	}
	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	if err := s.mailer.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send welcome email")
	}

	return &dto.VerifyEmailResponse{Email: user.Email, Verified: true}, nil
}

// ResendVerification replaces any outstanding verification link
func (s *authServiceImpl) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}
	if err := s.verifications.InvalidateForUser(ctx, user.ID); err != nil {
		return err
	}
	return s.sendVerification(ctx, user)
}

// Login checks credentials and account state, then issues a token pair
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}
	now := s.now()
	user.LastLoginAt = &now

	token, err := s.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *token, User: dto.NewUserResponse(user)}, nil
}

// RefreshToken rotates a refresh token; the presented one is revoked
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string, client ClientInfo) (*dto.TokenResponse, error) {
	stored, err := s.refreshTokens.GetByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.refreshTokens.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.issueTokens(ctx, user, client)
}

// Logout revokes a refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokens.RevokeToken(ctx, refreshToken)
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	if err := s.resets.InvalidateForUser(ctx, user.ID); err != nil {
		return err
	}
	value, err := email.GenerateToken()
	if err != nil {
		return err
	}
	token := &models.OneTimeToken{
		Token:     value,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.lifetimes.PasswordReset),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FullName(), value); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
	}
	return nil
}

// ResetPassword sets a new password and signs the user out everywhere
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	token, err := s.resets.GetByToken(ctx, req.Token)
	if err != nil {
		return err
	}
	if token.UsedAt != nil {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if !token.Usable(s.now()) {
		return apperrors.ErrInvalidPasswordResetToken
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return err
	}
	if err := s.refreshTokens.RevokeAllUserTokens(ctx, token.UserID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", token.UserID).Msg("Password reset")
	return nil
}

// FindEmail returns the masked addresses of accounts matching name and phone
func (s *authServiceImpl) FindEmail(ctx context.Context, req *dto.FindEmailRequest) (*dto.FindEmailResponse, error) {
	users, err := s.users.FindByNameAndPhone(ctx,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), strings.TrimSpace(req.Phone))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	resp := &dto.FindEmailResponse{Emails: make([]string, 0, len(users))}
	for _, u := range users {
		resp.Emails = append(resp.Emails, MaskEmail(u.Email))
	}
	return resp, nil
}

// MaskEmail keeps the first two characters of the local part.
func MaskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return addr
	}
	local, domain := addr[:at], addr[at:]
	keep := 2
	if len(local) <= 2 {
		keep = 1
	}
	return local[:keep] + strings.Repeat("*", len(local)-keep) + domain
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User, client ClientInfo) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.refreshTokens.CreateToken(ctx, &models.RefreshToken{
		Token:     pair.RefreshToken,
		UserID:    user.ID,
		ExpiresAt: pair.RefreshExpiresAt,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
