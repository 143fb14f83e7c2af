package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/auth"
)

type authFixture struct {
	svc           AuthService
	users         *fakeUsers
	refreshTokens *fakeRefreshTokens
	verifications *fakeOneTimeTokens
	resets        *fakeOneTimeTokens
	mailer        *fakeMailer
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:         newFakeUsers(),
		refreshTokens: newFakeRefreshTokens(),
		verifications: &fakeOneTimeTokens{notFound: apperrors.ErrInvalidEmailToken},
		resets:        &fakeOneTimeTokens{notFound: apperrors.ErrInvalidPasswordResetToken},
		mailer:        &fakeMailer{},
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "edulearn-test",
	})
	f.svc = NewAuthService(f.users, f.refreshTokens, f.verifications, f.resets, jwtService, f.mailer,
		TokenLifetimes{Verification: 24 * time.Hour, PasswordReset: time.Hour}, zerolog.Nop())
	return f
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:       "Ada@Example.com",
		Password:    "secret123",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Phone:       "010-1234-5678",
		RoleType:    models.RoleStudent,
		TermsAgreed: true,
	}
}

// registerVerified signs a user up and follows the emailed verification link.
func (f *authFixture) registerVerified(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, f.mailer.last().token)
	require.NoError(t, err)
	return resp.UserID
}

func TestRegister_CreatesInactiveUserAndMailsToken(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	user, err := f.users.GetByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsActive)
	assert.False(t, user.EmailVerified)
	assert.NotNil(t, user.TermsAgreedAt)
	assert.NotEqual(t, "secret123", user.Password)

	mail := f.mailer.last()
	assert.Equal(t, "verify", mail.kind)
	assert.Len(t, mail.token, 64)
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.RegisterRequest)
		want   error
	}{
		{"terms not agreed", func(r *dto.RegisterRequest) { r.TermsAgreed = false }, apperrors.ErrTermsNotAccepted},
		{"manager role", func(r *dto.RegisterRequest) { r.RoleType = models.RoleManager }, apperrors.ErrValidationFailed},
		{"password without digit", func(r *dto.RegisterRequest) { r.Password = "onlyletters" }, apperrors.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			req := registerRequest()
			tt.mutate(req)

			_, err := f.svc.Register(context.Background(), req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), registerRequest())
	assert.True(t, errors.Is(err, apperrors.ErrEmailAlreadyExists))
}

func TestVerifyEmail_TokenIsSingleUse(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	token := f.mailer.last().token

	verified, err := f.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Equal(t, "welcome", f.mailer.last().kind)

	user, err := f.users.GetByID(ctx, resp.UserID)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.True(t, user.EmailVerified)

	_, err = f.svc.VerifyEmail(ctx, token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidEmailToken))
}

func TestLogin_ChecksPasswordThenVerificationThenStatus(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "wrong-pass1"}, ClientInfo{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "secret123"}, ClientInfo{})
	assert.True(t, errors.Is(err, apperrors.ErrEmailNotVerified))

	_, err = f.svc.VerifyEmail(ctx, f.mailer.last().token)
	require.NoError(t, err)
	require.NoError(t, f.users.mutate(resp.UserID, func(u *models.User) { u.IsActive = false }))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "secret123"}, ClientInfo{})
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, ClientInfo{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestLogin_IssuesTokensAndRecordsLogin(t *testing.T) {
	f := newAuthFixture()
	userID := f.registerVerified(t)

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "ADA@example.com", Password: "secret123"},
		ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, userID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)
	assert.Equal(t, 1, f.refreshTokens.activeFor(userID))
}

func TestRefreshToken_RotatesAndRevokesOld(t *testing.T) {
	f := newAuthFixture()
	f.registerVerified(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "secret123"}, ClientInfo{})
	require.NoError(t, err)
	old := login.Token.RefreshToken

	rotated, err := f.svc.RefreshToken(ctx, old, ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, old, rotated.RefreshToken)

	_, err = f.svc.RefreshToken(ctx, old, ClientInfo{})
	assert.True(t, errors.Is(err, apperrors.ErrTokenRevoked))

	require.NoError(t, f.svc.Logout(ctx, rotated.RefreshToken))
	_, err = f.svc.RefreshToken(ctx, rotated.RefreshToken, ClientInfo{})
	assert.True(t, errors.Is(err, apperrors.ErrTokenRevoked))
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture()

	err := f.svc.ForgotPassword(context.Background(), "ghost@example.com")

	assert.NoError(t, err)
	assert.Empty(t, f.mailer.sent)
}

func TestResetPassword_ChangesPasswordAndRevokesSessions(t *testing.T) {
	f := newAuthFixture()
	userID := f.registerVerified(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "secret123"}, ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	mail := f.mailer.last()
	require.Equal(t, "reset", mail.kind)

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: mail.token, NewPassword: "newsecret456"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.refreshTokens.activeFor(userID))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "newsecret456"}, ClientInfo{})
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: mail.token, NewPassword: "another789x"})
	assert.True(t, errors.Is(err, apperrors.ErrPasswordResetTokenUsed))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newAuthFixture()
	userID := f.registerVerified(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	f.resets.latestFor(userID).ExpiresAt = time.Now().Add(-time.Minute)

	err := f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: f.mailer.last().token, NewPassword: "newsecret456"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidPasswordResetToken))
}

func TestFindEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, err := f.svc.FindEmail(ctx, &dto.FindEmailRequest{FirstName: "Ada", LastName: "Lovelace", Phone: "010-1234-5678"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ad*@example.com"}, resp.Emails)

	_, err = f.svc.FindEmail(ctx, &dto.FindEmailRequest{FirstName: "Ada", LastName: "Byron", Phone: "010-1234-5678"})
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "jo******@mail.com", MaskEmail("john.doe@mail.com"))
	assert.Equal(t, "a*@mail.com", MaskEmail("ab@mail.com"))
	assert.Equal(t, "a@mail.com", MaskEmail("a@mail.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}

func TestUserService_DeleteAccountRequiresPassword(t *testing.T) {
	f := newAuthFixture()
	userID := f.registerVerified(t)
	ctx := context.Background()
	users := NewUserService(f.users, f.refreshTokens, zerolog.Nop())

	err := users.DeleteAccount(ctx, userID, &dto.DeleteAccountRequest{Password: "wrong"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	require.NoError(t, users.DeleteAccount(ctx, userID, &dto.DeleteAccountRequest{Password: "secret123"}))
	_, err = users.GetProfile(ctx, userID)
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	userID := f.registerVerified(t)
	ctx := context.Background()
	users := NewUserService(f.users, f.refreshTokens, zerolog.Nop())

	err := users.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "fresh1234"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	require.NoError(t, users.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "fresh1234"}))
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "fresh1234"}, ClientInfo{})
	assert.NoError(t, err)
}
