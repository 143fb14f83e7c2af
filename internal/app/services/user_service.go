package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/auth"
)

// UserService manages the signed-in user's own account
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID int64, req *dto.DeleteAccountRequest) error
}

type userServiceImpl struct {
	users         UserStore
	refreshTokens RefreshTokenStore
	logger        zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, refreshTokens RefreshTokenStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{users: users, refreshTokens: refreshTokens, logger: logger}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	err := s.users.UpdateProfile(ctx, userID,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), strings.TrimSpace(req.Phone))
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// ChangePassword requires the current password and signs out other sessions
func (s *userServiceImpl) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.refreshTokens.RevokeAllUserTokens(ctx, userID)
}

// DeleteAccount soft-deletes the account after re-checking the password
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID int64, req *dto.DeleteAccountRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return apperrors.ErrInvalidCredentials
	}

	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return err
	}
	if err := s.refreshTokens.RevokeAllUserTokens(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Account deleted")
	return nil
}
