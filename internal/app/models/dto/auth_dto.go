package dto

import "github.com/yigit/edulearn/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest carries a refresh token for rotation or logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterRequest represents a self-service signup
type RegisterRequest struct {
	Email       string          `json:"email" binding:"required,email,max=255"`
	Password    string          `json:"password" binding:"required,min=8,max=72"`
	FirstName   string          `json:"firstName" binding:"required,max=100"`
	LastName    string          `json:"lastName" binding:"required,max=100"`
	Phone       string          `json:"phone" binding:"required,max=30,phone"`
	RoleType    models.RoleType `json:"roleType" binding:"required,oneof=STUDENT INSTRUCTOR" enums:"STUDENT,INSTRUCTOR"`
	TermsAgreed bool            `json:"termsAgreed"`
}

// RegisterResponse is returned once the verification mail is queued
type RegisterResponse struct {
	UserID  int64  `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// VerifyEmailResponse reports a completed verification
type VerifyEmailResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// EmailRequest names an account by email (resend verification, forgot password)
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// FindEmailRequest looks up an account by identity fields
type FindEmailRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

// FindEmailResponse lists masked emails of matching accounts
type FindEmailResponse struct {
	Emails []string `json:"emails"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}
