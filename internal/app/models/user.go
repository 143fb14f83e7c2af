package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID            int64      `json:"id" db:"id" example:"1"`
	Email         string     `json:"email" db:"email" example:"student@example.com"`
	Password      string     `json:"-" db:"password"`
	FirstName     string     `json:"firstName" db:"first_name" example:"Ada"`
	LastName      string     `json:"lastName" db:"last_name" example:"Lovelace"`
	Phone         string     `json:"phone" db:"phone" example:"010-1234-5678"`
	RoleType      RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`
	IsActive      bool       `json:"isActive" db:"is_active" example:"true"`
	EmailVerified bool       `json:"emailVerified" db:"email_verified" example:"true"`
	TermsAgreedAt *time.Time `json:"termsAgreedAt,omitempty" db:"terms_agreed_at"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	DeletedAt     *time.Time `json:"-" db:"deleted_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshToken is a persisted opaque refresh token.
type RefreshToken struct {
	ID        int64     `db:"id"`
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	IsRevoked bool      `db:"is_revoked"`
	IPAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
}

// OneTimeToken backs email verification and password reset links.
type OneTimeToken struct {
	ID        int64      `db:"id"`
	Token     string     `db:"token"`
	UserID    int64      `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Usable reports whether the token is unused and unexpired at now.
func (t *OneTimeToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
