package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleType = "roleType"
)

// EmailVerifier reports whether a user has confirmed their email
type EmailVerifier interface {
	IsEmailVerified(ctx context.Context, id int64) (bool, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      EmailVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, users EmailVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	detail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

// tokenFrom reads the access token from the Authorization header. Browsers
// cannot set headers on websocket upgrades, so a "token" query value is
// accepted as well.
func tokenFrom(c *gin.Context) (string, error) {
	header := strings.Trim(c.GetHeader("Authorization"), "\"' ")
	if header == "" {
		if q := c.Query("token"); q != "" {
			return q, nil
		}
		return "", nil
	}
	return auth.ExtractBearerToken(header)
}

func (m *AuthMiddleware) setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRoleType, claims.RoleType)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFrom(c)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Authentication required", "Invalid token format")
			return
		}
		if token == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(token)
		if err != nil {
			code, details := dto.ErrorCodeInvalidToken, "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				code, details = dto.ErrorCodeExpiredToken, "Token has expired"
			}
			abortUnauthorized(c, code, "Authentication failed", details)
			return
		}

		m.setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := tokenFrom(c); err == nil && token != "" {
			if claims, err := m.jwtService.ValidateAndExtractClaims(token); err == nil {
				m.setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// EmailVerificationRequired middleware to check if user's email is verified
func (m *AuthMiddleware) EmailVerificationRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "User information not found")
			return
		}

		verified, err := m.users.IsEmailVerified(c.Request.Context(), actor.UserID)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		if !verified {
			detail := dto.NewErrorDetail(dto.ErrorCodeEmailNotVerified, "Email not verified").
				WithDetails("Please verify your email address before accessing this resource")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

// RoleRequired lets through callers holding one of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "User role not found")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
	}
}

// CurrentActor returns the authenticated caller, if any.
func CurrentActor(c *gin.Context) (authz.Actor, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return authz.Actor{}, false
	}
	userID, ok := id.(int64)
	if !ok || userID <= 0 {
		return authz.Actor{}, false
	}
	role := models.RoleType(c.GetString(ContextRoleType))
	if !role.Valid() {
		return authz.Actor{}, false
	}
	return authz.Actor{UserID: userID, Role: role}, true
}
