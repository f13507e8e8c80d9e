// Package middleware holds the gin middleware specific to this API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/response"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "auth_user_id"
	ContextRole   = "auth_role"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Authenticate rejects requests without a valid bearer token and stashes
// the caller's identity in the gin context.
func Authenticate(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, appErrors.ErrUnauthorized.Clone("Missing bearer token"))
			c.Abort()
			return
		}
		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated caller's id, or 0 when unauthenticated.
func UserID(c *gin.Context) int64 {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// Role returns the authenticated caller's role.
func Role(c *gin.Context) models.UserRole {
	if v, ok := c.Get(ContextRole); ok {
		if role, ok := v.(models.UserRole); ok {
			return role
		}
	}
	return ""
}
