package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ssekandi/psms-api/internal/models"
	appErrors "github.com/ssekandi/psms-api/pkg/errors"
	"github.com/ssekandi/psms-api/pkg/response"
)

// RequireRoles allows only callers holding one of the given roles. It
// assumes Authenticate already ran.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		if !allowed[Role(c)] {
			response.Error(c, appErrors.ErrForbidden.Clone("Insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
