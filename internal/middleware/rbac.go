package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	"github.com/noah-isme/sma-wellbeing-api/pkg/response"
)

// RequireRoles limits a route to the given roles. Record-level scope is enforced by the services.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, permitted := allowed[caller.Role]; !permitted {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not permitted for this resource"))
			c.Abort()
			return
		}

		c.Next()
	}
}
