package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	"github.com/noah-isme/sma-wellbeing-api/pkg/logger"
	"github.com/noah-isme/sma-wellbeing-api/pkg/response"
)

// Context keys published by JWT.
const (
	ContextUserKey   = "currentUser"
	ContextCallerKey = "currentCaller"
)

// TokenValidator validates bearer tokens into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token and publishes the caller scope.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextCallerKey, claims.Caller())
		c.Set(logger.SubjectKey, claims.UserID)
		c.Next()
	}
}

// CallerFromContext returns the caller scope published by JWT.
func CallerFromContext(c *gin.Context) (models.CallerContext, bool) {
	value, exists := c.Get(ContextCallerKey)
	if !exists {
		return models.CallerContext{}, false
	}
	caller, ok := value.(models.CallerContext)
	return caller, ok
}
