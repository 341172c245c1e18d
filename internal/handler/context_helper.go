package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-wellbeing-api/internal/middleware"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
)

func callerFromContext(c *gin.Context) (models.CallerContext, error) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok || caller.TenantID == "" || caller.SubjectID == "" {
		return models.CallerContext{}, appErrors.ErrUnauthorized
	}
	return caller, nil
}

// studentIDFromRequest prefers the path parameter and falls back to ?student_id=.
func studentIDFromRequest(c *gin.Context) string {
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("student_id"))
}
