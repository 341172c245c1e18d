package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

const auditWriteTimeout = 3 * time.Second

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

// Audit records an entry for every authenticated request that reached the handler.
// Failures to write are logged and never change the response.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resourceType string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		caller, ok := CallerFromContext(c)
		if !ok {
			return
		}
		status := c.Writer.Status()

		details, _ := json.Marshal(map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"query":      c.Request.URL.RawQuery,
		})

		entry := &models.AuditEntry{
			UserID:        caller.SubjectID,
			SchoolID:      caller.TenantID,
			Action:        action,
			ResourceType:  resourceType,
			ResourceID:    auditResourceID(c),
			ActionDetails: details,
			Success:       status < 400,
			IPAddress:     c.ClientIP(),
			UserAgent:     c.GetHeader("User-Agent"),
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), auditWriteTimeout)
		defer cancel()
		if err := recorder.Record(ctx, entry); err != nil {
			logger.Warn("audit write failed", zap.String("action", action), zap.String("user_id", caller.SubjectID), zap.Error(err))
		}
	}
}

func auditResourceID(c *gin.Context) *string {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		id = strings.TrimSpace(c.Query("student_id"))
	}
	if id == "" {
		return nil
	}
	return &id
}
