package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	"github.com/noah-isme/sma-wellbeing-api/internal/service"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	"github.com/noah-isme/sma-wellbeing-api/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/students/:id", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/students/abc", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTPublishesCaller(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "u1", SchoolID: "school-1", Role: models.RoleTeacher}}
	var caller models.CallerContext
	var subject string
	r := newRouter(JWT(validator), func(c *gin.Context) {
		caller, _ = CallerFromContext(c)
		subject = c.GetString(logger.SubjectKey)
		c.Status(http.StatusNoContent)
	})

	rec := serve(r, "Bearer token-value")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "token-value", validator.token)
	assert.Equal(t, models.CallerContext{TenantID: "school-1", SubjectID: "u1", Role: models.RoleTeacher}, caller)
	assert.Equal(t, "u1", subject)
}

func TestJWTRejectsMissingOrInvalidTokens(t *testing.T) {
	validator := &stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	r := newRouter(JWT(validator), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
}

func TestRequireRoles(t *testing.T) {
	withCaller := func(role models.UserRole) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(ContextCallerKey, models.CallerContext{TenantID: "s", SubjectID: "u", Role: role})
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	assert.Equal(t, http.StatusNoContent, serve(newRouter(withCaller(models.RoleAdmin), RequireRoles(models.RoleAdmin), ok), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(withCaller(models.RoleStudent), RequireRoles(models.RoleAdmin), ok), "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(RequireRoles(models.RoleAdmin), ok), "").Code)
}

func TestResponseMeta(t *testing.T) {
	var meta map[string]interface{}
	r := newRouter(WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		SetDegraded(c, nil)
		SetDegraded(c, []string{"mood_entries"})
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	serve(r, "")
	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Equal(t, []string{"mood_entries"}, meta[degradedKey])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `path="/students/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, `path="/nowhere"`)
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

type recordingAudit struct {
	entries []*models.AuditEntry
	err     error
}

func (r *recordingAudit) Record(_ context.Context, entry *models.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func TestAuditRecordsCallerAndStudent(t *testing.T) {
	recorder := &recordingAudit{}
	withCaller := func(c *gin.Context) {
		c.Set(ContextCallerKey, models.CallerContext{TenantID: "school-1", SubjectID: "teacher-1", Role: models.RoleTeacher})
	}
	r := newRouter(withCaller, Audit(recorder, nil, models.AuditActionInsightView, models.AuditResourceStudentInsight), func(c *gin.Context) {
		c.Status(http.StatusForbidden)
	})

	serve(r, "")

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "teacher-1", entry.UserID)
	assert.Equal(t, "school-1", entry.SchoolID)
	assert.Equal(t, models.AuditActionInsightView, entry.Action)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "abc", *entry.ResourceID)
	assert.False(t, entry.Success)
	assert.Contains(t, string(entry.ActionDetails), `"status":403`)
}

func TestAuditSkipsAnonymousAndToleratesWriteErrors(t *testing.T) {
	recorder := &recordingAudit{err: errors.New("db down")}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	rec := serve(newRouter(Audit(recorder, nil, models.AuditActionInsightView, models.AuditResourceStudentInsight), ok), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, recorder.entries)

	withCaller := func(c *gin.Context) {
		c.Set(ContextCallerKey, models.CallerContext{TenantID: "school-1", SubjectID: "admin-1", Role: models.RoleAdmin})
	}
	rec = serve(newRouter(withCaller, Audit(recorder, nil, models.AuditActionInsightView, models.AuditResourceStudentInsight), ok), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, recorder.entries, 1)
	assert.True(t, recorder.entries[0].Success)
}
