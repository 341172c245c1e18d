package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/middleware"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	"github.com/noah-isme/sma-wellbeing-api/internal/service"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
)

const testStudentID = "6f1c2a7e-3b9d-4c1a-9e2f-0a1b2c3d4e5f"

var testCaller = models.CallerContext{TenantID: "school-1", SubjectID: "teacher-1", Role: models.RoleTeacher}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newHandlerContext(method, target string, caller *models.CallerContext) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	if caller != nil {
		c.Set(middleware.ContextCallerKey, *caller)
	}
	c.Set("response_meta", map[string]interface{}{})
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeInsightSrv struct {
	report    *dto.InsightReport
	file      *service.ExportedFile
	err       error
	studentID string
	format    string
	caller    models.CallerContext
}

func (f *fakeInsightSrv) Report(_ context.Context, caller models.CallerContext, studentID string) (*dto.InsightReport, error) {
	f.caller = caller
	f.studentID = studentID
	return f.report, f.err
}

func (f *fakeInsightSrv) Export(_ context.Context, caller models.CallerContext, studentID, format string) (*service.ExportedFile, error) {
	f.caller = caller
	f.studentID = studentID
	f.format = format
	return f.file, f.err
}

func TestInsightHandlerReport(t *testing.T) {
	srv := &fakeInsightSrv{report: &dto.InsightReport{ID: testStudentID, Name: "Ada Lovelace", UnavailableSignals: []string{"mood_entries"}}}
	c, rec := newHandlerContext(http.MethodGet, "/students/"+testStudentID+"/insights", &testCaller)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}

	NewInsightHandler(srv).Report(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testStudentID, srv.studentID)
	assert.Equal(t, testCaller, srv.caller)
	env := decodeEnvelope(t, rec)
	var report dto.InsightReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "Ada Lovelace", report.Name)
	assert.Equal(t, []interface{}{"mood_entries"}, env.Meta["degraded_signals"])
}

func TestInsightHandlerReportAcceptsQueryParameter(t *testing.T) {
	srv := &fakeInsightSrv{report: &dto.InsightReport{ID: testStudentID}}
	c, rec := newHandlerContext(http.MethodGet, "/insights?student_id="+testStudentID, &testCaller)

	NewInsightHandler(srv).Report(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testStudentID, srv.studentID)
}

func TestInsightHandlerReportErrors(t *testing.T) {
	t.Run("no caller", func(t *testing.T) {
		c, rec := newHandlerContext(http.MethodGet, "/insights?student_id="+testStudentID, nil)
		NewInsightHandler(&fakeInsightSrv{}).Report(c)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing id", func(t *testing.T) {
		c, rec := newHandlerContext(http.MethodGet, "/insights", &testCaller)
		NewInsightHandler(&fakeInsightSrv{}).Report(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	cases := map[string]struct {
		err    error
		status int
	}{
		"forbidden":   {err: appErrors.ErrForbidden, status: http.StatusForbidden},
		"not found":   {err: appErrors.ErrStudentNotFound, status: http.StatusNotFound},
		"unavailable": {err: appErrors.ErrUnavailable, status: http.StatusServiceUnavailable},
		"unexpected":  {err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newHandlerContext(http.MethodGet, "/insights?student_id="+testStudentID, &testCaller)
			NewInsightHandler(&fakeInsightSrv{err: tc.err}).Report(c)
			assert.Equal(t, tc.status, rec.Code)
			assert.NotNil(t, decodeEnvelope(t, rec).Error)
		})
	}
}

func TestInsightHandlerExport(t *testing.T) {
	srv := &fakeInsightSrv{file: &service.ExportedFile{Filename: "wellbeing.csv", ContentType: "text/csv", Data: []byte("a,b\n")}}
	c, rec := newHandlerContext(http.MethodGet, "/students/"+testStudentID+"/insights/export?format=csv", &testCaller)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}

	NewInsightHandler(srv).Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.format)
	assert.Equal(t, `attachment; filename="wellbeing.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestInsightHandlerExportDefaultsToPDF(t *testing.T) {
	srv := &fakeInsightSrv{file: &service.ExportedFile{Filename: "wellbeing.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}
	c, _ := newHandlerContext(http.MethodGet, "/students/"+testStudentID+"/insights/export", &testCaller)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}

	NewInsightHandler(srv).Export(c)

	assert.Equal(t, service.ExportFormatPDF, srv.format)
}

type fakeSeveritySrv struct {
	overview *dto.SeverityOverview
	cacheHit bool
	err      error
	query    dto.SeverityQuery
	refreshd bool
}

func (f *fakeSeveritySrv) Overview(_ context.Context, _ models.CallerContext, query dto.SeverityQuery) (*dto.SeverityOverview, bool, error) {
	f.query = query
	return f.overview, f.cacheHit, f.err
}

func (f *fakeSeveritySrv) ExportCSV(_ context.Context, _ models.CallerContext, query dto.SeverityQuery) (*service.ExportedFile, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportedFile{Filename: "severity.csv", ContentType: "text/csv", Data: []byte("x\n")}, nil
}

func (f *fakeSeveritySrv) Refresh(context.Context, models.CallerContext) error {
	f.refreshd = true
	return f.err
}

func TestSeverityHandlerOverview(t *testing.T) {
	admin := models.CallerContext{TenantID: "school-1", SubjectID: "admin-1", Role: models.RoleAdmin}
	srv := &fakeSeveritySrv{overview: &dto.SeverityOverview{Records: []dto.SeverityRecord{}}, cacheHit: true}
	c, rec := newHandlerContext(http.MethodGet, "/wellbeing/severity?risk_level=high&sort_by=student_name&sort_order=asc&limit=10", &admin)

	NewSeverityHandler(srv).Overview(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.SeverityQuery{RiskLevel: "high", SortBy: "student_name", SortOrder: "asc", Limit: 10}, srv.query)
	assert.Equal(t, severityCacheControl, rec.Header().Get("Cache-Control"))
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestSeverityHandlerRejectsMalformedLimit(t *testing.T) {
	admin := models.CallerContext{TenantID: "school-1", SubjectID: "admin-1", Role: models.RoleAdmin}
	c, rec := newHandlerContext(http.MethodGet, "/wellbeing/severity?limit=lots", &admin)

	NewSeverityHandler(&fakeSeveritySrv{}).Overview(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeverityHandlerExportAndRefresh(t *testing.T) {
	admin := models.CallerContext{TenantID: "school-1", SubjectID: "admin-1", Role: models.RoleAdmin}
	srv := &fakeSeveritySrv{}

	c, rec := newHandlerContext(http.MethodGet, "/wellbeing/severity/export?period_type=monthly", &admin)
	NewSeverityHandler(srv).Export(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "monthly", srv.query.PeriodType)

	c, _ = newHandlerContext(http.MethodPost, "/wellbeing/severity/refresh", &admin)
	NewSeverityHandler(srv).Refresh(c)
	assert.True(t, srv.refreshd)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
}

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	c, rec := newHandlerContext(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
}

func TestMetricsHandlerSystem(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordReport(nil)
	c, rec := newHandlerContext(http.MethodGet, "/system/metrics", nil)

	NewMetricsHandler(metrics, nil).System(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &snapshot))
	assert.Equal(t, uint64(1), snapshot.ReportsGenerated)
}
