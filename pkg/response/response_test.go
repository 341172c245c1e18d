package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWrapsDataAndMeta(t *testing.T) {
	c, rec := newTestContext()
	JSON(c, http.StatusOK, map[string]string{"a": "b"}, map[string]interface{}{"cache_hit": true})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"a": "b"}, body["data"])
	assert.Equal(t, true, body["meta"].(map[string]interface{})["cache_hit"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestJSONKeepsHandlerCacheControl(t *testing.T) {
	c, rec := newTestContext()
	c.Header("Cache-Control", "private, max-age=60")
	JSON(c, http.StatusOK, "ok")
	assert.Equal(t, "private, max-age=60", rec.Header().Get("Cache-Control"))
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, rec := newTestContext()
	Error(c, appErrors.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, c.Errors)

	c, rec = newTestContext()
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, c.Errors, 1)
	assert.Contains(t, rec.Body.String(), appErrors.ErrInternal.Code)
}

func TestAttachment(t *testing.T) {
	c, rec := newTestContext()
	Attachment(c, "report.csv", "text/csv", []byte("a,b\n"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
}
