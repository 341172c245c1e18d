package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/middleware"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	"github.com/noah-isme/sma-wellbeing-api/internal/service"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	"github.com/noah-isme/sma-wellbeing-api/pkg/response"
)

const severityCacheControl = "private, max-age=60, stale-while-revalidate=120"

type severityService interface {
	Overview(ctx context.Context, caller models.CallerContext, query dto.SeverityQuery) (*dto.SeverityOverview, bool, error)
	ExportCSV(ctx context.Context, caller models.CallerContext, query dto.SeverityQuery) (*service.ExportedFile, error)
	Refresh(ctx context.Context, caller models.CallerContext) error
}

// SeverityHandler serves the school-wide wellbeing severity overview.
type SeverityHandler struct {
	service severityService
}

// NewSeverityHandler constructs the handler.
func NewSeverityHandler(service severityService) *SeverityHandler {
	return &SeverityHandler{service: service}
}

// Overview godoc
// @Summary Latest wellbeing severity per student
// @Tags Wellbeing
// @Produce json
// @Param period_type query string false "Period type" default(weekly)
// @Param risk_level query string false "all, low, medium, high, critical" default(all)
// @Param sort_by query string false "Sort column" default(risk_score)
// @Param sort_order query string false "asc or desc" default(desc)
// @Param limit query int false "1..500" default(50)
// @Success 200 {object} response.Envelope
// @Router /wellbeing/severity [get]
func (h *SeverityHandler) Overview(c *gin.Context) {
	caller, query, ok := h.bind(c)
	if !ok {
		return
	}

	overview, cacheHit, err := h.service.Overview(c.Request.Context(), caller, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	c.Header("Cache-Control", severityCacheControl)
	response.JSON(c, http.StatusOK, overview, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the severity overview as CSV
// @Tags Wellbeing
// @Produce text/csv
// @Success 200 {file} file
// @Router /wellbeing/severity/export [get]
func (h *SeverityHandler) Export(c *gin.Context) {
	caller, query, ok := h.bind(c)
	if !ok {
		return
	}

	file, err := h.service.ExportCSV(c.Request.Context(), caller, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Refresh godoc
// @Summary Drop cached severity overviews of the caller's school
// @Tags Wellbeing
// @Success 204
// @Router /wellbeing/severity/refresh [post]
func (h *SeverityHandler) Refresh(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Refresh(c.Request.Context(), caller); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SeverityHandler) bind(c *gin.Context) (models.CallerContext, dto.SeverityQuery, bool) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return models.CallerContext{}, dto.SeverityQuery{}, false
	}
	var query dto.SeverityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query parameters"))
		return models.CallerContext{}, dto.SeverityQuery{}, false
	}
	return caller, query, true
}
