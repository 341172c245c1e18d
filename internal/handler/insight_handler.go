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

type insightService interface {
	Report(ctx context.Context, caller models.CallerContext, studentID string) (*dto.InsightReport, error)
	Export(ctx context.Context, caller models.CallerContext, studentID, format string) (*service.ExportedFile, error)
}

// InsightHandler serves per-student wellbeing reports.
type InsightHandler struct {
	service insightService
}

// NewInsightHandler constructs the handler.
func NewInsightHandler(service insightService) *InsightHandler {
	return &InsightHandler{service: service}
}

// Report godoc
// @Summary Student wellbeing insight report
// @Tags Insights
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/{id}/insights [get]
func (h *InsightHandler) Report(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID := studentIDFromRequest(c)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}

	report, err := h.service.Report(c.Request.Context(), caller, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDegraded(c, report.UnavailableSignals)
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download a student wellbeing report
// @Tags Insights
// @Produce application/pdf,text/csv
// @Param id path string true "Student ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} file
// @Router /students/{id}/insights/export [get]
func (h *InsightHandler) Export(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID := studentIDFromRequest(c)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}

	file, err := h.service.Export(c.Request.Context(), caller, studentID, c.DefaultQuery("format", service.ExportFormatPDF))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
