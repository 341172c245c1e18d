package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-wellbeing-api/internal/dto"
	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
	"github.com/noah-isme/sma-wellbeing-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatPDF = "pdf"
	ExportFormatCSV = "csv"
)

type documentRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
}

// ExportedFile is a rendered attachment ready to stream.
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func defaultRenderers(csv, pdf documentRenderer) (documentRenderer, documentRenderer) {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return csv, pdf
}

// Export renders the report of studentID as a downloadable document.
func (s *InsightService) Export(ctx context.Context, caller models.CallerContext, studentID, format string) (*ExportedFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	req := dto.InsightExportRequest{StudentID: strings.TrimSpace(studentID), Format: format}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid export request")
	}

	report, err := s.Report(ctx, caller, req.StudentID)
	if err != nil {
		return nil, err
	}

	doc := reportDocument(report)
	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		data, err = s.pdf.RenderDocument(doc)
		contentType = "application/pdf"
	default:
		data, err = s.csv.RenderDocument(doc)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render report")
	}

	return &ExportedFile{
		Filename:    fmt.Sprintf("wellbeing-%s-%s.%s", report.ID, report.GeneratedAt.Format("20060102"), format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func reportDocument(report *dto.InsightReport) export.Document {
	subtitles := []string{
		"Student: " + report.Name,
		"Generated: " + report.GeneratedAt.Format("2006-01-02 15:04 MST"),
	}
	if report.Grade != "" {
		subtitles = append(subtitles, "Grade: "+report.Grade)
	}
	if len(report.UnavailableSignals) > 0 {
		subtitles = append(subtitles, "Unavailable data: "+strings.Join(report.UnavailableSignals, ", "))
	}

	return export.Document{
		Title:     "Student Wellbeing Report",
		Subtitles: subtitles,
		Sections: []export.Section{
			{Heading: "Current Scores", Data: currentScoresData(report.CurrentAnalytics)},
			{Heading: "Trends", Data: trendsData(report.Trends)},
			{Heading: "Insights", Data: insightsData(report)},
			{Heading: "Activity", Data: activityData(report)},
			{Heading: "History", Data: historyData(report.HistoricalData)},
		},
	}
}

func currentScoresData(current *dto.CurrentAnalytics) export.Dataset {
	data := export.Dataset{Headers: []string{"Metric", "Value"}}
	if current == nil {
		data.Rows = append(data.Rows, map[string]string{"Metric": "Analytics", "Value": "No analytics yet"})
		return data
	}
	rows := []struct {
		name  string
		value *float64
	}{
		{"Overall", current.OverallWellbeingScore},
		{"Emotional", current.EmotionalWellbeingScore},
		{"Academic", current.AcademicWellbeingScore},
		{"Engagement", current.EngagementWellbeingScore},
		{"Social", current.SocialWellbeingScore},
		{"Behavioral", current.BehavioralWellbeingScore},
		{"Risk score", current.RiskScore},
		{"Attendance rate", current.AttendanceRate},
		{"GPA", current.GPA},
		{"Quest completion rate", current.QuestCompletionRate},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{"Metric": row.name, "Value": formatScore(row.value)})
	}
	data.Rows = append(data.Rows, map[string]string{"Metric": "Risk level", "Value": orNA(current.RiskLevel)})
	return data
}

func trendsData(trends dto.TrendSet) export.Dataset {
	return export.Dataset{
		Headers: []string{"Dimension", "Trend"},
		Rows: []map[string]string{
			{"Dimension": "Wellbeing", "Trend": string(trends.WellbeingTrend)},
			{"Dimension": "Academic", "Trend": string(trends.AcademicTrend)},
			{"Dimension": "Emotional", "Trend": string(trends.EmotionalTrend)},
			{"Dimension": "Engagement", "Trend": string(trends.EngagementTrend)},
			{"Dimension": "Risk", "Trend": string(trends.RiskTrend)},
		},
	}
}

func insightsData(report *dto.InsightReport) export.Dataset {
	data := export.Dataset{Headers: []string{"Type", "Level", "Title", "Message", "Suggestion"}}
	for _, insight := range report.Insights {
		data.Rows = append(data.Rows, map[string]string{
			"Type":       string(insight.Type),
			"Level":      string(insight.Level),
			"Title":      insight.Title,
			"Message":    insight.Message,
			"Suggestion": insight.Suggestion,
		})
	}
	return data
}

func activityData(report *dto.InsightReport) export.Dataset {
	mood, help, quest := report.MoodStats, report.HelpStats, report.QuestStats
	return export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			{"Metric": "Mood entries", "Value": strconv.Itoa(mood.TotalEntries)},
			{"Metric": "Positive moods", "Value": strconv.Itoa(mood.PositiveCount)},
			{"Metric": "Negative moods", "Value": strconv.Itoa(mood.NegativeCount)},
			{"Metric": "Neutral moods", "Value": strconv.Itoa(mood.NeutralCount)},
			{"Metric": "Help requests", "Value": strconv.Itoa(help.TotalRequests)},
			{"Metric": "Urgent help requests", "Value": strconv.Itoa(help.UrgentRequests)},
			{"Metric": "Resolved help requests", "Value": strconv.Itoa(help.ResolvedRequests)},
			{"Metric": "Pending help requests", "Value": strconv.Itoa(help.PendingRequests)},
			{"Metric": "Quests completed", "Value": strconv.Itoa(quest.TotalCompleted)},
			{"Metric": "XP earned", "Value": strconv.Itoa(quest.TotalXP)},
		},
	}
}

func historyData(points []dto.HistoricalPoint) export.Dataset {
	data := export.Dataset{Headers: []string{"Date", "Overall", "Emotional", "Academic", "Engagement", "Risk"}}
	for _, point := range points {
		data.Rows = append(data.Rows, map[string]string{
			"Date":       point.Date.Format("2006-01-02"),
			"Overall":    formatScore(point.OverallScore),
			"Emotional":  formatScore(point.EmotionalScore),
			"Academic":   formatScore(point.AcademicScore),
			"Engagement": formatScore(point.EngagementScore),
			"Risk":       formatScore(point.RiskScore),
		})
	}
	return data
}

func formatScore(v *float64) string {
	value, ok := finite(v)
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
