package dto

import (
	"time"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

// InsightReportRequest captures the inputs for a single student report.
type InsightReportRequest struct {
	StudentID string `validate:"required,uuid"`
}

// InsightExportRequest captures the inputs for a report export.
type InsightExportRequest struct {
	StudentID string `validate:"required,uuid"`
	Format    string `validate:"required,oneof=pdf csv"`
}

// InsightReport is the assembled wellbeing view of one student.
type InsightReport struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	FirstName          string               `json:"firstName"`
	LastName           string               `json:"lastName"`
	Grade              string               `json:"grade"`
	Classes            []ClassSummary       `json:"classes"`
	CurrentAnalytics   *CurrentAnalytics    `json:"currentAnalytics"`
	Trends             TrendSet             `json:"trends"`
	MoodHistory        []MoodHistoryEntry   `json:"moodHistory"`
	MoodStats          MoodStats            `json:"moodStats"`
	HelpRequests       []HelpRequestExcerpt `json:"helpRequests"`
	HelpStats          HelpStats            `json:"helpStats"`
	QuestStats         QuestStats           `json:"questStats"`
	HistoricalData     []HistoricalPoint    `json:"historicalData"`
	Insights           []models.Insight     `json:"insights"`
	UnavailableSignals []string             `json:"unavailableSignals"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

// ClassSummary names an active class of the student.
type ClassSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
}

// CurrentAnalytics mirrors the latest snapshot for dashboard consumption.
type CurrentAnalytics struct {
	AnalysisDate             time.Time `json:"analysisDate"`
	OverallWellbeingScore    *float64  `json:"overallWellbeingScore"`
	EmotionalWellbeingScore  *float64  `json:"emotionalWellbeingScore"`
	AcademicWellbeingScore   *float64  `json:"academicWellbeingScore"`
	EngagementWellbeingScore *float64  `json:"engagementWellbeingScore"`
	SocialWellbeingScore     *float64  `json:"socialWellbeingScore"`
	BehavioralWellbeingScore *float64  `json:"behavioralWellbeingScore"`
	RiskLevel                string    `json:"riskLevel"`
	RiskScore                *float64  `json:"riskScore"`
	RiskTrend                string    `json:"riskTrend"`
	AttendanceRate           *float64  `json:"attendanceRate"`
	GPA                      *float64  `json:"gpa"`
	QuestCompletionRate      *float64  `json:"questCompletionRate"`
	MoodScoreAvg             *float64  `json:"moodScoreAvg"`
	StressLevelAvg           *float64  `json:"stressLevelAvg"`
	ResilienceScore          *float64  `json:"resilienceScore"`
	XPEarned                 *int      `json:"xpEarned"`
	AchievementCount         *int      `json:"achievementCount"`
	GratitudeEntriesCount    *int      `json:"gratitudeEntriesCount"`
	KindnessActsCount        *int      `json:"kindnessActsCount"`
	IncidentCount            *int      `json:"incidentCount"`
	HelpRequestsCount        *int      `json:"helpRequestsCount"`
	UrgentHelpRequestsCount  *int      `json:"urgentHelpRequestsCount"`
	InterventionRecommended  bool      `json:"interventionRecommended"`
	InterventionPriority     string    `json:"interventionPriority"`
	RecommendedActions       []string  `json:"recommendedActions"`
	RiskFactors              []string  `json:"riskFactors"`
	ProtectiveFactors        []string  `json:"protectiveFactors"`
	EarlyWarningFlags        []string  `json:"earlyWarningFlags"`
}

// TrendSet holds the direction of change per dimension.
type TrendSet struct {
	WellbeingTrend  models.Trend `json:"wellbeingTrend"`
	AcademicTrend   models.Trend `json:"academicTrend"`
	EmotionalTrend  models.Trend `json:"emotionalTrend"`
	EngagementTrend models.Trend `json:"engagementTrend"`
	RiskTrend       models.Trend `json:"riskTrend"`
}

// MoodHistoryEntry is a field-reduced mood log for charting.
type MoodHistoryEntry struct {
	Date      string    `json:"date"`
	Mood      string    `json:"mood"`
	Emoji     string    `json:"emoji"`
	Timestamp time.Time `json:"timestamp"`
}

// MoodStats buckets mood entries by sentiment.
type MoodStats struct {
	TotalEntries  int `json:"totalEntries"`
	PositiveCount int `json:"positiveCount"`
	NegativeCount int `json:"negativeCount"`
	NeutralCount  int `json:"neutralCount"`
}

// HelpRequestExcerpt is a field-reduced help request.
type HelpRequestExcerpt struct {
	Message   string    `json:"message"`
	Urgency   string    `json:"urgency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// HelpStats counts help requests by urgency and status.
type HelpStats struct {
	TotalRequests    int `json:"totalRequests"`
	UrgentRequests   int `json:"urgentRequests"`
	ResolvedRequests int `json:"resolvedRequests"`
	PendingRequests  int `json:"pendingRequests"`
}

// QuestStats summarises quest completions in the lookback window.
type QuestStats struct {
	TotalCompleted int     `json:"totalCompleted"`
	TotalXP        int     `json:"totalXp"`
	AverageXP      float64 `json:"averageXp"`
}

// HistoricalPoint is one prior snapshot reduced for charting.
type HistoricalPoint struct {
	Date            time.Time `json:"date"`
	OverallScore    *float64  `json:"overallScore"`
	EmotionalScore  *float64  `json:"emotionalScore"`
	AcademicScore   *float64  `json:"academicScore"`
	EngagementScore *float64  `json:"engagementScore"`
	RiskScore       *float64  `json:"riskScore"`
	AttendanceRate  *float64  `json:"attendanceRate"`
}
