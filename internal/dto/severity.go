package dto

import "time"

// SeverityQuery filters the school-wide severity overview.
type SeverityQuery struct {
	PeriodType string `form:"period_type" validate:"omitempty,alphanum,max=32"`
	RiskLevel  string `form:"risk_level" validate:"omitempty,oneof=all low medium high critical"`
	SortBy     string `form:"sort_by" validate:"omitempty,oneof=risk_score overall_wellbeing_score emotional_wellbeing_score academic_wellbeing_score engagement_wellbeing_score analysis_date student_name"`
	SortOrder  string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=500"`
}

// SeverityOverview lists the latest snapshot per student with a summary.
type SeverityOverview struct {
	Records  []SeverityRecord `json:"analytics"`
	Summary  SeveritySummary  `json:"summary"`
	Metadata SeverityMetadata `json:"metadata"`
}

// SeverityRecord is one student's latest snapshot with display fields.
type SeverityRecord struct {
	StudentID                string    `json:"student_id"`
	StudentName              string    `json:"student_name"`
	StudentGrade             string    `json:"student_grade"`
	StudentClass             string    `json:"student_class"`
	AnalysisDate             time.Time `json:"analysis_date"`
	PeriodType               string    `json:"period_type"`
	OverallWellbeingScore    *float64  `json:"overall_wellbeing_score"`
	EmotionalWellbeingScore  *float64  `json:"emotional_wellbeing_score"`
	AcademicWellbeingScore   *float64  `json:"academic_wellbeing_score"`
	EngagementWellbeingScore *float64  `json:"engagement_wellbeing_score"`
	SocialWellbeingScore     *float64  `json:"social_wellbeing_score"`
	BehavioralWellbeingScore *float64  `json:"behavioral_wellbeing_score"`
	RiskLevel                string    `json:"risk_level"`
	RiskScore                *float64  `json:"risk_score"`
	RiskTrend                string    `json:"risk_trend"`
	OverallScoreTrend        string    `json:"overall_score_trend"`
	InterventionRecommended  bool      `json:"intervention_recommended"`
	InterventionPriority     string    `json:"intervention_priority"`
	InterventionType         string    `json:"intervention_type"`
	RiskFactorsCount         int       `json:"risk_factors_count"`
	ProtectiveFactorsCount   int       `json:"protective_factors_count"`
	GPA                      *float64  `json:"gpa"`
	AttendanceRate           *float64  `json:"attendance_rate"`
	QuestCompletionRate      *float64  `json:"quest_completion_rate"`
}

// SeveritySummary aggregates the listed records.
type SeveritySummary struct {
	Total                  int              `json:"total"`
	ByRiskLevel            map[string]int   `json:"by_risk_level"`
	ByInterventionPriority map[string]int   `json:"by_intervention_priority"`
	AverageScores          SeverityAverages `json:"average_scores"`
	InterventionsNeeded    int              `json:"interventions_needed"`
	HighRiskCount          int              `json:"high_risk_count"`
	ImprovingTrend         int              `json:"improving_trend"`
	DecliningTrend         int              `json:"declining_trend"`
}

// SeverityAverages holds mean wellbeing scores across listed records.
type SeverityAverages struct {
	Overall    float64 `json:"overall"`
	Emotional  float64 `json:"emotional"`
	Academic   float64 `json:"academic"`
	Engagement float64 `json:"engagement"`
	Social     float64 `json:"social"`
	Behavioral float64 `json:"behavioral"`
}

// SeverityMetadata echoes the applied query.
type SeverityMetadata struct {
	PeriodType      string     `json:"period_type"`
	RiskLevelFilter string     `json:"risk_level_filter"`
	SortBy          string     `json:"sort_by"`
	SortOrder       string     `json:"sort_order"`
	Limit           int        `json:"limit"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
}
