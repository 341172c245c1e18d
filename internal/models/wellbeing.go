package models

import (
	"time"

	"github.com/lib/pq"
)

// Trend classifies the direction of change for one score dimension.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// RiskLevel is the upstream risk classification of a snapshot.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Mood labels recorded by the mood tracker.
const (
	MoodHappy    = "happy"
	MoodExcited  = "excited"
	MoodCalm     = "calm"
	MoodSad      = "sad"
	MoodAngry    = "angry"
	MoodAnxious  = "anxious"
	MoodStressed = "stressed"
	MoodNeutral  = "neutral"
	MoodTired    = "tired"
)

// Help request urgency and status values.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"

	HelpStatusPending  = "pending"
	HelpStatusResolved = "resolved"
)

// WellbeingSnapshot is one computed analytics record for a student. Numeric fields are
// nullable because upstream analysis may not cover every dimension.
type WellbeingSnapshot struct {
	StudentID    string    `db:"student_id" json:"student_id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	AnalysisDate time.Time `db:"analysis_date" json:"analysis_date"`
	PeriodType   string    `db:"period_type" json:"period_type"`

	OverallWellbeingScore    *float64 `db:"overall_wellbeing_score" json:"overall_wellbeing_score"`
	EmotionalWellbeingScore  *float64 `db:"emotional_wellbeing_score" json:"emotional_wellbeing_score"`
	AcademicWellbeingScore   *float64 `db:"academic_wellbeing_score" json:"academic_wellbeing_score"`
	EngagementWellbeingScore *float64 `db:"engagement_wellbeing_score" json:"engagement_wellbeing_score"`
	SocialWellbeingScore     *float64 `db:"social_wellbeing_score" json:"social_wellbeing_score"`
	BehavioralWellbeingScore *float64 `db:"behavioral_wellbeing_score" json:"behavioral_wellbeing_score"`

	RiskLevel         RiskLevel `db:"risk_level" json:"risk_level"`
	RiskScore         *float64  `db:"risk_score" json:"risk_score"`
	RiskTrend         string    `db:"risk_trend" json:"risk_trend"`
	OverallScoreTrend string    `db:"overall_score_trend" json:"overall_score_trend"`

	AttendanceRate      *float64 `db:"attendance_rate" json:"attendance_rate"`
	GPA                 *float64 `db:"gpa" json:"gpa"`
	QuestCompletionRate *float64 `db:"quest_completion_rate" json:"quest_completion_rate"`
	MoodScoreAvg        *float64 `db:"mood_score_avg" json:"mood_score_avg"`
	StressLevelAvg      *float64 `db:"stress_level_avg" json:"stress_level_avg"`
	ResilienceScore     *float64 `db:"resilience_score" json:"resilience_score"`

	XPEarned                *int `db:"xp_earned" json:"xp_earned"`
	AchievementCount        *int `db:"achievement_count" json:"achievement_count"`
	GratitudeEntriesCount   *int `db:"gratitude_entries_count" json:"gratitude_entries_count"`
	KindnessActsCount       *int `db:"kindness_acts_count" json:"kindness_acts_count"`
	IncidentCount           *int `db:"incident_count" json:"incident_count"`
	HelpRequestsCount       *int `db:"help_requests_count" json:"help_requests_count"`
	UrgentHelpRequestsCount *int `db:"urgent_help_requests_count" json:"urgent_help_requests_count"`

	InterventionRecommended bool   `db:"intervention_recommended" json:"intervention_recommended"`
	InterventionPriority    string `db:"intervention_priority" json:"intervention_priority"`
	InterventionType        string `db:"intervention_type" json:"intervention_type"`

	RecommendedActions pq.StringArray `db:"recommended_actions" json:"recommended_actions"`
	RiskFactors        pq.StringArray `db:"risk_factors" json:"risk_factors"`
	ProtectiveFactors  pq.StringArray `db:"protective_factors" json:"protective_factors"`
	EarlyWarningFlags  pq.StringArray `db:"early_warning_flags" json:"early_warning_flags"`
}

// MoodEntry is a single mood tracker log.
type MoodEntry struct {
	Mood      string    `db:"mood" json:"mood"`
	Emoji     string    `db:"mood_emoji" json:"mood_emoji"`
	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HelpRequest is a student-raised request for support.
type HelpRequest struct {
	Message   string    `db:"message" json:"message"`
	Urgency   string    `db:"urgency" json:"urgency"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// QuestCompletion records a finished gamified quest.
type QuestCompletion struct {
	QuestID     string    `db:"quest_id" json:"quest_id"`
	Title       string    `db:"title" json:"title"`
	XPEarned    int       `db:"xp_earned" json:"xp_earned"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// ClassAssignment links a student to an active class.
type ClassAssignment struct {
	ClassID   string `db:"class_id" json:"class_id"`
	ClassName string `db:"class_name" json:"class_name"`
	Subject   string `db:"subject" json:"subject"`
}

// StudentProfile carries the identity fields shown alongside wellbeing data.
type StudentProfile struct {
	ID         string `db:"user_id" json:"id"`
	SchoolID   string `db:"school_id" json:"school_id"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	GradeLevel string `db:"grade_level" json:"grade_level"`
	ClassName  string `db:"class_name" json:"class_name"`
}

// SeveritySnapshot is the latest snapshot of one student enriched with display fields.
type SeveritySnapshot struct {
	WellbeingSnapshot
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	GradeLevel string `db:"grade_level" json:"grade_level"`
	ClassName  string `db:"class_name" json:"class_name"`
}
