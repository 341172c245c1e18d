package models

import "time"

// Audited actions on wellbeing data.
const (
	AuditActionInsightView      = "INSIGHT_VIEW"
	AuditActionInsightExport    = "INSIGHT_EXPORT"
	AuditActionSeverityView     = "SEVERITY_VIEW"
	AuditActionSeverityExport   = "SEVERITY_EXPORT"
	AuditActionSeverityRefresh  = "SEVERITY_REFRESH"
	AuditResourceStudentInsight = "student_insight"
	AuditResourceSeverity       = "wellbeing_severity"
)

// AuditEntry records one read or change of student wellbeing data.
type AuditEntry struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	SchoolID      string    `db:"school_id" json:"school_id"`
	Action        string    `db:"action" json:"action"`
	ResourceType  string    `db:"resource_type" json:"resource_type"`
	ResourceID    *string   `db:"resource_id" json:"resource_id,omitempty"`
	ActionDetails []byte    `db:"action_details" json:"action_details,omitempty"`
	Success       bool      `db:"success" json:"success"`
	IPAddress     string    `db:"ip_address" json:"ip_address"`
	UserAgent     string    `db:"user_agent" json:"user_agent"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
