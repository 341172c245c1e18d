package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

const snapshotColumns = `a.student_id, a.school_id, a.analysis_date, a.period_type,
        a.overall_wellbeing_score, a.emotional_wellbeing_score, a.academic_wellbeing_score,
        a.engagement_wellbeing_score, a.social_wellbeing_score, a.behavioral_wellbeing_score,
        COALESCE(a.risk_level, '') AS risk_level, a.risk_score, COALESCE(a.risk_trend, '') AS risk_trend,
        COALESCE(a.overall_score_trend, '') AS overall_score_trend,
        a.attendance_rate, a.gpa, a.quest_completion_rate, a.mood_score_avg, a.stress_level_avg, a.resilience_score,
        a.xp_earned, a.achievement_count, a.gratitude_entries_count, a.kindness_acts_count, a.incident_count,
        a.help_requests_count, a.urgent_help_requests_count,
        COALESCE(a.intervention_recommended, FALSE) AS intervention_recommended,
        COALESCE(a.intervention_priority, '') AS intervention_priority,
        COALESCE(a.intervention_type, '') AS intervention_type,
        a.recommended_actions, a.risk_factors, a.protective_factors, a.early_warning_flags`

// WellbeingRepository reads the per-student wellbeing signals.
type WellbeingRepository struct {
	db *sqlx.DB
}

// NewWellbeingRepository constructs a WellbeingRepository.
func NewWellbeingRepository(db *sqlx.DB) *WellbeingRepository {
	return &WellbeingRepository{db: db}
}

// Snapshots returns the most recent analytics snapshots, newest first.
func (r *WellbeingRepository) Snapshots(ctx context.Context, studentID, schoolID string, limit int) ([]models.WellbeingSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s
        FROM student_wellbeing_analytics_enhanced a
        WHERE a.student_id = $1 AND a.school_id = $2
        ORDER BY a.analysis_date DESC LIMIT %d`, snapshotColumns, limit)

	var snapshots []models.WellbeingSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, studentID, schoolID); err != nil {
		return nil, fmt.Errorf("list wellbeing snapshots: %w", err)
	}
	return snapshots, nil
}

// MoodEntries returns mood logs dated on or after since, newest first.
func (r *WellbeingRepository) MoodEntries(ctx context.Context, studentID, schoolID string, since time.Time) ([]models.MoodEntry, error) {
	const query = `SELECT m.mood, COALESCE(m.mood_emoji, '') AS mood_emoji, m.date, m.created_at
        FROM mood_tracking m
        JOIN profiles p ON p.user_id = m.user_id AND p.school_id = $2
        WHERE m.user_id = $1 AND m.date >= $3
        ORDER BY m.date DESC, m.created_at DESC`

	var entries []models.MoodEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, schoolID, since.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	return entries, nil
}

// HelpRequests returns help requests created after since, newest first.
func (r *WellbeingRepository) HelpRequests(ctx context.Context, studentID, schoolID string, since time.Time) ([]models.HelpRequest, error) {
	const query = `SELECT h.message, COALESCE(h.urgency, '') AS urgency, COALESCE(h.status, '') AS status, h.created_at
        FROM help_requests h
        JOIN profiles p ON p.user_id = h.student_id AND p.school_id = $2
        WHERE h.student_id = $1 AND h.created_at >= $3
        ORDER BY h.created_at DESC`

	var requests []models.HelpRequest
	if err := r.db.SelectContext(ctx, &requests, query, studentID, schoolID, since); err != nil {
		return nil, fmt.Errorf("list help requests: %w", err)
	}
	return requests, nil
}

// QuestCompletions returns quests finished after since, newest first.
func (r *WellbeingRepository) QuestCompletions(ctx context.Context, studentID, schoolID string, since time.Time) ([]models.QuestCompletion, error) {
	const query = `SELECT qc.quest_id, COALESCE(q.title, '') AS title, COALESCE(qc.xp_earned, 0) AS xp_earned, qc.completed_at
        FROM quest_completions qc
        JOIN profiles p ON p.user_id = qc.user_id AND p.school_id = $2
        LEFT JOIN quests q ON q.id = qc.quest_id
        WHERE qc.user_id = $1 AND qc.completed_at >= $3
        ORDER BY qc.completed_at DESC`

	var completions []models.QuestCompletion
	if err := r.db.SelectContext(ctx, &completions, query, studentID, schoolID, since); err != nil {
		return nil, fmt.Errorf("list quest completions: %w", err)
	}
	return completions, nil
}

// ClassAssignments returns the active classes of the student.
func (r *WellbeingRepository) ClassAssignments(ctx context.Context, studentID, schoolID string) ([]models.ClassAssignment, error) {
	const query = `SELECT sca.class_id, COALESCE(c.class_name, '') AS class_name, COALESCE(c.subject, '') AS subject
        FROM student_class_assignments sca
        JOIN classes c ON c.id = sca.class_id
        WHERE sca.student_id = $1 AND sca.school_id = $2 AND sca.is_active = TRUE
        ORDER BY c.class_name`

	var classes []models.ClassAssignment
	if err := r.db.SelectContext(ctx, &classes, query, studentID, schoolID); err != nil {
		return nil, fmt.Errorf("list class assignments: %w", err)
	}
	return classes, nil
}
