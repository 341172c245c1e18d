package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

const studentProfileRole = "student"

// SeverityRepository reads the school-wide latest wellbeing snapshots.
type SeverityRepository struct {
	db *sqlx.DB
}

// NewSeverityRepository constructs a SeverityRepository.
func NewSeverityRepository(db *sqlx.DB) *SeverityRepository {
	return &SeverityRepository{db: db}
}

// LatestSnapshots returns the most recent snapshot of every student in the school for the period type,
// joined with the student's name and primary active class.
func (r *SeverityRepository) LatestSnapshots(ctx context.Context, schoolID, periodType string) ([]models.SeveritySnapshot, error) {
	query := fmt.Sprintf(`SELECT latest.*,
        COALESCE(p.first_name, '') AS first_name, COALESCE(p.last_name, '') AS last_name,
        COALESCE(cls.grade_level, '') AS grade_level, COALESCE(cls.class_name, '') AS class_name
        FROM (
            SELECT DISTINCT ON (a.student_id) %s
            FROM student_wellbeing_analytics_enhanced a
            WHERE a.school_id = $1 AND a.period_type = $2
            ORDER BY a.student_id, a.analysis_date DESC
        ) latest
        LEFT JOIN profiles p ON p.user_id = latest.student_id AND p.school_id = $1 AND p.role = $3
        LEFT JOIN LATERAL (
            SELECT c.class_name, c.grade_level::text AS grade_level
            FROM student_class_assignments sca
            JOIN classes c ON c.id = sca.class_id
            WHERE sca.student_id = latest.student_id AND sca.school_id = $1 AND sca.is_active = TRUE
            ORDER BY sca.is_primary DESC
            LIMIT 1
        ) cls ON TRUE`, snapshotColumns)

	var snapshots []models.SeveritySnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, schoolID, periodType, studentProfileRole); err != nil {
		return nil, fmt.Errorf("list latest wellbeing snapshots: %w", err)
	}
	return snapshots, nil
}
