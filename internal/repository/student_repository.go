package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

// StudentRepository reads student identity records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindProfile returns the student's profile within the school. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindProfile(ctx context.Context, studentID, schoolID string) (*models.StudentProfile, error) {
	const query = `SELECT user_id, school_id, COALESCE(first_name, '') AS first_name, COALESCE(last_name, '') AS last_name,
        COALESCE(grade_level, '') AS grade_level, COALESCE(class_name, '') AS class_name
        FROM profiles WHERE user_id = $1 AND school_id = $2 AND role = $3`

	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, studentID, schoolID, studentProfileRole); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get student profile: %w", err)
	}
	return &profile, nil
}
