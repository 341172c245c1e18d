package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// AccessRepository answers relationship questions used for read scoping.
type AccessRepository struct {
	db *sqlx.DB
}

// NewAccessRepository constructs an AccessRepository.
func NewAccessRepository(db *sqlx.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// TeacherHasStudent reports whether the student is actively assigned to one of the teacher's active classes.
func (r *AccessRepository) TeacherHasStudent(ctx context.Context, schoolID, teacherID, studentID string) (bool, error) {
	const classesQuery = `SELECT tca.class_id FROM teacher_class_assignments tca
        JOIN classes c ON c.id = tca.class_id
        WHERE tca.teacher_id = $1 AND tca.is_active = TRUE AND c.school_id = $2`

	var classIDs []string
	if err := r.db.SelectContext(ctx, &classIDs, classesQuery, teacherID, schoolID); err != nil {
		return false, fmt.Errorf("list teacher classes: %w", err)
	}
	if len(classIDs) == 0 {
		return false, nil
	}

	const memberQuery = `SELECT EXISTS (SELECT 1 FROM student_class_assignments
        WHERE student_id = $1 AND class_id = ANY($2) AND is_active = TRUE)`

	var ok bool
	if err := r.db.GetContext(ctx, &ok, memberQuery, studentID, pq.Array(classIDs)); err != nil {
		return false, fmt.Errorf("check student class membership: %w", err)
	}
	return ok, nil
}

// ParentHasChild reports whether a parent-child relationship links the two users within the school.
func (r *AccessRepository) ParentHasChild(ctx context.Context, schoolID, parentID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM parent_child_relationships pcr
        JOIN profiles p ON p.user_id = pcr.child_id AND p.school_id = $3
        WHERE pcr.parent_id = $1 AND pcr.child_id = $2)`

	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, parentID, studentID, schoolID); err != nil {
		return false, fmt.Errorf("check parent relationship: %w", err)
	}
	return ok, nil
}
