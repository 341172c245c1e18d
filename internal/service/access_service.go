package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

type studentRelationReader interface {
	TeacherHasStudent(ctx context.Context, schoolID, teacherID, studentID string) (bool, error)
	ParentHasChild(ctx context.Context, schoolID, parentID, studentID string) (bool, error)
}

// AccessService decides which students a caller may read.
type AccessService struct {
	relations studentRelationReader
}

// NewAccessService constructs an AccessService.
func NewAccessService(relations studentRelationReader) *AccessService {
	return &AccessService{relations: relations}
}

// CanViewStudent reports whether caller may read the wellbeing data of studentID.
func (s *AccessService) CanViewStudent(ctx context.Context, caller models.CallerContext, studentID string) (bool, error) {
	if caller.TenantID == "" || caller.SubjectID == "" || studentID == "" {
		return false, nil
	}

	switch caller.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return true, nil
	case models.RoleStudent:
		return caller.SubjectID == studentID, nil
	case models.RoleTeacher:
		ok, err := s.relations.TeacherHasStudent(ctx, caller.TenantID, caller.SubjectID, studentID)
		if err != nil {
			return false, fmt.Errorf("check teacher scope: %w", err)
		}
		return ok, nil
	case models.RoleParent:
		ok, err := s.relations.ParentHasChild(ctx, caller.TenantID, caller.SubjectID, studentID)
		if err != nil {
			return false, fmt.Errorf("check parent scope: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}
