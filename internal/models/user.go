package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTeacher    UserRole = "TEACHER"
	RoleParent     UserRole = "PARENT"
	RoleStudent    UserRole = "STUDENT"
)

// CallerContext is the resolved identity and scope of an authenticated request.
type CallerContext struct {
	TenantID  string
	SubjectID string
	Role      UserRole
}

// IsAdmin reports whether the caller administers the whole tenant.
func (c CallerContext) IsAdmin() bool {
	return c.Role == RoleAdmin || c.Role == RoleSuperAdmin
}
