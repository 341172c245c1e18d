package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	SchoolID string   `json:"school_id"`
	Email    string   `json:"email"`
	jwt.RegisteredClaims
}

// Caller converts validated claims into the scope passed to services.
func (c *JWTClaims) Caller() CallerContext {
	if c == nil {
		return CallerContext{}
	}
	return CallerContext{TenantID: c.SchoolID, SubjectID: c.UserID, Role: c.Role}
}
