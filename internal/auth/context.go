package auth

import (
	"context"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
)

// UserContext holds the authenticated user and the company they act for
type UserContext struct {
	UserID    uuid.UUID
	Email     string
	FullName  string
	Role      domain.UserRole
	CompanyID uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if the user has any of the given roles
func (u *UserContext) HasRole(roles ...domain.UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user administers their company
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// CanAccessCompany checks if the user may touch records owned by companyID
func (u *UserContext) CanAccessCompany(companyID uuid.UUID) bool {
	return u.CompanyID == companyID
}
