package domain

import (
	"time"

	"github.com/halcyonstudio/portal/pkg/idx"
)

// Staff roles. Scopes are derived from the role at login time.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           idx.ID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScopesForRole maps a staff role to its permission scopes.
func ScopesForRole(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{"portal:read", "portal:write", "portal:admin"}
	case RoleStaff:
		return []string{"portal:read", "portal:write"}
	default:
		return []string{"portal:read"}
	}
}
