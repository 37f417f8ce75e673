package models

import (
	"time"

	"github.com/google/uuid"
)

// Role names used for authorization checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultTenantID is the tenant used when a request carries no X-Tenant-ID
// header. Single-tenant deployments only ever see this tenant.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// User is a tenant-scoped account. (TenantID, Email) is unique.
type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Roles        []string
	IsActive     bool
	IsVerified   bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole checks if the user has a specific role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Clone returns a deep copy so in-memory stores never leak shared slices.
func (u *User) Clone() *User {
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		clone.LastLoginAt = &t
	}
	return &clone
}
