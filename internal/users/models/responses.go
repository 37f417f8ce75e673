package models

import "time"

// UserResponse is the public representation of a user. The password hash
// never leaves the service boundary.
type UserResponse struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	Roles       []string   `json:"roles"`
	IsActive    bool       `json:"is_active"`
	IsVerified  bool       `json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewUserResponse maps a user to its public representation.
func NewUserResponse(u *User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:          u.ID.String(),
		TenantID:    u.TenantID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		Roles:       roles,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
