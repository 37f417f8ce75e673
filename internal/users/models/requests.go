package models

import (
	"strings"

	s "cradle/pkg/string"
	"cradle/pkg/validation"
)

// UpdateUserRequest carries a partial profile update. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Normalize trims and lowercases the email.
func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.FullName != nil {
		s.TrimStrings(r.FullName)
	}
}

// Validate validates field formats.
func (r *UpdateUserRequest) Validate() error {
	return validation.Validate(r)
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
}

// Normalize trims and lowercases the email.
func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	s.TrimStrings(&r.FullName)
}

// Validate validates field formats.
func (r *CreateUserRequest) Validate() error {
	return validation.Validate(r)
}
