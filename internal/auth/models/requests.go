package models

import (
	"strings"

	s "cradle/pkg/string"
	"cradle/pkg/validation"
)

// LoginRequest carries credentials for the login exchange.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// Normalize trims and lowercases the email. The password is untouched.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate validates field formats.
func (r *LoginRequest) Validate() error {
	return validation.Validate(r)
}

// RegisterRequest creates a new account in the caller's tenant.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
}

// Normalize trims and lowercases the email and trims the name.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	s.TrimStrings(&r.FullName)
}

// Validate validates field formats.
func (r *RegisterRequest) Validate() error {
	return validation.Validate(r)
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Validate validates field formats.
func (r *RefreshRequest) Validate() error {
	return validation.Validate(r)
}

// LogoutRequest revokes the presented refresh token. The access token being
// revoked alongside it comes from the Authorization header.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Validate validates field formats.
func (r *LogoutRequest) Validate() error {
	return validation.Validate(r)
}
