package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cradle/pkg/domain-errors"
)

type sample struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Color    string `validate:"omitempty,oneof=blue green red"`
}

func TestValidateOK(t *testing.T) {
	err := Validate(&sample{Email: "user@example.com", Password: "correct-horse"})
	assert.NoError(t, err)
}

func TestValidateRequired(t *testing.T) {
	err := Validate(&sample{Password: "correct-horse"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "email is required", err.Error())
}

func TestValidateEmailFormat(t *testing.T) {
	err := Validate(&sample{Email: "not-an-email", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, "email must be a valid email", err.Error())
}

func TestValidateMinLength(t *testing.T) {
	err := Validate(&sample{Email: "user@example.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, "password must be at least 8 characters", err.Error())
}

func TestValidateOneOf(t *testing.T) {
	err := Validate(&sample{Email: "user@example.com", Password: "correct-horse", Color: "mauve"})
	require.Error(t, err)
	assert.Equal(t, "color must be one of: blue green red", err.Error())
}
