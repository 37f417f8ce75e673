package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeConflict, "email already registered")
	require.Error(t, err)
	assert.Equal(t, "email already registered", err.Error())
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
}

func TestErrorWithoutMessageUsesCode(t *testing.T) {
	err := &Error{Code: CodeInternal}
	assert.Equal(t, "internal_error", err.Error())
}

func TestWrapPreservesOriginalCode(t *testing.T) {
	inner := New(CodeNotFound, "user not found")
	wrapped := Wrap(inner, CodeInternal, "load profile")

	assert.True(t, HasCode(wrapped, CodeNotFound), "wrapping must not mask the domain code")
	assert.Equal(t, "load profile", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrapPlainError(t *testing.T) {
	inner := fmt.Errorf("dial tcp: connection refused")
	wrapped := Wrap(inner, CodeInternal, "database unavailable")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.ErrorIs(t, wrapped, inner)
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeUnauthorized, "bad credentials")
	b := New(CodeUnauthorized, "token expired")
	assert.True(t, errors.Is(a, b))

	c := New(CodeForbidden, "admin required")
	assert.False(t, errors.Is(a, c))
}

func TestHasCodeOnNonDomainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}
