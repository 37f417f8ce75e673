package vault

import (
	"context"
	"os"
	"strings"
	"sync"

	dErrors "cradle/pkg/domain-errors"
)

// EnvVault reads secrets from environment variables, mapping the secret
// path to a variable name: "cradle/dev/jwt" becomes "CRADLE_DEV_JWT".
// Writes land in an in-process overlay, not the real environment, so dev
// runs can seed secrets without mutating the parent process.
type EnvVault struct {
	mu      sync.RWMutex
	overlay map[string]string
}

var _ Vault = (*EnvVault)(nil)

func NewEnv() *EnvVault {
	return &EnvVault{overlay: make(map[string]string)}
}

// EnvName maps a secret path to its environment variable name.
func EnvName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return mapped
}

func (v *EnvVault) GetSecret(_ context.Context, name string) (string, error) {
	key := EnvName(name)

	v.mu.RLock()
	value, ok := v.overlay[key]
	v.mu.RUnlock()
	if ok {
		return value, nil
	}

	if value, ok := os.LookupEnv(key); ok {
		return value, nil
	}
	return "", dErrors.New(dErrors.CodeNotFound, "secret not found")
}

func (v *EnvVault) PutSecret(_ context.Context, name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overlay[EnvName(name)] = value
	return nil
}

func (v *EnvVault) DeleteSecret(_ context.Context, name string) error {
	key := EnvName(name)

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.overlay[key]; ok {
		delete(v.overlay, key)
		return nil
	}
	if _, ok := os.LookupEnv(key); ok {
		// Environment-backed secrets cannot be deleted from here.
		return dErrors.New(dErrors.CodeBadRequest, "secret is environment-backed")
	}
	return dErrors.New(dErrors.CodeNotFound, "secret not found")
}
