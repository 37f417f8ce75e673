// Package vault abstracts secret storage behind a small interface with an
// AWS Secrets Manager implementation (LocalStack-compatible) and an
// environment-variable implementation for local runs and tests.
//
// Secret names are namespaced paths like "cradle/dev/jwt".
package vault

import (
	"context"
	"encoding/json"
	"fmt"
)

// Vault is the secret storage contract. A missing secret yields a
// not-found domain error.
type Vault interface {
	GetSecret(ctx context.Context, name string) (string, error)
	PutSecret(ctx context.Context, name, value string) error
	DeleteSecret(ctx context.Context, name string) error
}

// GetSecretJSON fetches a secret and unmarshals it into out.
func GetSecretJSON(ctx context.Context, v Vault, name string, out any) error {
	raw, err := v.GetSecret(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("unmarshal secret %q: %w", name, err)
	}
	return nil
}
