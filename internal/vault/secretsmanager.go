package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	dErrors "cradle/pkg/domain-errors"
)

// SecretsManagerVault stores secrets in AWS Secrets Manager.
type SecretsManagerVault struct {
	client *secretsmanager.Client
}

var _ Vault = (*SecretsManagerVault)(nil)

// NewSecretsManager wraps a Secrets Manager client as a Vault.
func NewSecretsManager(client *secretsmanager.Client) *SecretsManagerVault {
	return &SecretsManagerVault{client: client}
}

// GetSecret fetches the current version of a secret's string value.
func (v *SecretsManagerVault) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := v.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "secret not found")
		}
		return "", fmt.Errorf("get secret %q: %w", name, err)
	}
	return aws.ToString(out.SecretString), nil
}

// PutSecret creates the secret or adds a new version to an existing one.
func (v *SecretsManagerVault) PutSecret(ctx context.Context, name, value string) error {
	_, err := v.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}

	var exists *types.ResourceExistsException
	if !errors.As(err, &exists) {
		return fmt.Errorf("create secret %q: %w", name, err)
	}

	_, err = v.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("put secret %q: %w", name, err)
	}
	return nil
}

// DeleteSecret removes a secret without a recovery window.
func (v *SecretsManagerVault) DeleteSecret(ctx context.Context, name string) error {
	_, err := v.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(name),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return dErrors.New(dErrors.CodeNotFound, "secret not found")
		}
		return fmt.Errorf("delete secret %q: %w", name, err)
	}
	return nil
}
