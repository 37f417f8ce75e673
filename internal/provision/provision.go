// Package provision performs one-shot, idempotent setup of the emulated
// cloud environment: object buckets, namespaced secrets, and the seeded
// admin account. Safe to run repeatedly; existing resources are left
// untouched.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/secrets"

	"cradle/internal/vault"

	usermodels "cradle/internal/users/models"
	userstore "cradle/internal/users/store"
)

// Default seeded admin credentials for local development.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "password"
)

// BucketAPI is the slice of the S3 client the provisioner needs.
type BucketAPI interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Options configures a provisioning run.
type Options struct {
	// Project prefixes bucket names: <project>-uploads, <project>-exports.
	Project string
	// SecretNamespace prefixes seeded secret paths, e.g. "cradle/dev".
	SecretNamespace string
	// JWTSecret is seeded under <namespace>/jwt. Generated when empty.
	JWTSecret string
	// DatabaseURL is seeded under <namespace>/database.
	DatabaseURL string

	AdminEmail    string
	AdminPassword string
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.AdminEmail == "" {
		out.AdminEmail = DefaultAdminEmail
	}
	if out.AdminPassword == "" {
		out.AdminPassword = DefaultAdminPassword
	}
	return out
}

// Buckets returns the bucket names a project needs.
func (o *Options) Buckets() []string {
	return []string{o.Project + "-uploads", o.Project + "-exports"}
}

// Provisioner runs the provisioning steps in order.
type Provisioner struct {
	buckets BucketAPI
	vault   vault.Vault
	users   userstore.UserStore
	logger  *slog.Logger
}

// New wires a provisioner.
func New(buckets BucketAPI, v vault.Vault, users userstore.UserStore, logger *slog.Logger) *Provisioner {
	return &Provisioner{buckets: buckets, vault: v, users: users, logger: logger}
}

// Run executes all provisioning steps sequentially and stops on the first
// hard failure.
func (p *Provisioner) Run(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()

	if err := p.EnsureBuckets(ctx, opts); err != nil {
		return err
	}
	if err := p.EnsureSecrets(ctx, opts); err != nil {
		return err
	}
	if err := p.EnsureAdmin(ctx, opts); err != nil {
		return err
	}
	return nil
}

// EnsureBuckets creates the project buckets, suppressing already-exists
// failures so a rerun is a no-op.
func (p *Provisioner) EnsureBuckets(ctx context.Context, opts Options) error {
	for _, bucket := range opts.Buckets() {
		_, err := p.buckets.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(bucket),
		})
		if err != nil && !bucketAlreadyExists(err) {
			return fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		p.logger.InfoContext(ctx, "bucket ready", "bucket", bucket, "existed", err != nil)
	}
	return nil
}

// EnsureSecrets seeds the JWT signing secret and database credentials
// under the configured namespace. Existing secrets are never overwritten.
func (p *Provisioner) EnsureSecrets(ctx context.Context, opts Options) error {
	jwtSecret := opts.JWTSecret
	if jwtSecret == "" {
		generated, err := secrets.Generate()
		if err != nil {
			return err
		}
		jwtSecret = generated
	}
	if err := p.seedSecret(ctx, opts.SecretNamespace+"/jwt", jwtSecret); err != nil {
		return err
	}

	if opts.DatabaseURL != "" {
		if err := p.seedSecret(ctx, opts.SecretNamespace+"/database", opts.DatabaseURL); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) seedSecret(ctx context.Context, name, value string) error {
	_, err := p.vault.GetSecret(ctx, name)
	if err == nil {
		p.logger.InfoContext(ctx, "secret already seeded", "secret", name)
		return nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return fmt.Errorf("check secret %q: %w", name, err)
	}
	if err := p.vault.PutSecret(ctx, name, value); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "secret seeded", "secret", name)
	return nil
}

// EnsureAdmin seeds the default-tenant admin account used by local
// development and the end-to-end checks.
func (p *Provisioner) EnsureAdmin(ctx context.Context, opts Options) error {
	_, err := p.users.GetByEmail(ctx, usermodels.DefaultTenantID, opts.AdminEmail)
	if err == nil {
		p.logger.InfoContext(ctx, "admin user already seeded", "email", opts.AdminEmail)
		return nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hash, err := secrets.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}
	admin := &usermodels.User{
		ID:           uuid.New(),
		TenantID:     usermodels.DefaultTenantID,
		Email:        opts.AdminEmail,
		PasswordHash: hash,
		FullName:     "Administrator",
		Roles:        []string{usermodels.RoleAdmin, usermodels.RoleUser},
		IsActive:     true,
		IsVerified:   true,
	}
	if err := p.users.Create(ctx, admin); err != nil {
		// A concurrent seed run may have won the race.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil
		}
		return fmt.Errorf("seed admin user: %w", err)
	}
	p.logger.InfoContext(ctx, "admin user seeded", "email", opts.AdminEmail)
	return nil
}

func bucketAlreadyExists(err error) bool {
	var owned *s3types.BucketAlreadyOwnedByYou
	var exists *s3types.BucketAlreadyExists
	return errors.As(err, &owned) || errors.As(err, &exists)
}
