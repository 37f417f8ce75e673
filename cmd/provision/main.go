// Command provision performs idempotent environment setup: S3 buckets,
// namespaced secrets, and the seeded admin account. Safe to rerun.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cradle/internal/platform/awsconfig"
	"cradle/internal/platform/config"
	"cradle/internal/platform/database"
	"cradle/internal/platform/logger"
	"cradle/internal/provision"
	userstore "cradle/internal/users/store"
	"cradle/internal/vault"
	"cradle/migrations"
)

func main() {
	project := flag.String("project", "cradle", "Project name, prefixes bucket names")
	jwtSecret := flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret to seed. Generated if empty.")
	adminEmail := flag.String("admin-email", "", "Seeded admin email. Defaults to "+provision.DefaultAdminEmail)
	adminPassword := flag.String("admin-password", "", "Seeded admin password")
	envVault := flag.Bool("env-vault", false, "Seed secrets into process environment instead of Secrets Manager")
	flag.Parse()

	if err := run(*project, *jwtSecret, *adminEmail, *adminPassword, *envVault); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(project, jwtSecret, adminEmail, adminPassword string, useEnvVault bool) error {
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New()

	awsCfg, err := awsconfig.Load(ctx, cfg.AWSEndpointURL)
	if err != nil {
		return err
	}
	buckets := awsconfig.NewS3Client(awsCfg, cfg.AWSEndpointURL)

	var v vault.Vault
	if useEnvVault {
		v = vault.NewEnv()
	} else {
		v = vault.NewSecretsManager(awsconfig.NewSecretsManagerClient(awsCfg, cfg.AWSEndpointURL))
	}

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	var users userstore.UserStore
	if pool != nil {
		defer pool.Close()
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		users = userstore.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, seeded admin will not persist")
		users = userstore.NewMemoryStore()
	}

	p := provision.New(buckets, v, users, log)
	return p.Run(ctx, provision.Options{
		Project:         project,
		SecretNamespace: cfg.SecretNamespace(),
		JWTSecret:       jwtSecret,
		DatabaseURL:     cfg.DatabaseURL,
		AdminEmail:      adminEmail,
		AdminPassword:   adminPassword,
	})
}
