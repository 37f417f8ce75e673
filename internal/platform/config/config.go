// Package config builds runtime configuration from environment variables so
// main stays lean. Profile-specific YAML layering from the original deployment
// is replaced by the PROFILE variable plus per-key env overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Profile names select environment-specific defaults.
const (
	ProfileDev  = "dev"
	ProfileProd = "prod"
	ProfileTest = "test"
)

const devJWTSecret = "dev-secret-change-me-in-production-0000"

// Config captures all runtime configuration for the API server and tooling.
type Config struct {
	Profile string
	AppName string
	Addr    string

	DatabaseURL string
	RedisURL    string

	AWSEndpointURL     string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	UploadsBucket string
	ExportsBucket string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	KafkaBrokers    string
	AuditTopic      string
	CORSOrigins     []string
	TrustedProxies  []string
	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables, applying dev defaults.
// It returns an error for configurations that must never reach production,
// such as a missing or short JWT secret outside the dev profile.
func FromEnv() (Config, error) {
	cfg := Config{
		Profile:            getenv("PROFILE", ProfileDev),
		AppName:            getenv("APP_NAME", "Cradle"),
		Addr:               getenv("ADDR", ":8000"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AWSEndpointURL:     os.Getenv("AWS_ENDPOINT_URL"),
		AWSRegion:          getenv("AWS_DEFAULT_REGION", "us-east-1"),
		AWSAccessKeyID:     getenv("AWS_ACCESS_KEY_ID", "test"),
		AWSSecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY", "test"),
		UploadsBucket:      getenv("S3_UPLOADS_BUCKET", "cradle-uploads"),
		ExportsBucket:      getenv("S3_EXPORTS_BUCKET", "cradle-exports"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenTTL:     getduration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:    getduration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		AuditTopic:         getenv("AUDIT_TOPIC", "cradle.audit"),
		CORSOrigins:        getlist("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:3010"}),
		TrustedProxies:     getlist("TRUSTED_PROXIES", nil),
		ShutdownTimeout:    getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SECRET is required in the %s profile", cfg.Profile)
		}
		cfg.JWTSecret = devJWTSecret
	}
	if len(cfg.JWTSecret) < 32 && !cfg.IsDevelopment() {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// IsProduction reports whether the prod profile is active.
func (c Config) IsProduction() bool { return c.Profile == ProfileProd }

// IsDevelopment reports whether the dev profile is active.
func (c Config) IsDevelopment() bool { return c.Profile == ProfileDev }

// SecretNamespace is the prefix under which provisioned secrets live,
// e.g. "cradle/dev".
func (c Config) SecretNamespace() string {
	return fmt.Sprintf("cradle/%s", c.Profile)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getlist(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
