package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PROFILE", "ADDR", "JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "S3_UPLOADS_BUCKET", "S3_EXPORTS_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProfileDev, cfg.Profile)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "cradle-uploads", cfg.UploadsBucket)
	assert.Equal(t, "cradle-exports", cfg.ExportsBucket)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.NotEmpty(t, cfg.JWTSecret, "dev profile falls back to a built-in secret")
	assert.Equal(t, "cradle/dev", cfg.SecretNamespace())
}

func TestFromEnvLeavesBackingServicesUnset(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	// No localhost guesses: an empty URL is what selects the in-memory
	// store and the process-local denylist at wiring time.
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PROFILE", "test")
	t.Setenv("ADDR", ":9000")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnvProductionRequiresSecret(t *testing.T) {
	t.Setenv("PROFILE", "prod")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvRejectsShortSecretOutsideDev(t *testing.T) {
	t.Setenv("PROFILE", "prod")
	t.Setenv("JWT_SECRET", "too-short")

	_, err := FromEnv()
	assert.Error(t, err)
}
