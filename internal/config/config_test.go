package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mino")
	t.Setenv("AUTH_URL", "http://localhost:9999")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("SITE_URL", "http://localhost:3000")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres://localhost/mino", cfg.DatabaseURL)
	assert.Equal(t, "dev@mino.local", cfg.DevLoginEmail)
	assert.Equal(t, 10, int(cfg.AuthRequestTimeout.Seconds()))
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoad_SkipValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_URL", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("SITE_URL", "")
	t.Setenv("SKIP_ENV_VALIDATION", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_REQUEST_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 3, int(cfg.AuthRequestTimeout.Seconds()))
}
