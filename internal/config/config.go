package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Auth provider
	AuthURL       string
	AuthJWTSecret string

	// Site
	SiteURL string

	// Billing (optional)
	StripeSecretKey string

	// Dev login seed user (development only)
	DevLoginEmail    string
	DevLoginPassword string

	// Auth provider HTTP client
	AuthRequestTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AuthURL:            getEnv("AUTH_URL", ""),
		AuthJWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
		SiteURL:            getEnv("SITE_URL", ""),
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
		DevLoginEmail:      getEnv("DEV_LOGIN_EMAIL", "dev@mino.local"),
		DevLoginPassword:   getEnv("DEV_LOGIN_PASSWORD", "password"),
		AuthRequestTimeout: time.Duration(getEnvInt("AUTH_REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	// Tooling (migrations, scripts) runs without a full environment.
	if _, skip := os.LookupEnv("SKIP_ENV_VALIDATION"); skip {
		return cfg, nil
	}

	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"AUTH_URL", cfg.AuthURL},
		{"AUTH_JWT_SECRET", cfg.AuthJWTSecret},
		{"SITE_URL", cfg.SiteURL},
	}
	for _, v := range required {
		if v.value == "" {
			return nil, fmt.Errorf("%s environment variable is required", v.name)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
// Dev login and insecure cookies are only allowed here.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
