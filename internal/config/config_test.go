package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "STORE_DRIVER", "HTTP_ADDR", "NEWS_API_KEY", "PROVIDER_TIMEOUT", "PROVIDER_RATE_PER_SECOND", "REFRESH_SCHEDULE", "REFRESH_ON_START", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "postgres://localhost:5432/newsagg?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.NewsAPIKey)
	assert.Equal(t, "https://newsapi.org/v2", cfg.NewsAPIBaseURL)
	assert.Equal(t, 20*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5.0, cfg.ProviderRatePerSecond)
	assert.Equal(t, "0 * * * *", cfg.RefreshSchedule)
	assert.False(t, cfg.RefreshOnStart)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("PROVIDER_RATE_PER_SECOND", "0.5")
	t.Setenv("REFRESH_ON_START", "true")
	t.Setenv("GUARDIAN_API_KEY", "g-key")

	cfg := Load()
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 0.5, cfg.ProviderRatePerSecond)
	assert.True(t, cfg.RefreshOnStart)
	assert.Equal(t, "g-key", cfg.GuardianAPIKey)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "30")
	assert.Equal(t, 30*time.Second, getEnvDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "garbage")
	assert.Equal(t, time.Second, getEnvDuration("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "-5s")
	assert.Equal(t, time.Second, getEnvDuration("X_TIMEOUT", time.Second))
}
