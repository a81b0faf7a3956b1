package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amityadav/newsagg/internal/guardian"
	"github.com/amityadav/newsagg/internal/newsapi"
	"github.com/amityadav/newsagg/internal/nyt"
	"github.com/amityadav/newsagg/internal/store"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	StoreDriver string
	HTTPAddr    string

	NewsAPIKey      string
	NewsAPIBaseURL  string
	GuardianAPIKey  string
	GuardianBaseURL string
	NYTAPIKey       string
	NYTBaseURL      string

	ProviderTimeout       time.Duration
	ProviderRatePerSecond float64

	RefreshSchedule string
	RefreshOnStart  bool
	FetchAPIKey     string

	LogLevel       string
	LogDevelopment bool
}

// Load loads configuration from environment variables
func Load() Config {
	return Config{
		DatabaseURL:           getEnv("DATABASE_URL", "postgres://localhost:5432/newsagg?sslmode=disable"),
		StoreDriver:           strings.ToLower(getEnv("STORE_DRIVER", store.DriverPostgres)),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		NewsAPIKey:            os.Getenv("NEWS_API_KEY"),
		NewsAPIBaseURL:        getEnv("NEWS_API_BASE_URL", newsapi.DefaultBaseURL),
		GuardianAPIKey:        os.Getenv("GUARDIAN_API_KEY"),
		GuardianBaseURL:       getEnv("GUARDIAN_BASE_URL", guardian.DefaultBaseURL),
		NYTAPIKey:             os.Getenv("NYT_API_KEY"),
		NYTBaseURL:            getEnv("NYT_BASE_URL", nyt.DefaultBaseURL),
		ProviderTimeout:       getEnvDuration("PROVIDER_TIMEOUT", 20*time.Second),
		ProviderRatePerSecond: getEnvFloat("PROVIDER_RATE_PER_SECOND", 5),
		RefreshSchedule:       getEnv("REFRESH_SCHEDULE", "0 * * * *"),
		RefreshOnStart:        getEnvBool("REFRESH_ON_START", false),
		FetchAPIKey:           os.Getenv("FETCH_API_KEY"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogDevelopment:        getEnvBool("LOG_DEVELOPMENT", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("20s") or a plain number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if i, err := strconv.Atoi(value); err == nil && i > 0 {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}
