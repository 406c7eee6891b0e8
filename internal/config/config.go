package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port             string
	AllowedOrigins   []string
	LogLevel         string
	DatabaseURL      string
	RedisURL         string
	Environment      string
	GuestPrefix      string   // subject_id prefix marking guest traffic
	EventPageSize    int      // rows per event store page fetch
	InstitutionsFile string   // YAML file mapping CIDR prefixes to institutions
	ExcludedSubjects []string // subject ids dropped at the source (internal test accounts)
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		Environment:      getEnv("ENVIRONMENT", "production"),
		GuestPrefix:      getEnv("GUEST_PREFIX", "anon"),
		EventPageSize:    getIntEnv("EVENT_PAGE_SIZE", 1000),
		InstitutionsFile: getEnv("INSTITUTIONS_FILE", "institutions.yaml"),
		ExcludedSubjects: parseList(getEnv("EXCLUDED_SUBJECTS", "")),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// parseList parses a comma-separated value into a slice
func parseList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
