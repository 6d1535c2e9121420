package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	// Fixed-window rate limits for sensitive operations
	RateLimitMaxAttempts int
	RateLimitWindow      time.Duration

	// volunteer_work conversion
	SkillConversionRate float64
	WeeklyHoursCap      float64
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),
	}

	var err error
	cfg.RateLimitMaxAttempts, err = parseInt(getEnv("RATE_LIMIT_MAX_ATTEMPTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX_ATTEMPTS: %w", err)
	}
	cfg.RateLimitWindow, err = time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.SkillConversionRate, err = parseFloat(getEnv("SKILL_CONVERSION_RATE", "0.1"))
	if err != nil {
		return nil, fmt.Errorf("invalid SKILL_CONVERSION_RATE: %w", err)
	}
	cfg.WeeklyHoursCap, err = parseFloat(getEnv("WEEKLY_HOURS_CAP", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_HOURS_CAP: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
