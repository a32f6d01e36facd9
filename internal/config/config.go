// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application-wide settings. Loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	// Server
	Port        string
	MetricsPort string
	BaseURL     string

	// Database
	DatabaseURL string

	// Auth
	JWTSecret      string
	SessionTTL     time.Duration
	VerifyTokenTTL time.Duration
	GoogleClientID string

	// Rate limits (requests per minute per user)
	RateLimitGeneral  int
	RateLimitRegister int

	// CORS
	CORSAllowedOrigin string
}

// Load reads configuration from the environment, after loading an optional
// .env file for local development. Missing required variables are collected
// into a single error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.Port = getEnvString("PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.Port)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	cfg.VerifyTokenTTL = getEnvDuration("VERIFY_TOKEN_TTL", 48*time.Hour)
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitRegister = getEnvInt("RATE_LIMIT_REGISTER", 10)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
