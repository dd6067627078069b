package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	SessionTTL    time.Duration
	AllowedOrigin string
}

// Load loads configuration from environment variables or sets defaults. In
// dev a .env file is read first.
func Load() (*Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	ttlMinutes, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./taskdeck.db"),
		SessionTTL:    time.Duration(ttlMinutes) * time.Minute,
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
