package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const fallbackSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	// Server
	Port       string
	Env        string
	CORSOrigin string

	// Storage
	DataDir string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Valuation
	PriceHistoryLimit int
	RevalueSchedule   string

	// Machine price ingestion; empty disables the route
	PriceIngestAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		// Storage
		DataDir: getEnv("DATA_DIR", "./data"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", fallbackSecret),

		// Valuation
		RevalueSchedule:   getEnvAllowEmpty("REVALUE_SCHEDULE", "@every 15m"),
		PriceIngestAPIKey: os.Getenv("PRICE_INGEST_API_KEY"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	limitStr := getEnv("PRICE_HISTORY_LIMIT", "100")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		log.Printf("Warning: invalid PRICE_HISTORY_LIMIT value '%s', falling back to 100\n", limitStr)
		limit = 100
	}
	config.PriceHistoryLimit = limit

	if config.Env == "production" && config.JWTSecret == fallbackSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty is like getEnv but an explicitly empty variable wins over the default.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
