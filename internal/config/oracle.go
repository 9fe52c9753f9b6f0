package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OracleConfig holds the price oracle's configuration.
type OracleConfig struct {
	Env            string
	APIURL         string
	APIKey         string
	RequestTimeout time.Duration
	Revalue        bool
}

// LoadOracle loads the oracle configuration from environment variables.
// The API URL and ingestion key are required.
func LoadOracle() (*OracleConfig, error) {
	_ = godotenv.Load()

	cfg := &OracleConfig{
		Env:    getEnv("ENV", "development"),
		APIURL: getEnv("TRADEBOOK_API_URL", ""),
		APIKey: getEnv("PRICE_INGEST_API_KEY", ""),
	}
	if cfg.APIURL == "" {
		return nil, errors.New("TRADEBOOK_API_URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("PRICE_INGEST_API_KEY is required")
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q", getEnv("REQUEST_TIMEOUT", ""))
	}
	cfg.RequestTimeout = timeout

	revalue, err := strconv.ParseBool(getEnv("ORACLE_REVALUE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORACLE_REVALUE: %w", err)
	}
	cfg.Revalue = revalue

	return cfg, nil
}
