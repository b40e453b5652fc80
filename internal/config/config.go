package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	AWS      AWSConfig
	Database DatabaseConfig
	Queue    QueueConfig
	Logging  LoggingConfig
	Catalog  CatalogConfig
	Quotes   QuoteConfig
	Rates    RatesConfig
}

// AWSConfig holds AWS-specific configuration
type AWSConfig struct {
	Region string
}

// DatabaseConfig holds DynamoDB configuration
type DatabaseConfig struct {
	QuoteTableName      string
	SubmissionTableName string
	Endpoint            string // For local testing
}

// QueueConfig holds SQS configuration
type QueueConfig struct {
	SubmissionQueueURL string
	Endpoint           string // For local testing
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// CatalogConfig points at the reference data file
type CatalogConfig struct {
	Path string
}

// QuoteConfig controls how long a priced quote stays submittable
type QuoteConfig struct {
	TTL time.Duration
}

// RatesConfig holds the crypto price API settings
type RatesConfig struct {
	BaseURL      string
	BaseCurrency string
	CacheTTL     time.Duration
	Timeout      time.Duration
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	quoteTTL, err := getEnvInt("QUOTE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	ratesCache, err := getEnvInt("RATES_CACHE_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AWS: AWSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		Database: DatabaseConfig{
			QuoteTableName:      getEnv("QUOTE_TABLE", ""),
			SubmissionTableName: getEnv("SUBMISSION_TABLE", "submissions"),
			Endpoint:            getEnv("DYNAMODB_ENDPOINT", ""), // Empty for AWS, set for local
		},
		Queue: QueueConfig{
			SubmissionQueueURL: getEnv("SUBMISSION_QUEUE_URL", ""),
			Endpoint:           getEnv("SQS_ENDPOINT", ""), // Empty for AWS, set for local
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
		Quotes: QuoteConfig{
			TTL: time.Duration(quoteTTL) * time.Second,
		},
		Rates: RatesConfig{
			BaseURL:      getEnv("RATES_BASE_URL", "https://api.coingecko.com"),
			BaseCurrency: getEnv("RATES_BASE_CURRENCY", "SGD"),
			CacheTTL:     time.Duration(ratesCache) * time.Second,
			Timeout:      10 * time.Second,
		},
	}

	// Validate required fields
	if cfg.Database.QuoteTableName == "" {
		return nil, fmt.Errorf("QUOTE_TABLE is required")
	}

	if cfg.Catalog.Path == "" {
		return nil, fmt.Errorf("CATALOG_PATH is required")
	}

	if cfg.Quotes.TTL <= 0 {
		return nil, fmt.Errorf("QUOTE_TTL_SECONDS must be positive")
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
