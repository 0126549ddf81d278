package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port             string
	Env              string
	LogLevel         string
	Storage          string
	DatabaseURL      string
	JWTSecret        string
	ArtifactDir      string
	ArtifactMaxBytes int64
	LedgerMaxRetries int
	FiscalSeries     string
}

// Load reads the configuration from the environment. godotenv has already
// merged .env into it by the time this runs.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Env:          getEnv("APP_ENV", "production"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Storage:      strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		ArtifactDir:  getEnv("ARTIFACT_DIR", "./artifacts"),
		FiscalSeries: getEnv("FISCAL_SERIES", "001"),
	}

	var err error
	if cfg.ArtifactMaxBytes, err = getInt64("ARTIFACT_MAX_BYTES", 5<<20); err != nil {
		return nil, err
	}
	retries, err := getInt64("LEDGER_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	cfg.LedgerMaxRetries = int(retries)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			getEnv("DB_PORT", "5432"),
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	if c.ArtifactMaxBytes <= 0 {
		return fmt.Errorf("ARTIFACT_MAX_BYTES must be positive")
	}
	if c.LedgerMaxRetries < 0 {
		return fmt.Errorf("LEDGER_MAX_RETRIES cannot be negative")
	}
	if c.FiscalSeries == "" || len(c.FiscalSeries) > 10 {
		return fmt.Errorf("FISCAL_SERIES must be 1 to 10 characters")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
