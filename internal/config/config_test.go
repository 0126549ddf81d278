package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("ARTIFACT_MAX_BYTES", "")
	t.Setenv("LEDGER_MAX_RETRIES", "")
	t.Setenv("FISCAL_SERIES", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, int64(5<<20), cfg.ArtifactMaxBytes)
	assert.Equal(t, 3, cfg.LedgerMaxRetries)
	assert.Equal(t, "001", cfg.FiscalSeries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.DatabaseURL, "host=localhost")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"storage":     {"STORAGE": "mongo"},
		"retries":     {"LEDGER_MAX_RETRIES": "three"},
		"negative":    {"LEDGER_MAX_RETRIES": "-1"},
		"level":       {"LOG_LEVEL": "trace"},
		"no secret":   {"APP_ENV": "production", "JWT_SECRET": ""},
		"max bytes":   {"ARTIFACT_MAX_BYTES": "0"},
		"long series": {"FISCAL_SERIES": "ABCDEFGHIJK"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
