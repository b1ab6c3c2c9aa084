package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ORIGIN", "APP_ENV", "GIN_MODE", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME", "DB_DSN",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"UPLOAD_DIR", "UPLOAD_URL_PREFIX", "MAX_UPLOAD_MB",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
}

// clearEnv unsets every key LoadConfig reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiration())
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "root:@tcp(localhost:3306)/hms?charset=utf8mb4&parseTime=True&loc=UTC", cfg.Database.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoadConfig_PostgresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USERNAME", "hms")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "host=localhost user=hms password=secret dbname=hms port=5432 sslmode=disable TimeZone=UTC", cfg.Database.DSN)
}

func TestLoadConfig_ExplicitDSNWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file::memory:?cache=shared")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Database.DSN)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad expiration", "JWT_EXPIRATION_HOURS", "soon"},
		{"bad redis db", "REDIS_DB", "zero"},
		{"bad upload size", "MAX_UPLOAD_MB", "ten"},
		{"bad rate window", "RATE_LIMIT_WINDOW", "forever"},
		{"unknown driver", "DB_DRIVER", "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
