package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, time.Hour, cfg.JWTExpiration)
		assert.Equal(t, "x-access-token", cfg.AuthHeader)
		assert.Equal(t, DriverSQLite, cfg.DBDriver)
		assert.Equal(t, 5*time.Second, cfg.DBQueryTimeout)
		assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
		assert.Equal(t, 0, cfg.ListMaxLimit)
		assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SERVER_PORT", ":9090")
		t.Setenv("JWT_EXPIRATION_HOURS", "-2")
		t.Setenv("LIST_MAX_LIMIT", "100")
		t.Setenv("DB_QUERY_TIMEOUT", "250ms")
		t.Setenv("LOGIN_RATE_LIMIT", "abc")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.ServerPort)
		assert.Equal(t, time.Hour, cfg.JWTExpiration)
		assert.Equal(t, 100, cfg.ListMaxLimit)
		assert.Equal(t, 250*time.Millisecond, cfg.DBQueryTimeout)
		assert.Equal(t, 10, cfg.LoginRateLimit)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	})

	t.Run("postgres needs url", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DRIVER", "pgx")
		t.Setenv("DATABASE_URL", "")
		_, err := LoadConfig()
		require.Error(t, err)

		t.Setenv("DATABASE_URL", "postgres://localhost/projecthub")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, DriverPostgres, cfg.DBDriver)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DRIVER", "mysql")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}
