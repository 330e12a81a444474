package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()

	cfg := Load()
	require.Equal(t, "", cfg.DatabaseURL)
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
	require.True(t, cfg.AutoMigrate)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.SessionCookieSecure)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("valid overrides", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
		os.Setenv("DB_MAX_OPEN", "5")
		os.Setenv("DB_MAX_IDLE", "2")
		os.Setenv("DB_CONN_MAX_LIFETIME", "1m")
		os.Setenv("DB_CONN_MAX_IDLE_TIME", "10s")
		os.Setenv("HTTP_ADDR", ":9999")
		os.Setenv("SESSION_TTL", "2h")
		os.Setenv("SESSION_COOKIE_SECURE", "true")
		os.Setenv("AUTO_MIGRATE", "false")
		os.Setenv("LOG_LEVEL", " DEBUG ")

		cfg := Load()
		require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.DatabaseURL)
		require.Equal(t, 5, cfg.MaxOpenConns)
		require.Equal(t, 2, cfg.MaxIdleConns)
		require.Equal(t, time.Minute, cfg.ConnMaxLifetime)
		require.Equal(t, 10*time.Second, cfg.ConnMaxIdleTime)
		require.Equal(t, ":9999", cfg.HTTPAddr)
		require.Equal(t, 2*time.Hour, cfg.SessionTTL)
		require.True(t, cfg.SessionCookieSecure)
		require.False(t, cfg.AutoMigrate)
		require.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DB_MAX_OPEN", "abc")
		os.Setenv("DB_MAX_IDLE", "xyz")
		os.Setenv("DB_CONN_MAX_LIFETIME", "bad")
		os.Setenv("DB_CONN_MAX_IDLE_TIME", "bad")
		os.Setenv("AUTO_MIGRATE", "maybe")

		cfg := Load()
		require.Equal(t, 20, cfg.MaxOpenConns)
		require.Equal(t, 10, cfg.MaxIdleConns)
		require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
		require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
		require.True(t, cfg.AutoMigrate)
	})
}

func TestLoadFile(t *testing.T) {
	t.Cleanup(os.Clearenv)
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "ya-note.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://file/db
http_addr: ":7070"
session_ttl: 90m
db_max_open: 3
log_format: console
`), 0o600))

	t.Run("file values", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, "postgres://file/db", cfg.DatabaseURL)
		require.Equal(t, ":7070", cfg.HTTPAddr)
		require.Equal(t, 90*time.Minute, cfg.SessionTTL)
		require.Equal(t, 3, cfg.MaxOpenConns)
		require.Equal(t, 10, cfg.MaxIdleConns)
		require.Equal(t, "console", cfg.LogFormat)
	})

	t.Run("env wins over file", func(t *testing.T) {
		os.Setenv("HTTP_ADDR", ":6060")
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, ":6060", cfg.HTTPAddr)
		require.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("http_addr: [unterminated"), 0o600))
		_, err := LoadFile(bad)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://x"
	cfg.SessionSecret = "short"
	require.Error(t, cfg.Validate())

	cfg.SessionSecret = "0123456789abcdef"
	require.NoError(t, cfg.Validate())
}
