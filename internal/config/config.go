package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"example.com/ya-note/internal/stringsx"
)

type Config struct {
	DatabaseURL string `yaml:"database_url"`

	MaxOpenConns    int           `yaml:"db_max_open"`
	MaxIdleConns    int           `yaml:"db_max_idle"`
	ConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"db_conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`

	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	SessionSecret       string        `yaml:"session_secret"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
	SessionCookieSecure bool          `yaml:"session_cookie_secure"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Defaults() Config {
	return Config{
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		AutoMigrate:     true,
		HTTPAddr:        ":8080",
		ShutdownTimeout: 10 * time.Second,
		SessionTTL:      24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load reads the configuration from the environment on top of Defaults.
func Load() Config {
	return fromEnv(Defaults())
}

// LoadFile decodes a YAML file on top of Defaults, then applies the environment.
// An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	base := Defaults()
	if path == "" {
		return fromEnv(base), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &base); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fromEnv(base), nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func fromEnv(base Config) Config {
	return Config{
		DatabaseURL:         getenv("DATABASE_URL", base.DatabaseURL),
		MaxOpenConns:        getenvInt("DB_MAX_OPEN", base.MaxOpenConns),
		MaxIdleConns:        getenvInt("DB_MAX_IDLE", base.MaxIdleConns),
		ConnMaxLifetime:     getenvDuration("DB_CONN_MAX_LIFETIME", base.ConnMaxLifetime),
		ConnMaxIdleTime:     getenvDuration("DB_CONN_MAX_IDLE_TIME", base.ConnMaxIdleTime),
		AutoMigrate:         getenvBool("AUTO_MIGRATE", base.AutoMigrate),
		HTTPAddr:            getenv("HTTP_ADDR", base.HTTPAddr),
		ShutdownTimeout:     getenvDuration("SHUTDOWN_TIMEOUT", base.ShutdownTimeout),
		SessionSecret:       getenv("SESSION_SECRET", base.SessionSecret),
		SessionTTL:          getenvDuration("SESSION_TTL", base.SessionTTL),
		SessionCookieSecure: getenvBool("SESSION_COOKIE_SECURE", base.SessionCookieSecure),
		LogLevel:            stringsx.Normalize(getenv("LOG_LEVEL", base.LogLevel)),
		LogFormat:           stringsx.Normalize(getenv("LOG_FORMAT", base.LogFormat)),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
