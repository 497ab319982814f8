// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Supported ledger drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DBDriver    string
	DBPath      string
	DatabaseURL string

	ModelPath   string
	VocabPath   string
	DatasetPath string

	SeedOnStart bool
	SeedWorkers int

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: CREDITPANEL_LISTEN_ADDR (127.0.0.1:8080),
// CREDITPANEL_DB_DRIVER (sqlite), CREDITPANEL_DB_PATH (creditpanel.db),
// CREDITPANEL_MODEL_PATH (model.json), CREDITPANEL_VOCAB_PATH (vocabulary.yaml),
// CREDITPANEL_DATASET_PATH (credit_data.csv), CREDITPANEL_SEED_ON_START (true),
// CREDITPANEL_SEED_WORKERS (4), CREDITPANEL_LOG_LEVEL (info),
// CREDITPANEL_LOG_FORMAT (text). CREDITPANEL_DATABASE_URL is required when the
// driver is postgres.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  envOr("CREDITPANEL_LISTEN_ADDR", "127.0.0.1:8080"),
		DBDriver:    envOr("CREDITPANEL_DB_DRIVER", DriverSQLite),
		DBPath:      envOr("CREDITPANEL_DB_PATH", "creditpanel.db"),
		DatabaseURL: os.Getenv("CREDITPANEL_DATABASE_URL"),
		ModelPath:   envOr("CREDITPANEL_MODEL_PATH", "model.json"),
		VocabPath:   envOr("CREDITPANEL_VOCAB_PATH", "vocabulary.yaml"),
		DatasetPath: envOr("CREDITPANEL_DATASET_PATH", "credit_data.csv"),
		SeedOnStart: true,
		SeedWorkers: 4,
		LogLevel:    slog.LevelInfo,
		LogFormat:   envOr("CREDITPANEL_LOG_FORMAT", "text"),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("CREDITPANEL_DATABASE_URL is required when CREDITPANEL_DB_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("CREDITPANEL_DB_DRIVER has invalid value %q: want sqlite or postgres", cfg.DBDriver)
	}

	if v, ok := os.LookupEnv("CREDITPANEL_SEED_ON_START"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CREDITPANEL_SEED_ON_START has invalid boolean %q: %w", v, err)
		}
		cfg.SeedOnStart = parsed
	}

	if v, ok := os.LookupEnv("CREDITPANEL_SEED_WORKERS"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CREDITPANEL_SEED_WORKERS has invalid integer %q: %w", v, err)
		}
		if parsed < 1 {
			return nil, fmt.Errorf("CREDITPANEL_SEED_WORKERS must be at least 1, got %d", parsed)
		}
		cfg.SeedWorkers = parsed
	}

	if v, ok := os.LookupEnv("CREDITPANEL_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("CREDITPANEL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("CREDITPANEL_LOG_FORMAT has invalid value %q: want text or json", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
