package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	RunModeServer = "server"
	RunModeOnce   = "once"
)

// Config holds application configuration.
type Config struct {
	StoreDriver   string `validate:"oneof=postgres sqlite"`
	DatabaseURL   string `validate:"required_if=StoreDriver postgres"`
	EnableDBCheck bool
	SQLitePath    string `validate:"required_if=StoreDriver sqlite"`

	Port         string `validate:"required,numeric"`
	IsProduction bool
	RunMode      string `validate:"oneof=server once"`

	ArchiveDir      string `validate:"required"`
	ImportOnStartup bool

	// Live source
	BundesbankURLTemplate       string        `validate:"required,contains=%s"`
	BundesbankCurrencyDimension string        `validate:"required"`
	FetchTimeout                time.Duration `validate:"gt=0"`
	FetchPacingInterval         time.Duration `validate:"gte=0"`

	// TriggerRateLimit is a limiter formatted rate such as "10-M".
	TriggerRateLimit string `validate:"required"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORE_DRIVER", StoreDriverSQLite)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("SQLITE_PATH", "fxrates.db")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("RUN_MODE", RunModeServer)
	v.SetDefault("ARCHIVE_DIR", "data")
	v.SetDefault("IMPORT_ON_STARTUP", true)
	v.SetDefault("BUNDESBANK_URL_TEMPLATE", "https://api.statistiken.bundesbank.de/rest/data/BBEX3/D.%s.EUR.BB.AC.000")
	v.SetDefault("BUNDESBANK_CURRENCY_DIMENSION", "BBK_STD_CURRENCY")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("FETCH_PACING_INTERVAL", "2s")
	v.SetDefault("TRIGGER_RATE_LIMIT", "10-M")

	// Environment variables override defaults and .env values.
	v.AutomaticEnv()

	cfg := &Config{
		StoreDriver:                 strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseURL:                 v.GetString("PGSQL_URL"),
		EnableDBCheck:               v.GetBool("ENABLE_DB_CHECK"),
		SQLitePath:                  v.GetString("SQLITE_PATH"),
		Port:                        v.GetString("PORT"),
		IsProduction:                v.GetBool("IS_PRODUCTION"),
		RunMode:                     strings.ToLower(strings.TrimSpace(v.GetString("RUN_MODE"))),
		ArchiveDir:                  v.GetString("ARCHIVE_DIR"),
		ImportOnStartup:             v.GetBool("IMPORT_ON_STARTUP"),
		BundesbankURLTemplate:       v.GetString("BUNDESBANK_URL_TEMPLATE"),
		BundesbankCurrencyDimension: v.GetString("BUNDESBANK_CURRENCY_DIMENSION"),
		TriggerRateLimit:            v.GetString("TRIGGER_RATE_LIMIT"),
	}

	var err error
	if cfg.FetchTimeout, err = parseDuration(v, "FETCH_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.FetchPacingInterval, err = parseDuration(v, "FETCH_PACING_INTERVAL"); err != nil {
		return nil, err
	}

	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}
