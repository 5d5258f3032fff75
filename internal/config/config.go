// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBSCAN_* environment variables.
type Config struct {
	Scan     ScanConfig     `toml:"scan"`
	Binance  ExchangeConfig `toml:"binance"`
	Bybit    ExchangeConfig `toml:"bybit"`
	Kucoin   ExchangeConfig `toml:"kucoin"`
	Gateio   ExchangeConfig `toml:"gateio"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// ScanConfig holds the cycle cadence and matching parameters. Monetary and
// percentage values are decimal strings so they enter the engine without a
// float round trip.
type ScanConfig struct {
	Interval            duration `toml:"interval"`
	MinPercent          string   `toml:"min_percent"`
	MaxPercent          string   `toml:"max_percent"`
	Budgets             []string `toml:"budgets"`
	RequireNetworkMatch bool     `toml:"require_network_match"`
	QuoteCurrencies     []string `toml:"quote_currencies"`
	DepthConcurrency    int      `toml:"depth_concurrency"`
}

// Window returns the parsed spread-window bounds.
func (s ScanConfig) Window() (min, max decimal.Decimal, err error) {
	min, err = decimal.NewFromString(s.MinPercent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parse min_percent %q: %w", s.MinPercent, err)
	}
	max, err = decimal.NewFromString(s.MaxPercent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parse max_percent %q: %w", s.MaxPercent, err)
	}
	return min, max, nil
}

// BudgetLadder returns the parsed budget ladder.
func (s ScanConfig) BudgetLadder() ([]decimal.Decimal, error) {
	budgets := make([]decimal.Decimal, 0, len(s.Budgets))
	for _, raw := range s.Budgets {
		b, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse budget %q: %w", raw, err)
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// ExchangeConfig holds one venue's toggle, endpoint, and credentials.
type ExchangeConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	ApiKey    string `toml:"api_key"`
	ApiSecret string `toml:"api_secret"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for cycle archives.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken string `toml:"telegram_token"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Scan: ScanConfig{
			Interval:            duration{5 * time.Minute},
			MinPercent:          "1",
			MaxPercent:          "100",
			Budgets:             []string{"100", "500", "1000"},
			RequireNetworkMatch: true,
			QuoteCurrencies:     []string{"USDT", "USDC", "BTC"},
			DepthConcurrency:    8,
		},
		Binance: ExchangeConfig{Enabled: true},
		Bybit:   ExchangeConfig{Enabled: true, BaseURL: "https://api.bybit.com"},
		Kucoin:  ExchangeConfig{Enabled: true, BaseURL: "https://api.kucoin.com"},
		Gateio:  ExchangeConfig{Enabled: true, BaseURL: "https://api.gateio.ws"},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbscan-data",
			Prefix:         "cycles",
			ForcePathStyle: true,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":  true, // one cycle, print, exit
	"serve": true, // periodic cycles with delivery and archiving
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Scan window and ladder.
	min, max, err := c.Scan.Window()
	switch {
	case err != nil:
		errs = append(errs, "scan: "+err.Error())
	case min.IsNegative() || max.IsNegative():
		errs = append(errs, "scan: min_percent and max_percent must be non-negative")
	case min.GreaterThan(max):
		errs = append(errs, fmt.Sprintf("scan: min_percent %s must not exceed max_percent %s", min, max))
	}
	if budgets, err := c.Scan.BudgetLadder(); err != nil {
		errs = append(errs, "scan: "+err.Error())
	} else {
		if len(budgets) == 0 {
			errs = append(errs, "scan: at least one budget is required")
		}
		for _, b := range budgets {
			if !b.IsPositive() {
				errs = append(errs, fmt.Sprintf("scan: budget %s must be positive", b))
			}
		}
	}
	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be positive")
	}
	if c.Scan.DepthConcurrency < 1 {
		errs = append(errs, "scan: depth_concurrency must be >= 1")
	}

	// Exchanges: at least two venues, and signed endpoints need credentials.
	enabled := 0
	for _, ex := range []ExchangeConfig{c.Binance, c.Bybit, c.Kucoin, c.Gateio} {
		if ex.Enabled {
			enabled++
		}
	}
	if enabled < 2 {
		errs = append(errs, "exchanges: at least two venues must be enabled for cross-exchange matching")
	}
	if c.Binance.Enabled && (c.Binance.ApiKey == "" || c.Binance.ApiSecret == "") {
		errs = append(errs, "binance: api_key and api_secret are required (coin info endpoint is signed)")
	}
	if c.Bybit.Enabled && (c.Bybit.ApiKey == "" || c.Bybit.ApiSecret == "") {
		errs = append(errs, "bybit: api_key and api_secret are required (coin info endpoint is signed)")
	}

	// Storage and delivery back the serve mode only; a one-shot scan needs
	// neither.
	if strings.ToLower(c.Mode) == "serve" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}

		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}

		if c.Notify.TelegramToken == "" {
			errs = append(errs, "notify: telegram_token is required for serve mode")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
