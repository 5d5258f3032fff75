package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Scan ──
	setDuration(&cfg.Scan.Interval, "ARBSCAN_SCAN_INTERVAL")
	setStr(&cfg.Scan.MinPercent, "ARBSCAN_SCAN_MIN_PERCENT")
	setStr(&cfg.Scan.MaxPercent, "ARBSCAN_SCAN_MAX_PERCENT")
	setStringSlice(&cfg.Scan.Budgets, "ARBSCAN_SCAN_BUDGETS")
	setBool(&cfg.Scan.RequireNetworkMatch, "ARBSCAN_SCAN_REQUIRE_NETWORK_MATCH")
	setStringSlice(&cfg.Scan.QuoteCurrencies, "ARBSCAN_SCAN_QUOTE_CURRENCIES")
	setInt(&cfg.Scan.DepthConcurrency, "ARBSCAN_SCAN_DEPTH_CONCURRENCY")

	// ── Exchanges ──
	setBool(&cfg.Binance.Enabled, "ARBSCAN_BINANCE_ENABLED")
	setStr(&cfg.Binance.ApiKey, "ARBSCAN_BINANCE_API_KEY")
	setStr(&cfg.Binance.ApiSecret, "ARBSCAN_BINANCE_API_SECRET")
	setBool(&cfg.Bybit.Enabled, "ARBSCAN_BYBIT_ENABLED")
	setStr(&cfg.Bybit.BaseURL, "ARBSCAN_BYBIT_BASE_URL")
	setStr(&cfg.Bybit.ApiKey, "ARBSCAN_BYBIT_API_KEY")
	setStr(&cfg.Bybit.ApiSecret, "ARBSCAN_BYBIT_API_SECRET")
	setBool(&cfg.Kucoin.Enabled, "ARBSCAN_KUCOIN_ENABLED")
	setStr(&cfg.Kucoin.BaseURL, "ARBSCAN_KUCOIN_BASE_URL")
	setBool(&cfg.Gateio.Enabled, "ARBSCAN_GATEIO_ENABLED")
	setStr(&cfg.Gateio.BaseURL, "ARBSCAN_GATEIO_BASE_URL")
	setStr(&cfg.Gateio.ApiKey, "ARBSCAN_GATEIO_API_KEY")
	setStr(&cfg.Gateio.ApiSecret, "ARBSCAN_GATEIO_API_SECRET")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBSCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBSCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBSCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBSCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBSCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBSCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBSCAN_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBSCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBSCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBSCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBSCAN_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "ARBSCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "ARBSCAN_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "ARBSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBSCAN_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "ARBSCAN_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "ARBSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "ARBSCAN_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBSCAN_NOTIFY_TELEGRAM_TOKEN")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSCAN_MODE")
	setStr(&cfg.LogLevel, "ARBSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
