package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns defaults patched to pass Validate in serve mode.
func validConfig() Config {
	cfg := Defaults()
	cfg.Binance.ApiKey = "k"
	cfg.Binance.ApiSecret = "s"
	cfg.Bybit.ApiKey = "k"
	cfg.Bybit.ApiSecret = "s"
	cfg.Notify.TelegramToken = "token"
	return cfg
}

func TestDefaultsValidateInScanMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "scan"
	// Public-only venues suffice for a one-shot scan.
	cfg.Binance.Enabled = false
	cfg.Bybit.Enabled = false
	require.NoError(t, cfg.Validate())
}

func TestValidateServeMode(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg.Notify.TelegramToken = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_token")
}

func TestValidateRejectsBadWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Scan.MinPercent = "10"
	cfg.Scan.MaxPercent = "5"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_percent")

	cfg = validConfig()
	cfg.Scan.MinPercent = "abc"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadBudgets(t *testing.T) {
	cfg := validConfig()
	cfg.Scan.Budgets = []string{"100", "0"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget")

	cfg.Scan.Budgets = nil
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresTwoVenues(t *testing.T) {
	cfg := validConfig()
	cfg.Bybit.Enabled = false
	cfg.Kucoin.Enabled = false
	cfg.Gateio.Enabled = false
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two venues")
}

func TestValidateRequiresSignedVenueCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Binance.ApiSecret = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binance")
}

func TestScanConfigParsers(t *testing.T) {
	s := ScanConfig{MinPercent: "1.5", MaxPercent: "20", Budgets: []string{"100", "2500.50"}}

	min, max, err := s.Window()
	require.NoError(t, err)
	assert.Equal(t, "1.5", min.String())
	assert.Equal(t, "20", max.String())

	budgets, err := s.BudgetLadder()
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "2500.5", budgets[1].String())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "scan"

[scan]
interval = "30s"
min_percent = "2"

[kucoin]
base_url = "http://localhost:8080"
`), 0o600))

	t.Setenv("ARBSCAN_SCAN_MAX_PERCENT", "50")
	t.Setenv("ARBSCAN_SCAN_BUDGETS", "250, 750")
	t.Setenv("ARBSCAN_NOTIFY_TELEGRAM_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.Scan.Interval.Duration)
	assert.Equal(t, "2", cfg.Scan.MinPercent)
	assert.Equal(t, "50", cfg.Scan.MaxPercent, "env overrides file and defaults")
	assert.Equal(t, []string{"250", "750"}, cfg.Scan.Budgets)
	assert.Equal(t, "http://localhost:8080", cfg.Kucoin.BaseURL)
	assert.Equal(t, "from-env", cfg.Notify.TelegramToken)
	assert.True(t, cfg.Gateio.Enabled, "untouched sections keep defaults")
}

func TestRedactedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Password = "hunter2"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Binance.ApiKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	assert.Equal(t, "hunter2", cfg.Postgres.Password, "original untouched")

	red.Scan.Budgets[0] = "mutated"
	assert.Equal(t, "100", cfg.Scan.Budgets[0])
}
