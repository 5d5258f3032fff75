package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Binance.ApiKey)
	redact(&out.Binance.ApiSecret)
	redact(&out.Bybit.ApiKey)
	redact(&out.Bybit.ApiSecret)
	redact(&out.Gateio.ApiKey)
	redact(&out.Gateio.ApiSecret)

	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)
	redact(&out.Redis.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Notify.TelegramToken)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Scan.Budgets != nil {
		out.Scan.Budgets = make([]string, len(cfg.Scan.Budgets))
		copy(out.Scan.Budgets, cfg.Scan.Budgets)
	}
	if cfg.Scan.QuoteCurrencies != nil {
		out.Scan.QuoteCurrencies = make([]string, len(cfg.Scan.QuoteCurrencies))
		copy(out.Scan.QuoteCurrencies, cfg.Scan.QuoteCurrencies)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
