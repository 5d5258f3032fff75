package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/arbscan/arbscan/internal/blob/s3"
	"github.com/arbscan/arbscan/internal/cache/redis"
	"github.com/arbscan/arbscan/internal/config"
	"github.com/arbscan/arbscan/internal/domain"
	"github.com/arbscan/arbscan/internal/exchange"
	"github.com/arbscan/arbscan/internal/notify"
	"github.com/arbscan/arbscan/internal/scan"
	"github.com/arbscan/arbscan/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Engine *scan.Engine

	// Stores (serve mode only)
	PreferenceStore domain.PreferenceStore
	BlacklistStore  domain.BlacklistStore

	// Redis plumbing (serve mode only)
	Bus   domain.OpportunityBus
	Locks domain.LockManager

	// Cycle archival, nil when S3 is disabled.
	Archiver domain.CycleArchiver

	// Notifications
	Notifier *notify.Notifier
}

// needsStorage returns true for modes that require Postgres and Redis.
func needsStorage(mode string) bool {
	return strings.ToLower(mode) == "serve"
}

// buildSources constructs one QuoteSource and one DepthSource per enabled
// exchange. Every source type implements both interfaces.
func buildSources(cfg *config.Config) ([]domain.QuoteSource, map[domain.Exchange]domain.DepthSource) {
	var quotes []domain.QuoteSource
	depth := make(map[domain.Exchange]domain.DepthSource)

	if cfg.Binance.Enabled {
		src := exchange.NewBinanceSource(cfg.Binance.ApiKey, cfg.Binance.ApiSecret)
		quotes = append(quotes, src)
		depth[domain.ExchangeBinance] = src
	}
	if cfg.Bybit.Enabled {
		src := exchange.NewBybitSource(cfg.Bybit.BaseURL, cfg.Bybit.ApiKey, cfg.Bybit.ApiSecret)
		quotes = append(quotes, src)
		depth[domain.ExchangeBybit] = src
	}
	if cfg.Kucoin.Enabled {
		src := exchange.NewKucoinSource(cfg.Kucoin.BaseURL)
		quotes = append(quotes, src)
		depth[domain.ExchangeKucoin] = src
	}
	if cfg.Gateio.Enabled {
		src := exchange.NewGateioSource(cfg.Gateio.BaseURL, cfg.Gateio.ApiKey, cfg.Gateio.ApiSecret)
		quotes = append(quotes, src)
		depth[domain.ExchangeGateio] = src
	}

	return quotes, depth
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Scan engine ---
	quotes, depth := buildSources(cfg)
	deps.Engine = scan.NewEngine(quotes, depth, scan.EngineConfig{
		QuoteCurrencies:  cfg.Scan.QuoteCurrencies,
		DepthConcurrency: cfg.Scan.DepthConcurrency,
	}, logger)

	// --- PostgreSQL and Redis (only for modes that need persistence) ---
	if needsStorage(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.PreferenceStore = postgres.NewPreferenceStore(pool)
		deps.BlacklistStore = postgres.NewBlacklistStore(pool)

		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Bus = redis.NewOpportunityBus(redisClient)
		deps.Locks = redis.NewLockManager(redisClient)
	}

	// --- S3 cycle archives ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Archiver = s3blob.NewCycleArchiver(s3Client, cfg.S3.Prefix)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
