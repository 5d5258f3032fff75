// Package pipeline wires the scan engine, stores, bus, archiver, and
// notifier into long-running loops.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
	"github.com/arbscan/arbscan/internal/scan"
)

// cycleLockKey serializes scan cycles across replicas. The lock manager
// namespaces it under the application prefix.
const cycleLockKey = "scan-cycle"

// OpportunityFinder runs one scan cycle and returns the ranked result.
type OpportunityFinder interface {
	FindOpportunities(ctx context.Context, req scan.Request) ([]domain.Opportunity, error)
}

// ScannerConfig holds the cycle parameters shared by every subscriber.
type ScannerConfig struct {
	MinPercent          decimal.Decimal
	MaxPercent          decimal.Decimal
	Budgets             []decimal.Decimal
	RequireNetworkMatch bool
}

// Scanner drives periodic scan cycles: it runs the engine once per tick,
// fans the ranked result out per subscriber, and archives the full cycle.
type Scanner struct {
	engine    OpportunityFinder
	prefs     domain.PreferenceStore
	blacklist domain.BlacklistStore
	bus       domain.OpportunityBus
	archiver  domain.CycleArchiver
	locks     domain.LockManager
	cfg       ScannerConfig
	logger    *slog.Logger
}

// NewScanner creates a Scanner. The bus, archiver, and lock manager are
// optional; a nil collaborator disables that step.
func NewScanner(
	engine OpportunityFinder,
	prefs domain.PreferenceStore,
	blacklist domain.BlacklistStore,
	bus domain.OpportunityBus,
	archiver domain.CycleArchiver,
	locks domain.LockManager,
	cfg ScannerConfig,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		engine:    engine,
		prefs:     prefs,
		blacklist: blacklist,
		bus:       bus,
		archiver:  archiver,
		locks:     locks,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "scanner")),
	}
}

// Run executes a single scan cycle. When a lock manager is configured and
// another replica holds the cycle lock, the cycle is skipped without error.
func (s *Scanner) Run(ctx context.Context, lockTTL time.Duration) error {
	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, cycleLockKey, lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				s.logger.DebugContext(ctx, "cycle lock held by another replica, skipping")
				return nil
			}
			return fmt.Errorf("acquiring cycle lock: %w", err)
		}
		defer release()
	}

	startedAt := time.Now().UTC()

	opps, err := s.engine.FindOpportunities(ctx, scan.Request{
		MinPercent:          s.cfg.MinPercent,
		MaxPercent:          s.cfg.MaxPercent,
		Budgets:             s.cfg.Budgets,
		RequireNetworkMatch: s.cfg.RequireNetworkMatch,
	})
	if err != nil {
		return fmt.Errorf("scan cycle: %w", err)
	}

	s.logger.InfoContext(ctx, "scan cycle complete",
		slog.Int("opportunities", len(opps)),
		slog.Duration("took", time.Since(startedAt)),
	)

	if err := s.fanOut(ctx, opps); err != nil {
		s.logger.ErrorContext(ctx, "fan-out failed", slog.String("error", err.Error()))
	}

	if s.archiver != nil {
		key, err := s.archiver.ArchiveCycle(ctx, startedAt, opps)
		if err != nil {
			s.logger.ErrorContext(ctx, "cycle archive failed", slog.String("error", err.Error()))
		} else {
			s.logger.DebugContext(ctx, "cycle archived", slog.String("key", key))
		}
	}

	return nil
}

// fanOut filters the cycle result down to each subscriber's criteria and
// publishes the per-user sets on the bus. Subscribers whose filter yields
// nothing are skipped.
func (s *Scanner) fanOut(ctx context.Context, opps []domain.Opportunity) error {
	if s.bus == nil || len(opps) == 0 {
		return nil
	}

	prefs, err := s.prefs.List(ctx)
	if err != nil {
		return fmt.Errorf("listing preferences: %w", err)
	}
	if len(prefs) == 0 {
		return nil
	}

	blacklist, err := s.blacklist.List(ctx)
	if err != nil {
		return fmt.Errorf("listing blacklist: %w", err)
	}

	published := 0
	for _, p := range prefs {
		criteria := p.Criteria(blacklist)
		eligible := scan.FilterOpportunities(opps, criteria)
		if len(eligible) == 0 {
			continue
		}

		if err := s.bus.Publish(ctx, p.ChatID, eligible); err != nil {
			s.logger.ErrorContext(ctx, "publish failed",
				slog.Int64("chat_id", p.ChatID),
				slog.String("error", err.Error()),
			)
			continue
		}
		published++
	}

	s.logger.InfoContext(ctx, "cycle fan-out complete",
		slog.Int("subscribers", len(prefs)),
		slog.Int("published", published),
	)
	return nil
}

// RunLoop runs scan cycles on a repeating interval until the context is
// cancelled. The lock TTL tracks the interval so a crashed replica's lock
// expires before the next cycle is due.
func (s *Scanner) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	s.runCycle(ctx, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scanner loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx, interval)
		}
	}
}

// runCycle runs one cycle and logs failures. A cycle voided by shutdown is
// not a failure.
func (s *Scanner) runCycle(ctx context.Context, interval time.Duration) {
	err := s.Run(ctx, interval)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.logger.ErrorContext(ctx, "scan cycle failed", slog.String("error", err.Error()))
}
