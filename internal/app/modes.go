package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/arbscan/arbscan/internal/pipeline"
	"github.com/arbscan/arbscan/internal/scan"
)

// ScanMode runs a single scan cycle and writes the ranked opportunities to
// stdout as JSON. It needs no storage and exits when the cycle completes.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	minPercent, maxPercent, err := a.cfg.Scan.Window()
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}
	budgets, err := a.cfg.Scan.BudgetLadder()
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	opps, err := deps.Engine.FindOpportunities(ctx, scan.Request{
		MinPercent:          minPercent,
		MaxPercent:          maxPercent,
		Budgets:             budgets,
		RequireNetworkMatch: a.cfg.Scan.RequireNetworkMatch,
	})
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	a.logger.InfoContext(ctx, "scan complete", slog.Int("opportunities", len(opps)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(opps); err != nil {
		return fmt.Errorf("scan mode: encode results: %w", err)
	}
	return nil
}

// ServeMode runs the scanner and delivery loops until the context is
// cancelled: periodic cycles, per-subscriber fan-out over Redis, Telegram
// delivery, and S3 cycle archival when configured.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	minPercent, maxPercent, err := a.cfg.Scan.Window()
	if err != nil {
		return fmt.Errorf("serve mode: %w", err)
	}
	budgets, err := a.cfg.Scan.BudgetLadder()
	if err != nil {
		return fmt.Errorf("serve mode: %w", err)
	}

	scanner := pipeline.NewScanner(
		deps.Engine,
		deps.PreferenceStore,
		deps.BlacklistStore,
		deps.Bus,
		deps.Archiver,
		deps.Locks,
		pipeline.ScannerConfig{
			MinPercent:          minPercent,
			MaxPercent:          maxPercent,
			Budgets:             budgets,
			RequireNetworkMatch: a.cfg.Scan.RequireNetworkMatch,
		},
		a.logger,
	)

	delivery := pipeline.NewDelivery(deps.Bus, deps.Notifier, a.logger)

	orchestrator := pipeline.NewOrchestrator(scanner, delivery, a.cfg.Scan.Interval.Duration, a.logger)
	return orchestrator.Run(ctx)
}
