package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator manages the long-running pipeline goroutines: the scan loop
// and the bus-driven delivery loop.
type Orchestrator struct {
	scanner      *Scanner
	delivery     *Delivery
	scanInterval time.Duration
	logger       *slog.Logger
}

// NewOrchestrator creates an Orchestrator. Delivery is optional; nil runs the
// scanner alone, leaving the bus for external consumers.
func NewOrchestrator(scanner *Scanner, delivery *Delivery, scanInterval time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		scanner:      scanner,
		delivery:     delivery,
		scanInterval: scanInterval,
		logger:       logger.With(slog.String("component", "orchestrator")),
	}
}

// Run starts the pipeline goroutines using an errgroup. Each goroutine
// respects ctx cancellation. If any goroutine returns a non-context error,
// the errgroup cancels the shared context and Run returns that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline orchestrator starting",
		slog.Duration("scan_interval", o.scanInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o.logger.Info("starting scanner loop")
		err := o.scanner.RunLoop(ctx, o.scanInterval)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scanner: %w", err)
	})

	if o.delivery != nil {
		g.Go(func() error {
			o.logger.Info("starting delivery loop")
			err := o.delivery.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("delivery: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("pipeline orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("pipeline orchestrator stopped cleanly")
	return nil
}
