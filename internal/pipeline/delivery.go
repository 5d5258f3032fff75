package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arbscan/arbscan/internal/domain"
)

// Dispatcher delivers a subscriber's opportunities through the configured
// senders.
type Dispatcher interface {
	NotifyOpportunities(ctx context.Context, chatID int64, opps []domain.Opportunity) error
}

// Delivery consumes per-user opportunity messages from the bus and hands them
// to the notifier. It is the decoupled consumer half of the scanner's fan-out.
type Delivery struct {
	bus      domain.OpportunityBus
	notifier Dispatcher
	logger   *slog.Logger
}

// NewDelivery creates a Delivery loop over the given bus and notifier.
func NewDelivery(bus domain.OpportunityBus, notifier Dispatcher, logger *slog.Logger) *Delivery {
	return &Delivery{
		bus:      bus,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "delivery")),
	}
}

// Run subscribes to the bus and delivers each message until the context is
// cancelled or the bus channel closes. Delivery failures are logged and the
// loop continues; one subscriber's dead chat must not stall the stream.
func (d *Delivery) Run(ctx context.Context) error {
	msgs, err := d.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to opportunity bus: %w", err)
	}

	d.logger.InfoContext(ctx, "delivery loop started")

	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "delivery loop stopped")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				d.logger.InfoContext(ctx, "opportunity bus closed")
				return errors.New("opportunity bus closed")
			}

			if err := d.notifier.NotifyOpportunities(ctx, msg.ChatID, msg.Opportunities); err != nil {
				d.logger.ErrorContext(ctx, "delivery failed",
					slog.Int64("chat_id", msg.ChatID),
					slog.String("error", err.Error()),
				)
				continue
			}

			d.logger.DebugContext(ctx, "digest delivered",
				slog.Int64("chat_id", msg.ChatID),
				slog.Int("opportunities", len(msg.Opportunities)),
			)
		}
	}
}
