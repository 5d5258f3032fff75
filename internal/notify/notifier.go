// Package notify delivers scan results to subscribers. Opportunities are
// rendered into a chat digest and dispatched to every registered sender; all
// internal precision survives up to this boundary, where display rounding is
// applied.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arbscan/arbscan/internal/domain"
)

// Sender is the interface that each delivery channel must implement.
type Sender interface {
	// Send delivers a rendered digest to one subscriber.
	Send(ctx context.Context, chatID int64, text string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier renders opportunity digests and dispatches them to one or more
// Senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// NotifyOpportunities renders the subscriber's eligible opportunities and
// delivers the digest. An empty cycle sends nothing.
func (n *Notifier) NotifyOpportunities(ctx context.Context, chatID int64, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	return n.dispatch(ctx, chatID, FormatOpportunities(opps))
}

// dispatch iterates over all senders and sends the digest. Errors from
// individual senders are collected and returned as a combined error; a single
// sender failure does not prevent delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, chatID int64, text string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, chatID, text); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.Int64("chat_id", chatID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "digest sent",
				slog.String("sender", s.Name()),
				slog.Int64("chat_id", chatID),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
