package domain

import (
	"context"
	"time"
)

// PreferenceStore persists subscriber configurations.
type PreferenceStore interface {
	Upsert(ctx context.Context, prefs UserPreferences) error
	GetByChatID(ctx context.Context, chatID int64) (UserPreferences, error)
	List(ctx context.Context) ([]UserPreferences, error)
	Delete(ctx context.Context, chatID int64) error
}

// BlacklistStore persists the global set of symbols excluded from alerts.
type BlacklistStore interface {
	Add(ctx context.Context, symbol string) error
	Remove(ctx context.Context, symbol string) error
	List(ctx context.Context) ([]string, error)
}

// OpportunityBus publishes per-user scan results for external notifier
// processes and lets them subscribe to the stream.
type OpportunityBus interface {
	Publish(ctx context.Context, chatID int64, opps []Opportunity) error
	Subscribe(ctx context.Context) (<-chan UserOpportunities, error)
}

// UserOpportunities is one bus message: a cycle's eligible opportunities for
// one subscriber.
type UserOpportunities struct {
	ChatID        int64         `json:"chat_id"`
	Opportunities []Opportunity `json:"opportunities"`
	PublishedAt   time.Time     `json:"published_at"`
}

// CycleArchiver writes a completed scan cycle to cold storage.
type CycleArchiver interface {
	ArchiveCycle(ctx context.Context, startedAt time.Time, opps []Opportunity) (string, error)
}

// LockManager provides distributed locks so scanner replicas never run
// overlapping cycles. Acquire returns ErrLockHeld when another holder owns
// the key.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
