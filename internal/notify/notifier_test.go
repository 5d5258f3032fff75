package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbscan/arbscan/internal/domain"
)

type fakeSender struct {
	name  string
	err   error
	sends []string
	chats []int64
}

func (s *fakeSender) Send(_ context.Context, chatID int64, text string) error {
	s.chats = append(s.chats, chatID)
	s.sends = append(s.sends, text)
	return s.err
}

func (s *fakeSender) Name() string { return s.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyOpportunitiesSendsToAllSenders(t *testing.T) {
	first := &fakeSender{name: "first"}
	second := &fakeSender{name: "second"}
	n := NewNotifier([]Sender{first, second}, discardLogger())

	err := n.NotifyOpportunities(context.Background(), 42, []domain.Opportunity{sampleOpportunity()})

	require.NoError(t, err)
	require.Len(t, first.sends, 1)
	require.Len(t, second.sends, 1)
	assert.Equal(t, []int64{42}, first.chats)
	assert.Contains(t, first.sends[0], "BTCUSDT")
}

func TestNotifyOpportunitiesEmptyCycleSendsNothing(t *testing.T) {
	s := &fakeSender{name: "telegram"}
	n := NewNotifier([]Sender{s}, discardLogger())

	require.NoError(t, n.NotifyOpportunities(context.Background(), 42, nil))
	assert.Empty(t, s.sends)
}

func TestNotifyOpportunitiesCollectsSenderErrors(t *testing.T) {
	failing := &fakeSender{name: "telegram", err: errors.New("chat not found")}
	working := &fakeSender{name: "backup"}
	n := NewNotifier([]Sender{failing, working}, discardLogger())

	err := n.NotifyOpportunities(context.Background(), 42, []domain.Opportunity{sampleOpportunity()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
	assert.Contains(t, err.Error(), "chat not found")
	// The failing sender does not block the others.
	assert.Len(t, working.sends, 1)
}
