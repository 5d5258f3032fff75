package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbscan/arbscan/internal/domain"
	"github.com/arbscan/arbscan/internal/scan"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFinder struct {
	opps []domain.Opportunity
	err  error
	reqs []scan.Request
}

func (f *fakeFinder) FindOpportunities(_ context.Context, req scan.Request) ([]domain.Opportunity, error) {
	f.reqs = append(f.reqs, req)
	return f.opps, f.err
}

type fakePrefStore struct {
	prefs []domain.UserPreferences
}

func (s *fakePrefStore) Upsert(context.Context, domain.UserPreferences) error { return nil }
func (s *fakePrefStore) GetByChatID(context.Context, int64) (domain.UserPreferences, error) {
	return domain.UserPreferences{}, domain.ErrNotFound
}
func (s *fakePrefStore) List(context.Context) ([]domain.UserPreferences, error) {
	return s.prefs, nil
}
func (s *fakePrefStore) Delete(context.Context, int64) error { return nil }

type fakeBlacklistStore struct {
	symbols []string
}

func (s *fakeBlacklistStore) Add(context.Context, string) error    { return nil }
func (s *fakeBlacklistStore) Remove(context.Context, string) error { return nil }
func (s *fakeBlacklistStore) List(context.Context) ([]string, error) {
	return s.symbols, nil
}

type fakeBus struct {
	published map[int64][]domain.Opportunity
	ch        chan domain.UserOpportunities
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		published: make(map[int64][]domain.Opportunity),
		ch:        make(chan domain.UserOpportunities, 16),
	}
}

func (b *fakeBus) Publish(_ context.Context, chatID int64, opps []domain.Opportunity) error {
	b.published[chatID] = opps
	b.ch <- domain.UserOpportunities{ChatID: chatID, Opportunities: opps, PublishedAt: time.Now().UTC()}
	return nil
}

func (b *fakeBus) Subscribe(context.Context) (<-chan domain.UserOpportunities, error) {
	return b.ch, nil
}

type fakeArchiver struct {
	startedAt time.Time
	archived  [][]domain.Opportunity
}

func (a *fakeArchiver) ArchiveCycle(_ context.Context, startedAt time.Time, opps []domain.Opportunity) (string, error) {
	a.startedAt = startedAt
	a.archived = append(a.archived, opps)
	return "cycles/test.json", nil
}

type fakeLocks struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLocks) Acquire(context.Context, string, time.Duration) (func(), error) {
	if l.held {
		return nil, domain.ErrLockHeld
	}
	l.acquired++
	return func() { l.released++ }, nil
}

func testOpportunity(symbol string) domain.Opportunity {
	budget := dec("1000")
	return domain.Opportunity{
		ID:            "op-" + symbol,
		Symbol:        symbol,
		QuoteCurrency: "USDT",
		DiffPercent:   dec("3"),
		Buy: domain.OpportunityLeg{
			Exchange:  domain.ExchangeBinance,
			RawSymbol: symbol,
			Network:   domain.NetworkOption{Name: "TRX", WithdrawFixedFee: decimal.Zero},
			LastPrice: dec("100"),
			Depth:     domain.LiquiditySnapshot{AskPercent: dec("30"), BidPercent: dec("70")},
		},
		Sell: domain.OpportunityLeg{
			Exchange:  domain.ExchangeKucoin,
			RawSymbol: symbol,
			Network:   domain.NetworkOption{Name: "TRX", WithdrawFixedFee: decimal.Zero},
			LastPrice: dec("103"),
			Depth:     domain.LiquiditySnapshot{AskPercent: dec("40"), BidPercent: dec("60")},
		},
		Profiles: []domain.BudgetProfile{
			{Budget: budget, Profit: dec("30")},
		},
		DetectedAt: time.Now().UTC(),
	}
}

func testPreferences(chatID int64) domain.UserPreferences {
	return domain.UserPreferences{
		ChatID:            chatID,
		Budget:            dec("1000"),
		MinBuyConfidence:  dec("50"),
		MinSellConfidence: dec("50"),
		MinExpectedProfit: dec("5"),
	}
}

func testScanner(finder OpportunityFinder, prefs *fakePrefStore, bus *fakeBus, archiver domain.CycleArchiver, locks domain.LockManager) *Scanner {
	return NewScanner(
		finder,
		prefs,
		&fakeBlacklistStore{},
		bus,
		archiver,
		locks,
		ScannerConfig{
			MinPercent:          dec("1"),
			MaxPercent:          dec("100"),
			Budgets:             []decimal.Decimal{dec("1000")},
			RequireNetworkMatch: true,
		},
		discardLogger(),
	)
}

func TestScannerRunFansOutAndArchives(t *testing.T) {
	finder := &fakeFinder{opps: []domain.Opportunity{testOpportunity("BTCUSDT")}}
	prefs := &fakePrefStore{prefs: []domain.UserPreferences{testPreferences(7)}}
	bus := newFakeBus()
	archiver := &fakeArchiver{}
	locks := &fakeLocks{}

	s := testScanner(finder, prefs, bus, archiver, locks)
	require.NoError(t, s.Run(context.Background(), time.Minute))

	require.Len(t, finder.reqs, 1)
	assert.True(t, finder.reqs[0].RequireNetworkMatch)
	assert.Nil(t, finder.reqs[0].Criteria)

	require.Contains(t, bus.published, int64(7))
	assert.Len(t, bus.published[7], 1)

	require.Len(t, archiver.archived, 1)
	assert.Len(t, archiver.archived[0], 1)
	assert.False(t, archiver.startedAt.IsZero())

	assert.Equal(t, 1, locks.acquired)
	assert.Equal(t, 1, locks.released)
}

func TestScannerSkipsCycleWhenLockHeld(t *testing.T) {
	finder := &fakeFinder{opps: []domain.Opportunity{testOpportunity("BTCUSDT")}}
	bus := newFakeBus()

	s := testScanner(finder, &fakePrefStore{}, bus, &fakeArchiver{}, &fakeLocks{held: true})
	require.NoError(t, s.Run(context.Background(), time.Minute))

	assert.Empty(t, finder.reqs)
	assert.Empty(t, bus.published)
}

func TestScannerRunReturnsEngineError(t *testing.T) {
	finder := &fakeFinder{err: errors.New("venue down")}

	s := testScanner(finder, &fakePrefStore{}, newFakeBus(), &fakeArchiver{}, nil)
	err := s.Run(context.Background(), time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "venue down")
}

func TestScannerFansOutPerUserCriteria(t *testing.T) {
	finder := &fakeFinder{opps: []domain.Opportunity{testOpportunity("BTCUSDT")}}

	strict := testPreferences(2)
	strict.MinExpectedProfit = dec("1000")

	prefs := &fakePrefStore{prefs: []domain.UserPreferences{testPreferences(1), strict}}
	bus := newFakeBus()

	s := testScanner(finder, prefs, bus, nil, nil)
	require.NoError(t, s.Run(context.Background(), time.Minute))

	assert.Contains(t, bus.published, int64(1))
	assert.NotContains(t, bus.published, int64(2))
}

func TestScannerHonorsBlacklistFromStore(t *testing.T) {
	finder := &fakeFinder{opps: []domain.Opportunity{testOpportunity("BTCUSDT")}}
	prefs := &fakePrefStore{prefs: []domain.UserPreferences{testPreferences(1)}}
	bus := newFakeBus()

	s := NewScanner(
		finder,
		prefs,
		&fakeBlacklistStore{symbols: []string{"btcusdt"}},
		bus,
		nil,
		nil,
		ScannerConfig{MinPercent: dec("1"), MaxPercent: dec("100"), Budgets: []decimal.Decimal{dec("1000")}},
		discardLogger(),
	)
	require.NoError(t, s.Run(context.Background(), time.Minute))

	assert.Empty(t, bus.published)
}

type cancellingFinder struct {
	cancel context.CancelFunc
}

func (f *cancellingFinder) FindOpportunities(ctx context.Context, _ scan.Request) ([]domain.Opportunity, error) {
	f.cancel()
	return nil, ctx.Err()
}

func TestRunLoopDoesNotLogErrorOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	finder := &cancellingFinder{cancel: cancel}

	var logs bytes.Buffer
	s := NewScanner(
		finder,
		&fakePrefStore{},
		&fakeBlacklistStore{},
		nil,
		nil,
		nil,
		ScannerConfig{MinPercent: dec("1"), MaxPercent: dec("100"), Budgets: []decimal.Decimal{dec("1000")}},
		slog.New(slog.NewTextHandler(&logs, nil)),
	)

	err := s.RunLoop(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, logs.String(), "scan cycle failed")
}

type fakeDispatcher struct {
	mu        sync.Mutex
	delivered map[int64]int
	err       error
}

func (d *fakeDispatcher) NotifyOpportunities(_ context.Context, chatID int64, opps []domain.Opportunity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.delivered == nil {
		d.delivered = make(map[int64]int)
	}
	d.delivered[chatID] += len(opps)
	return d.err
}

func (d *fakeDispatcher) count(chatID int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delivered[chatID]
}

func TestDeliveryForwardsBusMessages(t *testing.T) {
	bus := newFakeBus()
	dispatcher := &fakeDispatcher{}

	d := NewDelivery(bus, dispatcher, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.NoError(t, bus.Publish(ctx, 9, []domain.Opportunity{testOpportunity("ETHUSDT")}))

	assert.Eventually(t, func() bool {
		return dispatcher.count(9) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}
