package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/alitto/pond"

	"github.com/arbscan/arbscan/internal/domain"
)

// DefaultDepthConcurrency bounds in-flight depth requests per cycle so no
// single exchange's rate limit is overwhelmed.
const DefaultDepthConcurrency = 8

// EnrichedCandidate is a candidate whose two legs carry live order-book depth.
type EnrichedCandidate struct {
	Candidate domain.ArbitrageCandidate
	LowDepth  domain.LiquiditySnapshot
	HighDepth domain.LiquiditySnapshot
}

// depthCache coalesces concurrent depth requests for the same exchange+symbol
// within one cycle. The first caller performs the fetch; everyone else waits
// on its result.
type depthCache struct {
	mu      sync.Mutex
	entries map[string]*depthEntry
}

type depthEntry struct {
	once sync.Once
	snap domain.LiquiditySnapshot
	err  error
}

func newDepthCache() *depthCache {
	return &depthCache{entries: make(map[string]*depthEntry)}
}

func (c *depthCache) fetch(ctx context.Context, src domain.DepthSource, symbol string) (domain.LiquiditySnapshot, error) {
	key := string(src.Exchange()) + "/" + symbol

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &depthEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.snap, e.err = src.FetchDepth(ctx, symbol)
	})
	return e.snap, e.err
}

// Enricher fans candidates out to depth sources with a bounded worker pool.
type Enricher struct {
	sources     map[domain.Exchange]domain.DepthSource
	concurrency int
	logger      *slog.Logger
}

// NewEnricher creates an Enricher over the given per-exchange depth sources.
// A non-positive concurrency falls back to DefaultDepthConcurrency.
func NewEnricher(sources map[domain.Exchange]domain.DepthSource, concurrency int, logger *slog.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultDepthConcurrency
	}
	return &Enricher{
		sources:     sources,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "depth_enricher")),
	}
}

// Enrich attaches order-book depth to both legs of every candidate. A failed
// leg fetch drops only the owning candidate: the failure is logged with the
// offending exchange and symbol and the remaining candidates are unaffected.
// Output preserves candidate input order. On cancellation the partial result
// is discarded and ctx.Err() is returned.
func (e *Enricher) Enrich(ctx context.Context, candidates []domain.ArbitrageCandidate) ([]EnrichedCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	type indexed struct {
		pos int
		ec  EnrichedCandidate
	}

	pool := pond.New(e.concurrency, len(candidates), pond.MinWorkers(e.concurrency))
	cache := newDepthCache()
	results := make(chan indexed, len(candidates))

	for i, candidate := range candidates {
		i, candidate := i, candidate
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			lowDepth, err := e.legDepth(ctx, cache, candidate.Low)
			if err != nil {
				e.logDropped(ctx, candidate.Low, err)
				return
			}
			highDepth, err := e.legDepth(ctx, cache, candidate.High)
			if err != nil {
				e.logDropped(ctx, candidate.High, err)
				return
			}
			results <- indexed{pos: i, ec: EnrichedCandidate{
				Candidate: candidate,
				LowDepth:  lowDepth,
				HighDepth: highDepth,
			}}
		})
	}

	pool.StopAndWait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collected := make([]indexed, 0, len(candidates))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(a, b int) bool { return collected[a].pos < collected[b].pos })

	enriched := make([]EnrichedCandidate, 0, len(collected))
	for _, r := range collected {
		enriched = append(enriched, r.ec)
	}
	return enriched, nil
}

func (e *Enricher) legDepth(ctx context.Context, cache *depthCache, leg domain.AssetQuote) (domain.LiquiditySnapshot, error) {
	src, ok := e.sources[leg.Exchange]
	if !ok {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: no depth source for %s",
			domain.ErrSourceUnavailable, leg.Exchange)
	}
	snap, err := cache.fetch(ctx, src, leg.RawSymbol)
	if err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: %s %s: %v",
			domain.ErrSourceUnavailable, leg.Exchange, leg.RawSymbol, err)
	}
	return snap, nil
}

func (e *Enricher) logDropped(ctx context.Context, leg domain.AssetQuote, err error) {
	e.logger.WarnContext(ctx, "candidate dropped: depth fetch failed",
		slog.String("exchange", string(leg.Exchange)),
		slog.String("symbol", leg.RawSymbol),
		slog.String("error", err.Error()),
	)
}
