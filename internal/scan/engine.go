package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/arbscan/arbscan/internal/domain"
)

// Request describes one scan cycle.
type Request struct {
	MinPercent          decimal.Decimal
	MaxPercent          decimal.Decimal
	RequireNetworkMatch bool

	// Budgets is the ladder every opportunity is scored at.
	Budgets []decimal.Decimal

	// Criteria, when set, filters the result down to one user's thresholds.
	// Nil returns the full ranked set.
	Criteria *domain.UserCriteria
}

// EngineConfig holds engine tunables.
type EngineConfig struct {
	// QuoteCurrencies is the ordered suffix table used to infer settlement
	// currencies. Empty falls back to DefaultQuoteCurrencies.
	QuoteCurrencies []string

	// DepthConcurrency bounds in-flight depth requests; non-positive falls
	// back to DefaultDepthConcurrency.
	DepthConcurrency int
}

// Engine is the scan entry point. It owns no connection state: quote and
// depth sources are injected, stateless, and safe for concurrent use.
type Engine struct {
	quotes   []domain.QuoteSource
	enricher *Enricher
	cfg      EngineConfig
	logger   *slog.Logger
}

// NewEngine creates an Engine over the given sources.
func NewEngine(quotes []domain.QuoteSource, depth map[domain.Exchange]domain.DepthSource, cfg EngineConfig, logger *slog.Logger) *Engine {
	return &Engine{
		quotes:   quotes,
		enricher: NewEnricher(depth, cfg.DepthConcurrency, logger),
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scan_engine")),
	}
}

// FindOpportunities runs one full cycle: quote fan-out, grouping, matching,
// depth enrichment, profit scoring, and optional per-user filtering, returning
// the ranked result. Malformed bounds or budgets fail fast with
// ErrInvalidArgument before any I/O. A cycle that finds nothing is a
// successful empty result. On cancellation the partial cycle is discarded and
// ctx.Err() is returned.
func (e *Engine) FindOpportunities(ctx context.Context, req Request) ([]domain.Opportunity, error) {
	if err := ValidateWindow(req.MinPercent, req.MaxPercent); err != nil {
		return nil, err
	}
	for _, b := range req.Budgets {
		if !b.IsPositive() {
			return nil, fmt.Errorf("%w: budget %s must be positive", domain.ErrInvalidArgument, b)
		}
	}
	if req.Criteria != nil && !req.Criteria.Budget.IsPositive() {
		return nil, fmt.Errorf("%w: criteria budget %s must be positive",
			domain.ErrInvalidArgument, req.Criteria.Budget)
	}

	started := time.Now()

	quotes, err := e.collectQuotes(ctx)
	if err != nil {
		return nil, err
	}

	groups := GroupQuotes(quotes)

	var candidates []domain.ArbitrageCandidate
	for _, group := range groups {
		matched, err := Match(group, req.MinPercent, req.MaxPercent, req.RequireNetworkMatch)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, matched...)
	}

	enriched, err := e.enricher.Enrich(ctx, candidates)
	if err != nil {
		return nil, err
	}

	opps := e.expand(enriched, req.Budgets)

	if req.Criteria != nil {
		opps = FilterOpportunities(opps, *req.Criteria)
	}
	RankOpportunities(opps)

	e.logger.InfoContext(ctx, "scan cycle complete",
		slog.Int("quotes", len(quotes)),
		slog.Int("groups", len(groups)),
		slog.Int("candidates", len(candidates)),
		slog.Int("enriched", len(enriched)),
		slog.Int("opportunities", len(opps)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return opps, nil
}

// collectQuotes fans out one request per quote source and joins on an
// all-complete barrier. A failing source contributes an empty result and a
// warning log; it never aborts the cycle. Cancellation voids the cycle.
func (e *Engine) collectQuotes(ctx context.Context) ([]domain.AssetQuote, error) {
	perSource := make([][]domain.AssetQuote, len(e.quotes))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range e.quotes {
		i, src := i, src
		g.Go(func() error {
			data, err := src.FetchQuotes(gctx)
			if err != nil {
				e.logger.WarnContext(gctx, "quote source failed, skipping for this cycle",
					slog.String("exchange", string(src.Exchange())),
					slog.String("error", err.Error()),
				)
				return nil
			}
			perSource[i] = BuildQuotes(src.Exchange(), data, e.cfg.QuoteCurrencies)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var quotes []domain.AssetQuote
	for _, qs := range perSource {
		quotes = append(quotes, qs...)
	}
	return quotes, nil
}

// expand turns each enriched candidate into one opportunity per compatible
// network and scores the budget ladder. The low leg is the buy side, the high
// leg the sell side. A candidate matched without a shared network (network
// matching disabled) still expands, over a placeholder network with unknown
// fees, so its unratable profit stays visible.
func (e *Engine) expand(enriched []EnrichedCandidate, budgets []decimal.Decimal) []domain.Opportunity {
	now := time.Now().UTC()
	noNetwork := domain.NetworkOption{WithdrawFixedFee: domain.FeeUnsupported}

	var opps []domain.Opportunity
	for _, ec := range enriched {
		low, high := ec.Candidate.Low, ec.Candidate.High

		type networkPair struct{ buy, sell domain.NetworkOption }
		var pairs []networkPair
		for _, name := range ec.Candidate.CompatibleNetworks {
			buyNetwork, ok := low.Network(name)
			if !ok {
				continue
			}
			sellNetwork, ok := high.Network(name)
			if !ok {
				continue
			}
			pairs = append(pairs, networkPair{buy: buyNetwork, sell: sellNetwork})
		}
		if len(pairs) == 0 {
			pairs = []networkPair{{buy: noNetwork, sell: noNetwork}}
		}

		for _, pair := range pairs {
			buy := domain.OpportunityLeg{
				Exchange:  low.Exchange,
				RawSymbol: low.RawSymbol,
				Network:   pair.buy,
				LastPrice: low.LastPrice,
				BestBid:   low.BestBid,
				BestAsk:   low.BestAsk,
				Depth:     ec.LowDepth,
			}
			sell := domain.OpportunityLeg{
				Exchange:  high.Exchange,
				RawSymbol: high.RawSymbol,
				Network:   pair.sell,
				LastPrice: high.LastPrice,
				BestBid:   high.BestBid,
				BestAsk:   high.BestAsk,
				Depth:     ec.HighDepth,
			}

			opps = append(opps, domain.Opportunity{
				ID:            uuid.NewString(),
				Symbol:        ec.Candidate.Low.NormalizedSymbol,
				QuoteCurrency: high.QuoteCurrency,
				DiffPercent:   ec.Candidate.DiffPercent,
				Buy:           buy,
				Sell:          sell,
				Profiles:      ScoreProfiles(ec.Candidate.DiffPercent, buy, sell, budgets),
				DetectedAt:    now,
			})
		}
	}
	return opps
}
