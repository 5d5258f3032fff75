package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UserCriteria is one subscriber's eligibility thresholds, applied by the
// opportunity filter after enrichment.
type UserCriteria struct {
	// Budget selects which BudgetProfile is checked for feasibility and
	// profit.
	Budget decimal.Decimal

	// MinBuyConfidence gates the buy leg's ask-side confidence; strictly
	// greater-than, a value exactly at threshold is rejected.
	MinBuyConfidence decimal.Decimal

	// MinSellConfidence gates the sell leg's bid-side confidence, strict.
	MinSellConfidence decimal.Decimal

	// MinExpectedProfit is the lowest acceptable profit at Budget, in quote
	// currency.
	MinExpectedProfit decimal.Decimal

	// TickerFilter, when non-empty, requires the normalized symbol to
	// contain this substring.
	TickerFilter string

	// Blacklist holds normalized symbols that are never surfaced.
	Blacklist map[string]bool
}

// Blacklisted reports whether the symbol is excluded for this user.
func (c UserCriteria) Blacklisted(symbol string) bool {
	return c.Blacklist[symbol]
}

// MatchesTicker reports whether the symbol passes the ticker filter.
func (c UserCriteria) MatchesTicker(symbol string) bool {
	return c.TickerFilter == "" || strings.Contains(symbol, c.TickerFilter)
}

// UserPreferences is a subscriber's stored configuration.
type UserPreferences struct {
	ChatID            int64
	Name              string
	Budget            decimal.Decimal
	MinBuyConfidence  decimal.Decimal
	MinSellConfidence decimal.Decimal
	MinExpectedProfit decimal.Decimal
	TickerFilter      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Criteria materializes the stored preferences into filter criteria using the
// given blacklist.
func (p UserPreferences) Criteria(blacklist []string) UserCriteria {
	bl := make(map[string]bool, len(blacklist))
	for _, s := range blacklist {
		bl[strings.ToUpper(s)] = true
	}
	return UserCriteria{
		Budget:            p.Budget,
		MinBuyConfidence:  p.MinBuyConfidence,
		MinSellConfidence: p.MinSellConfidence,
		MinExpectedProfit: p.MinExpectedProfit,
		TickerFilter:      p.TickerFilter,
		Blacklist:         bl,
	}
}
