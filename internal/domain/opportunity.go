package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LiquiditySnapshot is the ask/bid volume split of one exchange's order book
// for one symbol. Both percentages lie in [0,100] and sum to 100.
type LiquiditySnapshot struct {
	AskPercent decimal.Decimal `json:"ask_percent"`
	BidPercent decimal.Decimal `json:"bid_percent"`
}

// LiquidityPercent is a book-balance fairness score: 100 minus the absolute
// ask/bid imbalance. Closer to 100 means a more balanced book.
func (s LiquiditySnapshot) LiquidityPercent() decimal.Decimal {
	return oneHundred.Sub(s.AskPercent.Sub(s.BidPercent).Abs())
}

// OpportunityLeg is one side of an opportunity: one exchange, one price, one
// withdrawal network, one depth snapshot.
type OpportunityLeg struct {
	Exchange  Exchange          `json:"exchange"`
	RawSymbol string            `json:"symbol"`
	Network   NetworkOption     `json:"network"`
	LastPrice decimal.Decimal   `json:"last_price"`
	BestBid   decimal.Decimal   `json:"best_bid"`
	BestAsk   decimal.Decimal   `json:"best_ask"`
	Depth     LiquiditySnapshot `json:"depth"`
}

// AskConfidence is 100 minus the leg's ask-side depth share, the eligibility
// signal for buying on this leg.
func (l OpportunityLeg) AskConfidence() decimal.Decimal {
	return oneHundred.Sub(l.Depth.AskPercent)
}

// BidConfidence is 100 minus the leg's bid-side depth share, the eligibility
// signal for selling on this leg.
func (l OpportunityLeg) BidConfidence() decimal.Decimal {
	return oneHundred.Sub(l.Depth.BidPercent)
}

// BudgetProfile is the fee-and-limit-adjusted profit evaluation of one
// opportunity at one monetary budget, denominated in the quote currency.
type BudgetProfile struct {
	Budget     decimal.Decimal `json:"budget"`
	FixedFee   decimal.Decimal `json:"fixed_fee"`
	DynamicFee decimal.Decimal `json:"dynamic_fee"`

	MinBuyWithdraw  *decimal.Decimal `json:"min_buy_withdraw,omitempty"`
	MaxBuyWithdraw  *decimal.Decimal `json:"max_buy_withdraw,omitempty"`
	MinSellWithdraw *decimal.Decimal `json:"min_sell_withdraw,omitempty"`
	MaxSellWithdraw *decimal.Decimal `json:"max_sell_withdraw,omitempty"`

	Profit decimal.Decimal `json:"profit"`

	// Infeasible marks a budget outside a leg's withdrawal bounds. The
	// profile is still returned for visibility but is never tradable.
	Infeasible bool `json:"infeasible,omitempty"`

	// Unratable marks a profile whose fee inputs are incomplete (a leg whose
	// network reports neither fee component). Profit must not be compared
	// against thresholds.
	Unratable bool `json:"unratable,omitempty"`
}

// Fees is the total fee charge at this budget.
func (p BudgetProfile) Fees() decimal.Decimal {
	return p.FixedFee.Add(p.DynamicFee)
}

// Tradable reports whether the profile may participate in profit-based
// filtering.
func (p BudgetProfile) Tradable() bool {
	return !p.Infeasible && !p.Unratable
}

// Opportunity is the externally consumed scan result: a buy leg, a sell leg,
// and the profit profiles for the requested budgets.
type Opportunity struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	QuoteCurrency string          `json:"quote_currency"`
	DiffPercent   decimal.Decimal `json:"diff_percent"`
	Buy           OpportunityLeg  `json:"buy"`
	Sell          OpportunityLeg  `json:"sell"`
	Profiles      []BudgetProfile `json:"profiles"`
	DetectedAt    time.Time       `json:"detected_at"`
}

// ProfileAt returns the budget profile computed for the given budget.
func (o Opportunity) ProfileAt(budget decimal.Decimal) (BudgetProfile, bool) {
	for _, p := range o.Profiles {
		if p.Budget.Equal(budget) {
			return p, true
		}
	}
	return BudgetProfile{}, false
}
