package scan

import (
	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

// ScoreProfile computes the fee-and-limit-adjusted profit for one opportunity
// at one budget. It is a pure function: same legs, same budget, same result.
//
//	FixedFee   = Σ leg.Network.WithdrawFixedFee × leg.LastPrice   (sentinel -1 excluded)
//	DynamicFee = Σ budget × leg.Network.WithdrawPercentFee / 100  (absent fees excluded)
//	Profit     = budget × DiffPercent/100 − FixedFee − DynamicFee
//
// Withdrawal bounds are converted to quote currency off each leg's own price.
// A budget outside any present bound marks the profile infeasible. A leg
// whose network reports neither fee component marks it unratable; the profit
// figure is still computed but must not be compared against thresholds.
func ScoreProfile(diffPercent decimal.Decimal, buy, sell domain.OpportunityLeg, budget decimal.Decimal) domain.BudgetProfile {
	p := domain.BudgetProfile{
		Budget:     budget,
		FixedFee:   decimal.Zero,
		DynamicFee: decimal.Zero,
	}

	for _, leg := range []domain.OpportunityLeg{buy, sell} {
		if !leg.Network.FixedFeeUnsupported() {
			p.FixedFee = p.FixedFee.Add(leg.Network.WithdrawFixedFee.Mul(leg.LastPrice))
		}
		if fee := leg.Network.WithdrawPercentFee; fee != nil {
			p.DynamicFee = p.DynamicFee.Add(budget.Mul(*fee).Div(hundred))
		}
	}

	p.MinBuyWithdraw = boundPrice(buy.Network.WithdrawMinSize, buy.LastPrice)
	p.MaxBuyWithdraw = boundPrice(buy.Network.WithdrawMaxSize, buy.LastPrice)
	p.MinSellWithdraw = boundPrice(sell.Network.WithdrawMinSize, sell.LastPrice)
	p.MaxSellWithdraw = boundPrice(sell.Network.WithdrawMaxSize, sell.LastPrice)

	p.Infeasible = belowBound(budget, p.MinBuyWithdraw) || aboveBound(budget, p.MaxBuyWithdraw) ||
		belowBound(budget, p.MinSellWithdraw) || aboveBound(budget, p.MaxSellWithdraw)

	p.Unratable = buy.Network.FeeUnknown() || sell.Network.FeeUnknown()

	p.Profit = budget.Mul(diffPercent).Div(hundred).
		Sub(p.FixedFee).
		Sub(p.DynamicFee)

	return p
}

// ScoreProfiles evaluates one opportunity across a budget ladder, preserving
// ladder order.
func ScoreProfiles(diffPercent decimal.Decimal, buy, sell domain.OpportunityLeg, budgets []decimal.Decimal) []domain.BudgetProfile {
	profiles := make([]domain.BudgetProfile, 0, len(budgets))
	for _, budget := range budgets {
		profiles = append(profiles, ScoreProfile(diffPercent, buy, sell, budget))
	}
	return profiles
}

func boundPrice(size *decimal.Decimal, price decimal.Decimal) *decimal.Decimal {
	if size == nil || size.IsNegative() {
		return nil
	}
	v := size.Mul(price)
	return &v
}

func belowBound(budget decimal.Decimal, bound *decimal.Decimal) bool {
	return bound != nil && budget.LessThan(*bound)
}

func aboveBound(budget decimal.Decimal, bound *decimal.Decimal) bool {
	return bound != nil && budget.GreaterThan(*bound)
}
