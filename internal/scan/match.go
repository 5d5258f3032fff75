package scan

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

// ValidateWindow checks a spread window before any exchange I/O starts.
func ValidateWindow(minPercent, maxPercent decimal.Decimal) error {
	if minPercent.IsNegative() || maxPercent.IsNegative() {
		return fmt.Errorf("%w: percent bounds must be non-negative", domain.ErrInvalidArgument)
	}
	if minPercent.GreaterThan(maxPercent) {
		return fmt.Errorf("%w: min percent %s exceeds max percent %s",
			domain.ErrInvalidArgument, minPercent, maxPercent)
	}
	return nil
}

// Match generates the directional low-to-high candidates of one group whose
// spread lies strictly inside the window:
//
//	Low.LastPrice*(1+min/100) < High.LastPrice < Low.LastPrice*(1+max/100)
//
// Each quote is tried as the low leg against every tradable quote from a
// different exchange; the strict lower bound means a pair is emitted at most
// once per unordered exchange combination and equal prices never match. When
// requireNetworkMatch is set, candidates without a shared withdrawal network
// are dropped; otherwise they are emitted and their profit is later marked
// unratable.
func Match(group Group, minPercent, maxPercent decimal.Decimal, requireNetworkMatch bool) ([]domain.ArbitrageCandidate, error) {
	if err := ValidateWindow(minPercent, maxPercent); err != nil {
		return nil, err
	}

	var candidates []domain.ArbitrageCandidate
	for _, low := range group.Quotes {
		if !low.Tradable() {
			continue
		}
		floor := low.LastPrice.Mul(hundred.Add(minPercent)).Div(hundred)
		ceil := low.LastPrice.Mul(hundred.Add(maxPercent)).Div(hundred)

		for _, high := range group.Quotes {
			if high.Exchange == low.Exchange || !high.Tradable() {
				continue
			}
			if !high.LastPrice.GreaterThan(floor) || !high.LastPrice.LessThan(ceil) {
				continue
			}

			candidate := domain.NewArbitrageCandidate(low, high)
			if requireNetworkMatch && len(candidate.CompatibleNetworks) == 0 {
				continue
			}
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}
