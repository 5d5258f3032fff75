package domain

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// ArbitrageCandidate is an ordered pair of quotes for the same normalized
// symbol from two different exchanges, with Low.LastPrice < High.LastPrice.
// Candidates are constructed per matching cycle and never mutated.
type ArbitrageCandidate struct {
	Low  AssetQuote
	High AssetQuote

	// DiffPercent is the price spread in percent, rounded to 3 decimals with
	// banker's rounding at construction.
	DiffPercent decimal.Decimal

	// CompatibleNetworks holds the names shared by both legs, in Low's
	// network order.
	CompatibleNetworks []string
}

// NewArbitrageCandidate builds a candidate from a low/high quote pair,
// computing the spread and the network-name intersection.
func NewArbitrageCandidate(low, high AssetQuote) ArbitrageCandidate {
	diff := high.LastPrice.Sub(low.LastPrice).
		Div(low.LastPrice).
		Mul(oneHundred).
		RoundBank(3)

	var shared []string
	for _, n := range low.Networks {
		if _, ok := high.Network(n.Name); ok {
			shared = append(shared, n.Name)
		}
	}

	return ArbitrageCandidate{
		Low:                low,
		High:               high,
		DiffPercent:        diff,
		CompatibleNetworks: shared,
	}
}
