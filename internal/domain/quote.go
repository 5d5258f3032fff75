// Package domain defines the value types and collaborator contracts shared by
// the arbitrage scanning pipeline. All monetary values use shopspring/decimal;
// intermediate computation is never rounded.
package domain

import "github.com/shopspring/decimal"

// FeeUnsupported is the sentinel value carried in NetworkOption.WithdrawFixedFee
// when the source exchange does not report a withdrawal fee for the network.
// It is distinct from a legitimate zero fee and must never contribute to fee
// sums.
var FeeUnsupported = decimal.NewFromInt(-1)

// NetworkOption is one withdrawal rail for an asset on one exchange. Only
// networks with both deposit and withdrawal enabled survive adapter-side
// filtering; this model trusts that filtering has happened.
type NetworkOption struct {
	// Name is the case-normalized chain identifier, e.g. "TRX" or "ERC20".
	Name string

	// WithdrawFixedFee is the flat withdrawal fee in base-asset units, or
	// FeeUnsupported when the exchange does not report one.
	WithdrawFixedFee decimal.Decimal

	// WithdrawPercentFee is the percentage withdrawal fee, in percent units.
	// Nil means the exchange charges no percentage fee.
	WithdrawPercentFee *decimal.Decimal

	// Min/max transfer bounds in base-asset units. Nil means unbounded.
	DepositMinSize  *decimal.Decimal
	WithdrawMinSize *decimal.Decimal
	WithdrawMaxSize *decimal.Decimal
}

// FixedFeeUnsupported reports whether the flat withdrawal fee is unknown.
func (n NetworkOption) FixedFeeUnsupported() bool {
	return n.WithdrawFixedFee.Equal(FeeUnsupported)
}

// FeeUnknown reports whether both fee components are unknown, in which case
// any profit figure computed over this network is unratable.
func (n NetworkOption) FeeUnknown() bool {
	return n.FixedFeeUnsupported() && n.WithdrawPercentFee == nil
}

// AssetQuote is one exchange's point-in-time view of one tradable asset.
// Quotes are immutable once constructed and live for a single fetch cycle.
type AssetQuote struct {
	Exchange         Exchange
	RawSymbol        string // exchange-native ticker, used for depth requests
	NormalizedSymbol string // separators stripped, cross-exchange join key
	QuoteCurrency    string // settlement currency inferred from the symbol suffix
	LastPrice        decimal.Decimal
	BestBid          decimal.Decimal
	BestAsk          decimal.Decimal

	// Networks is the ordered set of viable withdrawal rails, unique by name
	// and non-empty.
	Networks []NetworkOption
}

// Tradable reports whether the quote carries a usable last price. A zero
// price marks a quote that must be excluded from matching.
func (q AssetQuote) Tradable() bool {
	return q.LastPrice.IsPositive()
}

// Network returns the quote's network option with the given name.
func (q AssetQuote) Network(name string) (NetworkOption, bool) {
	for _, n := range q.Networks {
		if n.Name == name {
			return n, true
		}
	}
	return NetworkOption{}, false
}
