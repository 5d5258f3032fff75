// Package scan implements the arbitrage detection pipeline: quote assembly,
// symbol grouping, pair matching, depth enrichment, profit scoring, and
// user-level filtering. All stages except the two I/O fan-outs are pure and
// synchronous.
package scan

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// DefaultQuoteCurrencies is the fallback suffix table used to infer a
// symbol's settlement currency. Order matters: the first matching suffix
// wins, so longer suffixes must come before their prefixes.
var DefaultQuoteCurrencies = []string{"USDT", "USDC", "BTC"}

// NormalizeSymbol strips exchange-specific separators and upper-cases the
// ticker, producing the cross-exchange join key.
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(raw)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "/", "")
	return s
}

// QuoteCurrency infers the settlement currency of a normalized symbol from a
// configurable suffix table. It returns "" when no suffix matches.
func QuoteCurrency(normalized string, suffixes []string) string {
	for _, suffix := range suffixes {
		if len(normalized) > len(suffix) && strings.HasSuffix(normalized, suffix) {
			return suffix
		}
	}
	return ""
}

// BuildQuotes assembles one exchange's raw snapshot into AssetQuotes. Tickers
// without an active-symbol entry, without a known base asset, or without any
// viable withdrawal network are dropped here so downstream stages can trust
// every quote to be listable and withdrawable.
func BuildQuotes(ex domain.Exchange, data domain.ExchangeData, quoteCurrencies []string) []domain.AssetQuote {
	if len(quoteCurrencies) == 0 {
		quoteCurrencies = DefaultQuoteCurrencies
	}

	networksByAsset := make(map[string][]domain.NetworkOption, len(data.Networks))
	for _, an := range data.Networks {
		if len(an.Networks) > 0 {
			networksByAsset[an.BaseAsset] = an.Networks
		}
	}

	quotes := make([]domain.AssetQuote, 0, len(data.Prices))
	for _, price := range data.Prices {
		baseAsset, active := data.BaseAssetBySymbol[price.Symbol]
		if !active {
			continue
		}
		networks, ok := networksByAsset[baseAsset]
		if !ok {
			continue
		}

		normalized := NormalizeSymbol(price.Symbol)
		quotes = append(quotes, domain.AssetQuote{
			Exchange:         ex,
			RawSymbol:        price.Symbol,
			NormalizedSymbol: normalized,
			QuoteCurrency:    QuoteCurrency(normalized, quoteCurrencies),
			LastPrice:        price.LastPrice,
			BestBid:          price.BestBid,
			BestAsk:          price.BestAsk,
			Networks:         networks,
		})
	}
	return quotes
}
