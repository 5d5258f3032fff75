package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// SymbolPrice is one raw ticker entry as reported by an exchange.
type SymbolPrice struct {
	Symbol    string
	LastPrice decimal.Decimal
	BestBid   decimal.Decimal
	BestAsk   decimal.Decimal
}

// AssetNetworks pairs a base asset with its viable withdrawal networks on one
// exchange.
type AssetNetworks struct {
	BaseAsset string
	Networks  []NetworkOption
}

// ExchangeData is the raw snapshot a QuoteSource returns for one cycle:
// tradable symbols keyed to their base asset, all tickers, and per-asset
// network metadata. Assembly into AssetQuotes happens in the scan package.
type ExchangeData struct {
	// BaseAssetBySymbol maps exchange-native symbols that are actively
	// trading to their base asset. Symbols absent from the map are skipped.
	BaseAssetBySymbol map[string]string
	Prices            []SymbolPrice
	Networks          []AssetNetworks
}

// QuoteSource fetches one exchange's price/network snapshot. Implementations
// must be safe for concurrent use; failures are reported as error values, not
// panics.
type QuoteSource interface {
	Exchange() Exchange
	FetchQuotes(ctx context.Context) (ExchangeData, error)
}

// DepthSource fetches the live order-book volume split for one symbol on one
// exchange. Implementations must be safe for concurrent use.
type DepthSource interface {
	Exchange() Exchange
	FetchDepth(ctx context.Context, symbol string) (LiquiditySnapshot, error)
}
