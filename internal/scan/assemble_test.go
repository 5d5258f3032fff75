package scan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbscan/arbscan/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"BTCUSDT", "BTCUSDT"},
		{"BTC-USDT", "BTCUSDT"},
		{"btc_usdt", "BTCUSDT"},
		{"ETH/BTC", "ETHBTC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSymbol(tt.raw))
	}
}

func TestQuoteCurrency(t *testing.T) {
	suffixes := DefaultQuoteCurrencies

	assert.Equal(t, "USDT", QuoteCurrency("BTCUSDT", suffixes))
	assert.Equal(t, "USDC", QuoteCurrency("ETHUSDC", suffixes))
	assert.Equal(t, "BTC", QuoteCurrency("ETHBTC", suffixes))
	assert.Equal(t, "", QuoteCurrency("BTCEUR", suffixes))
	// A bare quote-currency symbol is not a pair against itself.
	assert.Equal(t, "", QuoteCurrency("USDT", suffixes))
}

func TestQuoteCurrencyConfigurableTable(t *testing.T) {
	assert.Equal(t, "EUR", QuoteCurrency("BTCEUR", []string{"EUR", "USDT"}))
}

func TestBuildQuotes(t *testing.T) {
	data := domain.ExchangeData{
		BaseAssetBySymbol: map[string]string{
			"BTC-USDT": "BTC",
			"ETH-USDT": "ETH",
			"XRP-USDT": "XRP",
		},
		Prices: []domain.SymbolPrice{
			{Symbol: "BTC-USDT", LastPrice: dec("100"), BestBid: dec("99.9"), BestAsk: dec("100.1")},
			{Symbol: "ETH-USDT", LastPrice: dec("50")},
			{Symbol: "XRP-USDT", LastPrice: dec("2")},
			{Symbol: "DOGE-USDT", LastPrice: dec("0.1")}, // not in active set
		},
		Networks: []domain.AssetNetworks{
			{BaseAsset: "BTC", Networks: []domain.NetworkOption{{Name: "TRX", WithdrawFixedFee: dec("0.5")}}},
			{BaseAsset: "ETH", Networks: nil}, // no viable networks
		},
	}

	quotes := BuildQuotes(domain.ExchangeKucoin, data, nil)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, domain.ExchangeKucoin, q.Exchange)
	assert.Equal(t, "BTC-USDT", q.RawSymbol)
	assert.Equal(t, "BTCUSDT", q.NormalizedSymbol)
	assert.Equal(t, "USDT", q.QuoteCurrency)
	assert.True(t, q.LastPrice.Equal(dec("100")))
	require.Len(t, q.Networks, 1)
	assert.Equal(t, "TRX", q.Networks[0].Name)
}
