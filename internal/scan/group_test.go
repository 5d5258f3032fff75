package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbscan/arbscan/internal/domain"
)

func quote(ex domain.Exchange, symbol, price string, networks ...domain.NetworkOption) domain.AssetQuote {
	if len(networks) == 0 {
		networks = []domain.NetworkOption{{Name: "TRX", WithdrawFixedFee: dec("0.1")}}
	}
	return domain.AssetQuote{
		Exchange:         ex,
		RawSymbol:        symbol,
		NormalizedSymbol: NormalizeSymbol(symbol),
		QuoteCurrency:    "USDT",
		LastPrice:        dec(price),
		BestBid:          dec(price),
		BestAsk:          dec(price),
		Networks:         networks,
	}
}

func TestGroupQuotesKeysByNormalizedSymbol(t *testing.T) {
	quotes := []domain.AssetQuote{
		quote(domain.ExchangeBinance, "BTCUSDT", "100"),
		quote(domain.ExchangeKucoin, "BTC-USDT", "103"),
		quote(domain.ExchangeBinance, "ETHUSDT", "50"),
		quote(domain.ExchangeGateio, "ETH_USDT", "51"),
	}

	groups := GroupQuotes(quotes)
	require.Len(t, groups, 2)

	for _, g := range groups {
		for _, q := range g.Quotes {
			assert.Equal(t, g.Symbol, q.NormalizedSymbol)
		}
	}
	assert.Equal(t, "BTCUSDT", groups[0].Symbol)
	assert.Equal(t, "ETHUSDT", groups[1].Symbol)
}

func TestGroupQuotesDropsSingleExchangeGroups(t *testing.T) {
	quotes := []domain.AssetQuote{
		quote(domain.ExchangeBinance, "BTCUSDT", "100"),
		quote(domain.ExchangeBinance, "BTC-USDT", "101"), // same exchange twice
		quote(domain.ExchangeKucoin, "ETHUSDT", "50"),
	}

	groups := GroupQuotes(quotes)
	assert.Empty(t, groups)
}

func TestGroupQuotesKeepsZeroPriceMembers(t *testing.T) {
	quotes := []domain.AssetQuote{
		quote(domain.ExchangeBinance, "BTCUSDT", "100"),
		quote(domain.ExchangeKucoin, "BTCUSDT", "0"),
	}

	groups := GroupQuotes(quotes)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Quotes, 2)
}

func TestGroupQuotesDropsAllZeroGroups(t *testing.T) {
	quotes := []domain.AssetQuote{
		quote(domain.ExchangeBinance, "BTCUSDT", "0"),
		quote(domain.ExchangeKucoin, "BTCUSDT", "0"),
	}

	assert.Empty(t, GroupQuotes(quotes))
}
