package exchange

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

func TestLiquiditySplit(t *testing.T) {
	snap, err := liquiditySplit(dec("30"), dec("70"))
	require.NoError(t, err)
	assert.True(t, snap.AskPercent.Equal(dec("30")))
	assert.True(t, snap.BidPercent.Equal(dec("70")))
	assert.True(t, snap.LiquidityPercent().Equal(dec("60")))
}

func TestLiquiditySplitKeepsFullPrecision(t *testing.T) {
	snap, err := liquiditySplit(dec("1"), dec("2"))
	require.NoError(t, err)
	// 1/3 of 100, not rounded to a fixed scale.
	assert.True(t, snap.AskPercent.Equal(dec("1").Div(dec("3")).Mul(dec("100"))))
}

func TestLiquiditySplitEmptyBook(t *testing.T) {
	_, err := liquiditySplit(decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestSumQuantities(t *testing.T) {
	total := sumQuantities([][]string{
		{"100.5", "2"},
		{"100.6", "0.5"},
		{"bogus", "not-a-number"}, // skipped
		{"101"},                   // short level skipped
	})
	assert.True(t, total.Equal(dec("2.5")))
}

func TestFixedFee(t *testing.T) {
	assert.True(t, fixedFee("0.005").Equal(dec("0.005")))
	assert.True(t, fixedFee("0").Equal(decimal.Zero), "zero is a real fee, not unknown")
	assert.True(t, fixedFee("").Equal(domain.FeeUnsupported))
	assert.True(t, fixedFee("n/a").Equal(domain.FeeUnsupported))
	assert.True(t, fixedFee("-3").Equal(domain.FeeUnsupported))
}

func TestOptionalDecimal(t *testing.T) {
	require.NotNil(t, optionalDecimal("12.5"))
	assert.True(t, optionalDecimal("12.5").Equal(dec("12.5")))
	assert.Nil(t, optionalDecimal(""))
	assert.Nil(t, optionalDecimal("0"), "a zero bound is no bound")
	assert.Nil(t, optionalDecimal("oops"))
}

func TestParseTicker(t *testing.T) {
	price, err := parseTicker("BTCUSDT", "100.5", "100.4", "100.6")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", price.Symbol)
	assert.True(t, price.LastPrice.Equal(dec("100.5")))
	assert.True(t, price.BestBid.Equal(dec("100.4")))
	assert.True(t, price.BestAsk.Equal(dec("100.6")))

	// Missing bid/ask degrade to zero, missing last price is fatal.
	price, err = parseTicker("BTCUSDT", "100.5", "", "")
	require.NoError(t, err)
	assert.True(t, price.BestBid.IsZero())

	_, err = parseTicker("BTCUSDT", "", "100.4", "100.6")
	assert.Error(t, err)
}

func TestBybitPercentFee(t *testing.T) {
	fee := bybitPercentFee("0.0005")
	require.NotNil(t, fee)
	assert.True(t, fee.Equal(dec("0.05")), "ratio converts to percent units")

	assert.Nil(t, bybitPercentFee(""))
	assert.Nil(t, bybitPercentFee("0"))
}

func TestGateioPercentFee(t *testing.T) {
	fee := gateioPercentFee("0.1%")
	require.NotNil(t, fee)
	assert.True(t, fee.Equal(dec("0.1")))

	assert.Nil(t, gateioPercentFee("0%"))
	assert.Nil(t, gateioPercentFee(""))
}

func TestGateioNetworksWithFees(t *testing.T) {
	networks := gateioNetworks(
		gateioCurrency{Currency: "TRX", Chain: "trx"},
		gateioWithdrawStatus{
			Currency:            "TRX",
			WithdrawAmountMini:  "20",
			WithdrawFixOnChains: map[string]string{"TRX": "1"},
		},
	)
	require.Len(t, networks, 1)
	assert.Equal(t, "TRX", networks[0].Name)
	assert.True(t, networks[0].WithdrawFixedFee.Equal(dec("1")))
	require.NotNil(t, networks[0].WithdrawMinSize)
	assert.True(t, networks[0].WithdrawMinSize.Equal(dec("20")))
}

func TestGateioNetworksOrderIsDeterministic(t *testing.T) {
	status := gateioWithdrawStatus{
		Currency: "USDT",
		WithdrawFixOnChains: map[string]string{
			"TRX": "1", "ETH": "4", "BSC": "0.3", "SOL": "1", "ARBEVM": "0.8",
		},
	}
	first := gateioNetworks(gateioCurrency{Currency: "USDT"}, status)

	names := make([]string, len(first))
	for i, n := range first {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"ARBEVM", "BSC", "ETH", "SOL", "TRX"}, names)

	// Map iteration must never leak into the option order.
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, gateioNetworks(gateioCurrency{Currency: "USDT"}, status))
	}
}

func TestGateioNetworksWithoutCredentialsFallsBackToListingChain(t *testing.T) {
	networks := gateioNetworks(gateioCurrency{Currency: "TRX", Chain: "trx"}, gateioWithdrawStatus{})
	require.Len(t, networks, 1)
	assert.Equal(t, "TRX", networks[0].Name)
	assert.True(t, networks[0].FeeUnknown(), "no fee data means unratable, not free")
}
