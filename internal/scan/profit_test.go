package scan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbscan/arbscan/internal/domain"
)

func leg(ex domain.Exchange, price string, network domain.NetworkOption) domain.OpportunityLeg {
	return domain.OpportunityLeg{
		Exchange:  ex,
		RawSymbol: "BTCUSDT",
		Network:   network,
		LastPrice: dec(price),
		BestBid:   dec(price),
		BestAsk:   dec(price),
	}
}

func TestScoreProfileFixedFeeUsesEachLegPrice(t *testing.T) {
	network := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: dec("0.005")}
	buy := leg(domain.ExchangeBinance, "100", network)
	sell := leg(domain.ExchangeKucoin, "103", network)

	p := ScoreProfile(dec("3.000"), buy, sell, dec("1000"))

	// 0.005*100 + 0.005*103 = 1.015; profit = 1000*0.03 - 1.015.
	assert.True(t, p.FixedFee.Equal(dec("1.015")), "fixed fee %s", p.FixedFee)
	assert.True(t, p.DynamicFee.IsZero())
	assert.True(t, p.Profit.Equal(dec("28.985")), "profit %s", p.Profit)
	assert.False(t, p.Infeasible)
	assert.False(t, p.Unratable)
}

func TestScoreProfileFeeSentinelNeverContributes(t *testing.T) {
	buy := leg(domain.ExchangeBinance, "100",
		domain.NetworkOption{Name: "TRX", WithdrawFixedFee: domain.FeeUnsupported, WithdrawPercentFee: decPtr("0.1")})
	sell := leg(domain.ExchangeKucoin, "103",
		domain.NetworkOption{Name: "TRX", WithdrawFixedFee: dec("0.01")})

	p := ScoreProfile(dec("3.000"), buy, sell, dec("1000"))

	// Only the sell leg contributes a fixed fee: 0.01*103 = 1.03.
	assert.True(t, p.FixedFee.Equal(dec("1.03")), "fixed fee %s", p.FixedFee)
	// Only the buy leg has a percent fee: 1000*0.1/100 = 1.
	assert.True(t, p.DynamicFee.Equal(dec("1")), "dynamic fee %s", p.DynamicFee)
	assert.False(t, p.Unratable, "a leg with a percent fee is still ratable")
}

func TestScoreProfileZeroFeeIsNotSentinel(t *testing.T) {
	free := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: dec("0")}
	buy := leg(domain.ExchangeBinance, "100", free)
	sell := leg(domain.ExchangeKucoin, "103", free)

	p := ScoreProfile(dec("3.000"), buy, sell, dec("1000"))

	assert.True(t, p.FixedFee.IsZero())
	assert.False(t, p.Unratable, "zero fee is legitimately fee-free, not unknown")
	assert.True(t, p.Profit.Equal(dec("30")), "profit %s", p.Profit)
}

func TestScoreProfileUnratableWhenBothFeeComponentsUnknown(t *testing.T) {
	unknown := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: domain.FeeUnsupported}
	known := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: dec("0.01")}

	p := ScoreProfile(dec("3.000"),
		leg(domain.ExchangeBinance, "100", unknown),
		leg(domain.ExchangeKucoin, "103", known),
		dec("1000"))

	assert.True(t, p.Unratable)
}

func TestScoreProfileWithdrawBounds(t *testing.T) {
	buyNetwork := domain.NetworkOption{
		Name:             "TRX",
		WithdrawFixedFee: dec("0"),
		WithdrawMinSize:  decPtr("1"),  // 1 * 100 = 100 quote units
		WithdrawMaxSize:  decPtr("50"), // 50 * 100 = 5000 quote units
	}
	sellNetwork := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: dec("0")}
	buy := leg(domain.ExchangeBinance, "100", buyNetwork)
	sell := leg(domain.ExchangeKucoin, "103", sellNetwork)

	tests := []struct {
		budget     string
		infeasible bool
	}{
		{"50", true},     // below min buy withdraw
		{"100", false},   // at lower bound
		{"1000", false},  // inside
		{"5000", false},  // at upper bound
		{"10000", true},  // above max buy withdraw
	}
	for _, tt := range tests {
		p := ScoreProfile(dec("3.000"), buy, sell, dec(tt.budget))
		assert.Equal(t, tt.infeasible, p.Infeasible, "budget %s", tt.budget)
	}

	p := ScoreProfile(dec("3.000"), buy, sell, dec("1000"))
	require.NotNil(t, p.MinBuyWithdraw)
	require.NotNil(t, p.MaxBuyWithdraw)
	assert.True(t, p.MinBuyWithdraw.Equal(dec("100")))
	assert.True(t, p.MaxBuyWithdraw.Equal(dec("5000")))
	assert.Nil(t, p.MinSellWithdraw)
	assert.Nil(t, p.MaxSellWithdraw)
}

func TestScoreProfileIdempotent(t *testing.T) {
	network := domain.NetworkOption{
		Name:               "TRX",
		WithdrawFixedFee:   dec("0.5"),
		WithdrawPercentFee: decPtr("0.25"),
		WithdrawMinSize:    decPtr("0.1"),
	}
	buy := leg(domain.ExchangeBinance, "100", network)
	sell := leg(domain.ExchangeKucoin, "103", network)
	budgets := []decimal.Decimal{dec("100"), dec("500"), dec("1000")}

	first := ScoreProfiles(dec("3.000"), buy, sell, budgets)
	second := ScoreProfiles(dec("3.000"), buy, sell, budgets)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Budget.Equal(second[i].Budget))
		assert.True(t, first[i].FixedFee.Equal(second[i].FixedFee))
		assert.True(t, first[i].DynamicFee.Equal(second[i].DynamicFee))
		assert.True(t, first[i].Profit.Equal(second[i].Profit))
		assert.Equal(t, first[i].Infeasible, second[i].Infeasible)
		assert.Equal(t, first[i].Unratable, second[i].Unratable)
	}
}
