package scan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbscan/arbscan/internal/domain"
)

func testOpportunity(symbol, diff string) domain.Opportunity {
	network := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: dec("0")}
	buy := leg(domain.ExchangeBinance, "100", network)
	buy.Depth = domain.LiquiditySnapshot{AskPercent: dec("30"), BidPercent: dec("70")}
	sell := leg(domain.ExchangeKucoin, "103", network)
	sell.Depth = domain.LiquiditySnapshot{AskPercent: dec("60"), BidPercent: dec("40")}

	return domain.Opportunity{
		ID:            symbol + "-test",
		Symbol:        symbol,
		QuoteCurrency: "USDT",
		DiffPercent:   dec(diff),
		Buy:           buy,
		Sell:          sell,
		Profiles: ScoreProfiles(dec(diff), buy, sell, []decimal.Decimal{
			dec("100"), dec("500"), dec("1000"),
		}),
	}
}

func baseCriteria() domain.UserCriteria {
	return domain.UserCriteria{
		Budget:            dec("1000"),
		MinBuyConfidence:  dec("50"),
		MinSellConfidence: dec("50"),
		MinExpectedProfit: dec("5"),
		Blacklist:         map[string]bool{},
	}
}

func TestFilterPassesEligibleOpportunity(t *testing.T) {
	opps := []domain.Opportunity{testOpportunity("BTCUSDT", "3.000")}

	// Buy ask confidence 70 > 50, sell bid confidence 60 > 50,
	// profit 30 >= 5 at budget 1000.
	got := FilterOpportunities(opps, baseCriteria())
	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
}

func TestFilterConfidenceThresholdIsStrict(t *testing.T) {
	opps := []domain.Opportunity{testOpportunity("BTCUSDT", "3.000")}

	criteria := baseCriteria()
	criteria.MinBuyConfidence = dec("70") // exactly at the buy confidence
	assert.Empty(t, FilterOpportunities(opps, criteria))

	criteria = baseCriteria()
	criteria.MinSellConfidence = dec("60") // exactly at the sell confidence
	assert.Empty(t, FilterOpportunities(opps, criteria))
}

func TestFilterBlacklist(t *testing.T) {
	opps := []domain.Opportunity{
		testOpportunity("NGLUSDT", "4.000"),
		testOpportunity("BTCUSDT", "3.000"),
	}

	criteria := baseCriteria()
	criteria.Blacklist = map[string]bool{"NGLUSDT": true}

	got := FilterOpportunities(opps, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
}

func TestFilterTickerSubstring(t *testing.T) {
	opps := []domain.Opportunity{
		testOpportunity("ETHBTC", "3.000"),
		testOpportunity("BTCUSDT", "3.000"),
	}

	criteria := baseCriteria()
	criteria.TickerFilter = "USDT"

	got := FilterOpportunities(opps, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
}

func TestFilterProfitThreshold(t *testing.T) {
	opps := []domain.Opportunity{testOpportunity("BTCUSDT", "3.000")}

	criteria := baseCriteria()
	criteria.MinExpectedProfit = dec("30") // profit is exactly 30, >= passes
	assert.Len(t, FilterOpportunities(opps, criteria), 1)

	criteria.MinExpectedProfit = dec("30.01")
	assert.Empty(t, FilterOpportunities(opps, criteria))
}

func TestFilterComputesMissingBudgetProfile(t *testing.T) {
	opps := []domain.Opportunity{testOpportunity("BTCUSDT", "3.000")}

	criteria := baseCriteria()
	criteria.Budget = dec("2500") // not on the ladder

	got := FilterOpportunities(opps, criteria)
	require.Len(t, got, 1)

	p, ok := got[0].ProfileAt(dec("2500"))
	require.True(t, ok, "user budget profile appended for visibility")
	assert.True(t, p.Profit.Equal(dec("75")))

	// The input opportunity is not mutated.
	_, ok = opps[0].ProfileAt(dec("2500"))
	assert.False(t, ok)
}

func TestFilterExcludesUnratable(t *testing.T) {
	opp := testOpportunity("BTCUSDT", "3.000")
	unknown := domain.NetworkOption{Name: "TRX", WithdrawFixedFee: domain.FeeUnsupported}
	opp.Buy.Network = unknown
	opp.Profiles = ScoreProfiles(opp.DiffPercent, opp.Buy, opp.Sell, []decimal.Decimal{dec("1000")})

	got := FilterOpportunities([]domain.Opportunity{opp}, baseCriteria())
	assert.Empty(t, got, "unratable profit must not pass a profit threshold")
}

func TestFilterExcludesInfeasibleBudget(t *testing.T) {
	opp := testOpportunity("BTCUSDT", "3.000")
	opp.Buy.Network.WithdrawMinSize = decPtr("100") // min withdraw 100*100 = 10000
	opp.Profiles = ScoreProfiles(opp.DiffPercent, opp.Buy, opp.Sell, []decimal.Decimal{dec("1000")})

	got := FilterOpportunities([]domain.Opportunity{opp}, baseCriteria())
	assert.Empty(t, got)
}

func TestRankOpportunitiesDescendingStable(t *testing.T) {
	opps := []domain.Opportunity{
		testOpportunity("AUSDT", "2.000"),
		testOpportunity("BUSDT", "5.000"),
		testOpportunity("CUSDT", "2.000"),
	}

	RankOpportunities(opps)

	assert.Equal(t, "BUSDT", opps[0].Symbol)
	assert.Equal(t, "AUSDT", opps[1].Symbol, "ties keep emission order")
	assert.Equal(t, "CUSDT", opps[2].Symbol)
}
