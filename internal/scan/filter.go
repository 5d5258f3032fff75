package scan

import (
	"sort"

	"github.com/arbscan/arbscan/internal/domain"
)

// FilterOpportunities applies one user's thresholds to a cycle's enriched
// opportunities. A candidate survives iff its symbol is not blacklisted,
// matches the ticker filter, both legs clear their depth-confidence gates
// (strict inequalities: a value exactly at threshold is rejected), and its
// profile at the user's budget is tradable with profit at or above the
// expected minimum. The user's budget profile is computed on demand when the
// opportunity's ladder does not already include it, and appended to the
// returned copy for visibility.
func FilterOpportunities(opps []domain.Opportunity, criteria domain.UserCriteria) []domain.Opportunity {
	eligible := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if criteria.Blacklisted(opp.Symbol) || !criteria.MatchesTicker(opp.Symbol) {
			continue
		}
		if !opp.Buy.AskConfidence().GreaterThan(criteria.MinBuyConfidence) {
			continue
		}
		if !opp.Sell.BidConfidence().GreaterThan(criteria.MinSellConfidence) {
			continue
		}

		profile, present := opp.ProfileAt(criteria.Budget)
		if !present {
			profile = ScoreProfile(opp.DiffPercent, opp.Buy, opp.Sell, criteria.Budget)
		}
		if !profile.Tradable() || profile.Profit.LessThan(criteria.MinExpectedProfit) {
			continue
		}

		if !present {
			profiles := make([]domain.BudgetProfile, 0, len(opp.Profiles)+1)
			profiles = append(profiles, opp.Profiles...)
			opp.Profiles = append(profiles, profile)
		}
		eligible = append(eligible, opp)
	}
	return eligible
}

// RankOpportunities orders opportunities by descending spread. Ties keep
// their original emission order so results are deterministic; callers that
// want profit-first ordering re-sort on their side.
func RankOpportunities(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(a, b int) bool {
		return opps[a].DiffPercent.GreaterThan(opps[b].DiffPercent)
	})
}
