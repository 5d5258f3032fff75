package scan

import "github.com/arbscan/arbscan/internal/domain"

// Group is the set of quotes sharing one normalized symbol across exchanges.
type Group struct {
	Symbol string
	Quotes []domain.AssetQuote
}

// GroupQuotes partitions the cycle's quotes by normalized symbol and keeps
// only groups spanning at least two distinct exchanges with at least one
// tradable price. Group order follows first appearance in the input, quote
// order within a group follows input order; the result is a finite sequence
// recomputed from fresh snapshots each cycle.
//
// Quotes with a zero last price stay in their group (they carry network
// metadata) but are skipped by the matcher.
func GroupQuotes(quotes []domain.AssetQuote) []Group {
	index := make(map[string]int, len(quotes))
	groups := make([]Group, 0, len(quotes))

	for _, q := range quotes {
		i, ok := index[q.NormalizedSymbol]
		if !ok {
			i = len(groups)
			index[q.NormalizedSymbol] = i
			groups = append(groups, Group{Symbol: q.NormalizedSymbol})
		}
		groups[i].Quotes = append(groups[i].Quotes, q)
	}

	kept := groups[:0]
	for _, g := range groups {
		if eligible(g) {
			kept = append(kept, g)
		}
	}
	return kept
}

func eligible(g Group) bool {
	exchanges := make(map[domain.Exchange]struct{}, len(g.Quotes))
	tradable := false
	for _, q := range g.Quotes {
		exchanges[q.Exchange] = struct{}{}
		if q.Tradable() {
			tradable = true
		}
	}
	return len(exchanges) >= 2 && tradable
}
