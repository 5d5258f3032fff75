package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

// Display rounding happens here and nowhere else. The engine hands over full
// precision values; the digest rounds prices to 6 decimals away from zero,
// percentages to 1 decimal and monetary amounts to 2 decimals with banker's
// rounding.

func fmtPrice(d decimal.Decimal) string {
	return d.Round(6).String()
}

func fmtPercent(d decimal.Decimal) string {
	return d.RoundBank(1).String()
}

func fmtMoney(d decimal.Decimal) string {
	return d.RoundBank(2).String()
}

// FormatOpportunities renders a Markdown digest of the given opportunities,
// one block per opportunity in the order received.
func FormatOpportunities(opps []domain.Opportunity) string {
	var b strings.Builder

	if len(opps) == 1 {
		b.WriteString("*1 arbitrage opportunity*\n")
	} else {
		fmt.Fprintf(&b, "*%d arbitrage opportunities*\n", len(opps))
	}

	for _, o := range opps {
		b.WriteString("\n")
		formatOpportunity(&b, o)
	}

	return b.String()
}

func formatOpportunity(b *strings.Builder, o domain.Opportunity) {
	fmt.Fprintf(b, "*%s*  +%s%%\n", o.Symbol, fmtPercent(o.DiffPercent))
	fmt.Fprintf(b, "Buy  %s @ %s (confidence %s%%)\n",
		o.Buy.Exchange, fmtPrice(o.Buy.LastPrice), fmtPercent(o.Buy.AskConfidence()))
	fmt.Fprintf(b, "Sell %s @ %s (confidence %s%%)\n",
		o.Sell.Exchange, fmtPrice(o.Sell.LastPrice), fmtPercent(o.Sell.BidConfidence()))
	if o.Buy.Network.Name != "" {
		fmt.Fprintf(b, "Network %s\n", o.Buy.Network.Name)
	}

	for _, p := range o.Profiles {
		switch {
		case p.Unratable:
			fmt.Fprintf(b, "  %s %s: fees unknown\n", fmtMoney(p.Budget), o.QuoteCurrency)
		case p.Infeasible:
			fmt.Fprintf(b, "  %s %s: outside withdrawal limits\n", fmtMoney(p.Budget), o.QuoteCurrency)
		default:
			fmt.Fprintf(b, "  %s %s: profit %s (fees %s)\n",
				fmtMoney(p.Budget), o.QuoteCurrency, fmtMoney(p.Profit), fmtMoney(p.Fees()))
		}
	}
}
