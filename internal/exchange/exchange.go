// Package exchange implements the per-venue quote and depth collaborators.
// Each adapter turns one exchange's REST surface into the snapshot shape the
// scan pipeline consumes; connection state and rate-limit concerns stay here.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

const (
	httpTimeout = 30 * time.Second

	// depthLevels is how many book levels each side contributes to the
	// liquidity split. Deep enough to smooth spoofed top-of-book orders,
	// shallow enough to stay inside every venue's cheapest weight tier.
	depthLevels = 100
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// getJSON sends a GET request and decodes the JSON response into out. A
// non-2xx status is reported as ErrSourceUnavailable with a body excerpt.
func getJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, excerpt(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func excerpt(body []byte) string {
	const max = 256
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}

// sumQuantities folds [price, quantity, ...] book levels into a total
// quantity. Levels that fail to parse are skipped rather than failing the
// whole book.
func sumQuantities(levels [][]string) decimal.Decimal {
	total := decimal.Zero
	for _, level := range levels {
		if len(level) < 2 {
			continue
		}
		qty, err := decimal.NewFromString(level[1])
		if err != nil {
			continue
		}
		total = total.Add(qty)
	}
	return total
}

// liquiditySplit converts total ask/bid quantities into the percentage pair
// the enricher attaches to a leg. Percentages stay at full precision; an
// empty book is a source failure, not a 0/0 split.
func liquiditySplit(askQty, bidQty decimal.Decimal) (domain.LiquiditySnapshot, error) {
	total := askQty.Add(bidQty)
	if !total.IsPositive() {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: empty order book", domain.ErrSourceUnavailable)
	}
	return domain.LiquiditySnapshot{
		AskPercent: askQty.Div(total).Mul(hundred),
		BidPercent: bidQty.Div(total).Mul(hundred),
	}, nil
}

var hundred = decimal.NewFromInt(100)

// fixedFee parses an exchange-reported withdrawal fee, mapping absent or
// malformed values to the unsupported sentinel so scoring can tell "free"
// from "unknown".
func fixedFee(raw string) decimal.Decimal {
	fee, err := decimal.NewFromString(raw)
	if err != nil || fee.IsNegative() {
		return domain.FeeUnsupported
	}
	return fee
}

// optionalDecimal parses a nullable positive bound; empty, malformed, and
// non-positive values all mean "no bound".
func optionalDecimal(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return nil
	}
	return &d
}
