package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

// DefaultGateioBaseURL is the production REST root including the API prefix.
const DefaultGateioBaseURL = "https://api.gateio.ws"

const gateioPrefix = "/api/v4"

// GateioSource serves quotes and depth from Gate.io spot. Market data is
// public; withdrawal fees come from the signed withdraw status endpoint, so
// without credentials networks are reported with unknown fees and the
// resulting opportunities stay unratable.
type GateioSource struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	apiSecret  string
}

// NewGateioSource creates a Gate.io adapter. An empty baseURL selects
// production; empty credentials disable the fee lookup.
func NewGateioSource(baseURL, apiKey, apiSecret string) *GateioSource {
	if baseURL == "" {
		baseURL = DefaultGateioBaseURL
	}
	return &GateioSource{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

func (g *GateioSource) Exchange() domain.Exchange { return domain.ExchangeGateio }

type gateioPair struct {
	ID          string `json:"id"`
	Base        string `json:"base"`
	TradeStatus string `json:"trade_status"`
}

type gateioTicker struct {
	CurrencyPair string `json:"currency_pair"`
	Last         string `json:"last"`
	HighestBid   string `json:"highest_bid"`
	LowestAsk    string `json:"lowest_ask"`
}

type gateioCurrency struct {
	Currency         string `json:"currency"`
	Delisted         bool   `json:"delisted"`
	DepositDisabled  bool   `json:"deposit_disabled"`
	WithdrawDisabled bool   `json:"withdraw_disabled"`
	Chain            string `json:"chain"`
}

type gateioWithdrawStatus struct {
	Currency            string            `json:"currency"`
	WithdrawPercent     string            `json:"withdraw_percent"`
	WithdrawAmountMini  string            `json:"withdraw_amount_mini"`
	WithdrawFixOnChains map[string]string `json:"withdraw_fix_on_chains"`
}

// FetchQuotes snapshots tradable pairs, tickers, and per-currency network
// metadata, enriched with withdrawal fees when credentials are configured.
func (g *GateioSource) FetchQuotes(ctx context.Context) (domain.ExchangeData, error) {
	var pairs []gateioPair
	if err := g.get(ctx, "/spot/currency_pairs", nil, &pairs); err != nil {
		return domain.ExchangeData{}, fmt.Errorf("gateio: currency pairs: %w", err)
	}

	var tickers []gateioTicker
	if err := g.get(ctx, "/spot/tickers", nil, &tickers); err != nil {
		return domain.ExchangeData{}, fmt.Errorf("gateio: tickers: %w", err)
	}

	var currencies []gateioCurrency
	if err := g.get(ctx, "/spot/currencies", nil, &currencies); err != nil {
		return domain.ExchangeData{}, fmt.Errorf("gateio: currencies: %w", err)
	}

	fees := make(map[string]gateioWithdrawStatus)
	if g.apiKey != "" && g.apiSecret != "" {
		statuses, err := g.fetchWithdrawStatus(ctx)
		if err != nil {
			return domain.ExchangeData{}, err
		}
		for _, st := range statuses {
			fees[st.Currency] = st
		}
	}

	data := domain.ExchangeData{
		BaseAssetBySymbol: make(map[string]string, len(pairs)),
	}
	for _, pair := range pairs {
		if pair.TradeStatus != "tradable" {
			continue
		}
		data.BaseAssetBySymbol[pair.ID] = pair.Base
	}

	data.Prices = make([]domain.SymbolPrice, 0, len(tickers))
	for _, t := range tickers {
		price, err := parseTicker(t.CurrencyPair, t.Last, t.HighestBid, t.LowestAsk)
		if err != nil {
			continue
		}
		data.Prices = append(data.Prices, price)
	}

	for _, currency := range currencies {
		if currency.Delisted || currency.DepositDisabled || currency.WithdrawDisabled {
			continue
		}
		networks := gateioNetworks(currency, fees[currency.Currency])
		if len(networks) == 0 {
			continue
		}
		data.Networks = append(data.Networks, domain.AssetNetworks{
			BaseAsset: currency.Currency,
			Networks:  networks,
		})
	}
	return data, nil
}

// gateioNetworks builds the network options for one currency. With fee data
// present, one option per chain carrying a fixed fee; without it, the listing
// chain alone with unknown fees.
func gateioNetworks(currency gateioCurrency, fees gateioWithdrawStatus) []domain.NetworkOption {
	percentFee := gateioPercentFee(fees.WithdrawPercent)
	minWithdraw := optionalDecimal(fees.WithdrawAmountMini)

	if len(fees.WithdrawFixOnChains) == 0 {
		if currency.Chain == "" {
			return nil
		}
		return []domain.NetworkOption{{
			Name:               strings.ToUpper(currency.Chain),
			WithdrawFixedFee:   domain.FeeUnsupported,
			WithdrawPercentFee: percentFee,
			WithdrawMinSize:    minWithdraw,
		}}
	}

	// Map iteration order would make the network set, and with it the cycle
	// output, nondeterministic.
	chains := make([]string, 0, len(fees.WithdrawFixOnChains))
	for chain := range fees.WithdrawFixOnChains {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	networks := make([]domain.NetworkOption, 0, len(chains))
	for _, chain := range chains {
		networks = append(networks, domain.NetworkOption{
			Name:               strings.ToUpper(chain),
			WithdrawFixedFee:   fixedFee(fees.WithdrawFixOnChains[chain]),
			WithdrawPercentFee: percentFee,
			WithdrawMinSize:    minWithdraw,
		})
	}
	return networks
}

// FetchDepth reads the spot order book and reduces it to the ask/bid volume
// split.
func (g *GateioSource) FetchDepth(ctx context.Context, symbol string) (domain.LiquiditySnapshot, error) {
	var book struct {
		Asks [][]string `json:"asks"`
		Bids [][]string `json:"bids"`
	}
	err := g.get(ctx, "/spot/order_book", url.Values{
		"currency_pair": {symbol},
		"limit":         {strconv.Itoa(depthLevels)},
	}, &book)
	if err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: gateio depth %s: %v", domain.ErrSourceUnavailable, symbol, err)
	}
	return liquiditySplit(sumQuantities(book.Asks), sumQuantities(book.Bids))
}

func (g *GateioSource) fetchWithdrawStatus(ctx context.Context) ([]gateioWithdrawStatus, error) {
	var statuses []gateioWithdrawStatus
	if err := g.getSigned(ctx, "/wallet/withdraw_status", nil, &statuses); err != nil {
		return nil, fmt.Errorf("gateio: withdraw status: %w", err)
	}
	return statuses, nil
}

func (g *GateioSource) get(ctx context.Context, path string, params url.Values, out any) error {
	rawURL := g.baseURL + gateioPrefix + path
	if query := params.Encode(); query != "" {
		rawURL += "?" + query
	}
	return getJSON(ctx, g.httpClient, rawURL, nil, out)
}

// getSigned performs an APIv4-signed GET. The signature covers method, path,
// query, hashed (empty) body, and timestamp, using HMAC-SHA512.
func (g *GateioSource) getSigned(ctx context.Context, path string, params url.Values, out any) error {
	query := params.Encode()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	emptyBody := sha512.Sum512(nil)
	payload := strings.Join([]string{
		http.MethodGet,
		gateioPrefix + path,
		query,
		hex.EncodeToString(emptyBody[:]),
		timestamp,
	}, "\n")
	mac := hmac.New(sha512.New, []byte(g.apiSecret))
	mac.Write([]byte(payload))

	header := http.Header{}
	header.Set("KEY", g.apiKey)
	header.Set("Timestamp", timestamp)
	header.Set("SIGN", hex.EncodeToString(mac.Sum(nil)))

	rawURL := g.baseURL + gateioPrefix + path
	if query != "" {
		rawURL += "?" + query
	}
	return getJSON(ctx, g.httpClient, rawURL, header, out)
}

// gateioPercentFee parses the percent fee string, which arrives with a
// trailing percent sign (e.g. "0.1%"). Nil when absent or zero.
func gateioPercentFee(raw string) *decimal.Decimal {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return nil
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil || !pct.IsPositive() {
		return nil
	}
	return &pct
}
