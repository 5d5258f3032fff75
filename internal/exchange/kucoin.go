package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/arbscan/arbscan/internal/domain"
)

// DefaultKucoinBaseURL is the production REST root.
const DefaultKucoinBaseURL = "https://api.kucoin.com"

const kucoinOKCode = "200000"

// KucoinSource serves quotes and depth from KuCoin spot. All endpoints used
// here are public.
type KucoinSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewKucoinSource creates a KuCoin adapter. An empty baseURL selects
// production.
func NewKucoinSource(baseURL string) *KucoinSource {
	if baseURL == "" {
		baseURL = DefaultKucoinBaseURL
	}
	return &KucoinSource{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

func (k *KucoinSource) Exchange() domain.Exchange { return domain.ExchangeKucoin }

type kucoinSymbol struct {
	Symbol        string `json:"symbol"`
	BaseCurrency  string `json:"baseCurrency"`
	EnableTrading bool   `json:"enableTrading"`
}

type kucoinTicker struct {
	Symbol string `json:"symbol"`
	Last   string `json:"last"`
	Buy    string `json:"buy"`
	Sell   string `json:"sell"`
}

type kucoinChain struct {
	ChainName         string `json:"chainName"`
	WithdrawalMinFee  string `json:"withdrawalMinFee"`
	WithdrawalMinSize string `json:"withdrawalMinSize"`
	DepositMinSize    string `json:"depositMinSize"`
	IsWithdrawEnabled bool   `json:"isWithdrawEnabled"`
	IsDepositEnabled  bool   `json:"isDepositEnabled"`
}

type kucoinCurrency struct {
	Currency string        `json:"currency"`
	Chains   []kucoinChain `json:"chains"`
}

// FetchQuotes snapshots tradable symbols, the all-tickers feed, and per-
// currency chain metadata.
func (k *KucoinSource) FetchQuotes(ctx context.Context) (domain.ExchangeData, error) {
	var symbols []kucoinSymbol
	if err := k.get(ctx, "/api/v2/symbols", nil, &symbols); err != nil {
		return domain.ExchangeData{}, fmt.Errorf("kucoin: symbols: %w", err)
	}

	var allTickers struct {
		Ticker []kucoinTicker `json:"ticker"`
	}
	if err := k.get(ctx, "/api/v1/market/allTickers", nil, &allTickers); err != nil {
		return domain.ExchangeData{}, fmt.Errorf("kucoin: tickers: %w", err)
	}

	var currencies []kucoinCurrency
	if err := k.get(ctx, "/api/v3/currencies", nil, &currencies); err != nil {
		return domain.ExchangeData{}, fmt.Errorf("kucoin: currencies: %w", err)
	}

	data := domain.ExchangeData{
		BaseAssetBySymbol: make(map[string]string, len(symbols)),
	}
	for _, sym := range symbols {
		if !sym.EnableTrading {
			continue
		}
		data.BaseAssetBySymbol[sym.Symbol] = sym.BaseCurrency
	}

	data.Prices = make([]domain.SymbolPrice, 0, len(allTickers.Ticker))
	for _, t := range allTickers.Ticker {
		price, err := parseTicker(t.Symbol, t.Last, t.Buy, t.Sell)
		if err != nil {
			continue
		}
		data.Prices = append(data.Prices, price)
	}

	for _, currency := range currencies {
		networks := make([]domain.NetworkOption, 0, len(currency.Chains))
		for _, chain := range currency.Chains {
			if !chain.IsDepositEnabled || !chain.IsWithdrawEnabled {
				continue
			}
			networks = append(networks, domain.NetworkOption{
				Name:             strings.ToUpper(chain.ChainName),
				WithdrawFixedFee: fixedFee(chain.WithdrawalMinFee),
				DepositMinSize:   optionalDecimal(chain.DepositMinSize),
				WithdrawMinSize:  optionalDecimal(chain.WithdrawalMinSize),
			})
		}
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

// FetchDepth reads the aggregated part order book and reduces it to the
// ask/bid volume split.
func (k *KucoinSource) FetchDepth(ctx context.Context, symbol string) (domain.LiquiditySnapshot, error) {
	var book struct {
		Asks [][]string `json:"asks"`
		Bids [][]string `json:"bids"`
	}
	err := k.get(ctx, "/api/v1/market/orderbook/level2_100", url.Values{"symbol": {symbol}}, &book)
	if err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: kucoin depth %s: %v", domain.ErrSourceUnavailable, symbol, err)
	}
	return liquiditySplit(sumQuantities(book.Asks), sumQuantities(book.Bids))
}

// get performs a GET, unwraps KuCoin's code/data envelope, and decodes data
// into out.
func (k *KucoinSource) get(ctx context.Context, path string, params url.Values, out any) error {
	rawURL := k.baseURL + path
	if query := params.Encode(); query != "" {
		rawURL += "?" + query
	}

	var envelope struct {
		Code string          `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := getJSON(ctx, k.httpClient, rawURL, nil, &envelope); err != nil {
		return err
	}
	if envelope.Code != kucoinOKCode {
		return fmt.Errorf("%w: code %s: %s", domain.ErrSourceUnavailable, envelope.Code, envelope.Msg)
	}
	return json.Unmarshal(envelope.Data, out)
}
