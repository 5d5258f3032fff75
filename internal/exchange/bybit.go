package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	bybit "github.com/bybit-exchange/bybit.go.api"
	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

// DefaultBybitBaseURL is the production v5 REST root.
const DefaultBybitBaseURL = "https://api.bybit.com"

const bybitRecvWindow = "5000"

// BybitSource serves quotes and depth from Bybit spot (v5 unified API).
// Market data is public; the coin info endpoint is signed, so credentials
// are required for network metadata.
type BybitSource struct {
	client     *bybit.Client
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
}

// NewBybitSource creates a Bybit adapter. An empty baseURL selects
// production.
func NewBybitSource(baseURL, apiKey, apiSecret string) *BybitSource {
	if baseURL == "" {
		baseURL = DefaultBybitBaseURL
	}
	return &BybitSource{
		client:     bybit.NewBybitHttpClient("", "", bybit.WithBaseURL(baseURL)),
		httpClient: newHTTPClient(),
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

func (b *BybitSource) Exchange() domain.Exchange { return domain.ExchangeBybit }

type bybitEnvelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

type bybitInstrument struct {
	Symbol   string `json:"symbol"`
	BaseCoin string `json:"baseCoin"`
	Status   string `json:"status"`
}

type bybitTicker struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	Bid1Price string `json:"bid1Price"`
	Ask1Price string `json:"ask1Price"`
}

type bybitChain struct {
	Chain                 string `json:"chain"`
	ChainDeposit          string `json:"chainDeposit"`
	ChainWithdraw         string `json:"chainWithdraw"`
	WithdrawFee           string `json:"withdrawFee"`
	WithdrawPercentageFee string `json:"withdrawPercentageFee"`
	WithdrawMin           string `json:"withdrawMin"`
	DepositMin            string `json:"depositMin"`
}

type bybitCoinRow struct {
	Coin   string       `json:"coin"`
	Chains []bybitChain `json:"chains"`
}

// FetchQuotes snapshots trading spot instruments, tickers, and per-coin
// chain metadata.
func (b *BybitSource) FetchQuotes(ctx context.Context) (domain.ExchangeData, error) {
	instruments, err := b.fetchInstruments(ctx)
	if err != nil {
		return domain.ExchangeData{}, err
	}
	tickers, err := b.fetchTickers(ctx)
	if err != nil {
		return domain.ExchangeData{}, err
	}
	coins, err := b.fetchCoinInfo(ctx)
	if err != nil {
		return domain.ExchangeData{}, err
	}

	data := domain.ExchangeData{
		BaseAssetBySymbol: make(map[string]string, len(instruments)),
	}
	for _, inst := range instruments {
		if inst.Status != "Trading" {
			continue
		}
		data.BaseAssetBySymbol[inst.Symbol] = inst.BaseCoin
	}

	data.Prices = make([]domain.SymbolPrice, 0, len(tickers))
	for _, t := range tickers {
		price, err := parseTicker(t.Symbol, t.LastPrice, t.Bid1Price, t.Ask1Price)
		if err != nil {
			continue
		}
		data.Prices = append(data.Prices, price)
	}

	for _, coin := range coins {
		networks := make([]domain.NetworkOption, 0, len(coin.Chains))
		for _, chain := range coin.Chains {
			if chain.ChainDeposit != "1" || chain.ChainWithdraw != "1" {
				continue
			}
			networks = append(networks, domain.NetworkOption{
				Name:               strings.ToUpper(chain.Chain),
				WithdrawFixedFee:   fixedFee(chain.WithdrawFee),
				WithdrawPercentFee: bybitPercentFee(chain.WithdrawPercentageFee),
				DepositMinSize:     optionalDecimal(chain.DepositMin),
				WithdrawMinSize:    optionalDecimal(chain.WithdrawMin),
			})
		}
		if len(networks) == 0 {
			continue
		}
		data.Networks = append(data.Networks, domain.AssetNetworks{
			BaseAsset: coin.Coin,
			Networks:  networks,
		})
	}
	return data, nil
}

// FetchDepth reads the spot order book through the v5 SDK and reduces it to
// the ask/bid volume split.
func (b *BybitSource) FetchDepth(ctx context.Context, symbol string) (domain.LiquiditySnapshot, error) {
	params := map[string]interface{}{
		"category": "spot",
		"symbol":   symbol,
		"limit":    depthLevels,
	}
	resp, err := b.client.NewUtaBybitServiceWithParams(params).GetOrderBookInfo(ctx)
	if err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: bybit depth %s: %v", domain.ErrSourceUnavailable, symbol, err)
	}
	if resp.RetCode != 0 {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: bybit depth %s: %s", domain.ErrSourceUnavailable, symbol, resp.RetMsg)
	}

	payload, err := json.Marshal(resp.Result)
	if err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("bybit: marshal order book: %w", err)
	}
	var book struct {
		Asks [][]string `json:"a"`
		Bids [][]string `json:"b"`
	}
	if err := json.Unmarshal(payload, &book); err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("bybit: decode order book: %w", err)
	}
	return liquiditySplit(sumQuantities(book.Asks), sumQuantities(book.Bids))
}

func (b *BybitSource) fetchInstruments(ctx context.Context) ([]bybitInstrument, error) {
	var result struct {
		List []bybitInstrument `json:"list"`
	}
	if err := b.getResult(ctx, "/v5/market/instruments-info", url.Values{
		"category": {"spot"},
		"limit":    {"1000"},
	}, false, &result); err != nil {
		return nil, fmt.Errorf("bybit: instruments: %w", err)
	}
	return result.List, nil
}

func (b *BybitSource) fetchTickers(ctx context.Context) ([]bybitTicker, error) {
	var result struct {
		List []bybitTicker `json:"list"`
	}
	if err := b.getResult(ctx, "/v5/market/tickers", url.Values{
		"category": {"spot"},
	}, false, &result); err != nil {
		return nil, fmt.Errorf("bybit: tickers: %w", err)
	}
	return result.List, nil
}

func (b *BybitSource) fetchCoinInfo(ctx context.Context) ([]bybitCoinRow, error) {
	if b.apiKey == "" || b.apiSecret == "" {
		return nil, fmt.Errorf("%w: bybit coin info requires api credentials", domain.ErrSourceUnavailable)
	}
	var result struct {
		Rows []bybitCoinRow `json:"rows"`
	}
	if err := b.getResult(ctx, "/v5/asset/coin/query-info", url.Values{}, true, &result); err != nil {
		return nil, fmt.Errorf("bybit: coin info: %w", err)
	}
	return result.Rows, nil
}

// getResult performs a v5 GET, optionally signed, unwraps the envelope, and
// decodes the result payload.
func (b *BybitSource) getResult(ctx context.Context, path string, params url.Values, signed bool, out any) error {
	query := params.Encode()

	header := http.Header{}
	if signed {
		timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
		mac := hmac.New(sha256.New, []byte(b.apiSecret))
		mac.Write([]byte(timestamp + b.apiKey + bybitRecvWindow + query))
		header.Set("X-BAPI-API-KEY", b.apiKey)
		header.Set("X-BAPI-TIMESTAMP", timestamp)
		header.Set("X-BAPI-RECV-WINDOW", bybitRecvWindow)
		header.Set("X-BAPI-SIGN", hex.EncodeToString(mac.Sum(nil)))
	}

	rawURL := b.baseURL + path
	if query != "" {
		rawURL += "?" + query
	}

	var envelope bybitEnvelope
	if err := getJSON(ctx, b.httpClient, rawURL, header, &envelope); err != nil {
		return err
	}
	if envelope.RetCode != 0 {
		return fmt.Errorf("%w: retCode %d: %s", domain.ErrSourceUnavailable, envelope.RetCode, envelope.RetMsg)
	}
	return json.Unmarshal(envelope.Result, out)
}

// bybitPercentFee converts the percentage fee ratio (e.g. "0.0005") into
// percent units, or nil when absent or zero.
func bybitPercentFee(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	ratio, err := decimal.NewFromString(raw)
	if err != nil || !ratio.IsPositive() {
		return nil
	}
	pct := ratio.Mul(hundred)
	return &pct
}
