package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/arbscan/arbscan/internal/domain"
)

// BinanceSource serves quotes and depth from Binance spot. Network metadata
// comes from the capital config endpoint, which needs API credentials even
// for read-only use.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a Binance adapter. The credentials are required:
// the coin info endpoint is signed, and without networks every quote is
// dropped during assembly.
func NewBinanceSource(apiKey, secretKey string) *BinanceSource {
	return &BinanceSource{client: binance.NewClient(apiKey, secretKey)}
}

func (b *BinanceSource) Exchange() domain.Exchange { return domain.ExchangeBinance }

// FetchQuotes snapshots active spot symbols, 24h tickers, and per-coin
// network metadata.
func (b *BinanceSource) FetchQuotes(ctx context.Context) (domain.ExchangeData, error) {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return domain.ExchangeData{}, fmt.Errorf("binance: exchange info: %w", err)
	}
	stats, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return domain.ExchangeData{}, fmt.Errorf("binance: ticker stats: %w", err)
	}
	coins, err := b.client.NewGetAllCoinsInfoService().Do(ctx)
	if err != nil {
		return domain.ExchangeData{}, fmt.Errorf("binance: coin info: %w", err)
	}

	data := domain.ExchangeData{
		BaseAssetBySymbol: make(map[string]string, len(info.Symbols)),
	}
	for _, sym := range info.Symbols {
		if sym.Status != "TRADING" {
			continue
		}
		data.BaseAssetBySymbol[sym.Symbol] = sym.BaseAsset
	}

	data.Prices = make([]domain.SymbolPrice, 0, len(stats))
	for _, st := range stats {
		price, err := parseTicker(st.Symbol, st.LastPrice, st.BidPrice, st.AskPrice)
		if err != nil {
			continue
		}
		data.Prices = append(data.Prices, price)
	}

	for _, coin := range coins {
		networks := make([]domain.NetworkOption, 0, len(coin.NetworkList))
		for _, n := range coin.NetworkList {
			if !n.DepositEnable || !n.WithdrawEnable {
				continue
			}
			networks = append(networks, domain.NetworkOption{
				Name:             strings.ToUpper(n.Network),
				WithdrawFixedFee: fixedFee(n.WithdrawFee),
				WithdrawMinSize:  optionalDecimal(n.WithdrawMin),
				WithdrawMaxSize:  optionalDecimal(n.WithdrawMax),
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

// FetchDepth reads the spot order book and reduces it to the ask/bid volume
// split.
func (b *BinanceSource) FetchDepth(ctx context.Context, symbol string) (domain.LiquiditySnapshot, error) {
	res, err := b.client.NewDepthService().Symbol(symbol).Limit(depthLevels).Do(ctx)
	if err != nil {
		return domain.LiquiditySnapshot{}, fmt.Errorf("%w: binance depth %s: %v", domain.ErrSourceUnavailable, symbol, err)
	}

	askQty, bidQty := decimal.Zero, decimal.Zero
	for _, level := range res.Asks {
		if qty, err := decimal.NewFromString(level.Quantity); err == nil {
			askQty = askQty.Add(qty)
		}
	}
	for _, level := range res.Bids {
		if qty, err := decimal.NewFromString(level.Quantity); err == nil {
			bidQty = bidQty.Add(qty)
		}
	}
	return liquiditySplit(askQty, bidQty)
}

// parseTicker builds a SymbolPrice from raw ticker strings. A ticker whose
// last price does not parse is unusable; bid/ask default to zero when absent.
func parseTicker(symbol, last, bid, ask string) (domain.SymbolPrice, error) {
	lastPrice, err := decimal.NewFromString(last)
	if err != nil {
		return domain.SymbolPrice{}, fmt.Errorf("parse last price %q: %w", last, err)
	}
	price := domain.SymbolPrice{Symbol: symbol, LastPrice: lastPrice}
	if bidPrice, err := decimal.NewFromString(bid); err == nil {
		price.BestBid = bidPrice
	}
	if askPrice, err := decimal.NewFromString(ask); err == nil {
		price.BestAsk = askPrice
	}
	return price, nil
}
