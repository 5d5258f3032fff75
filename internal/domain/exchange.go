package domain

// Exchange identifies a centralized exchange acting as a price source.
type Exchange string

const (
	ExchangeBinance Exchange = "binance"
	ExchangeBybit   Exchange = "bybit"
	ExchangeKucoin  Exchange = "kucoin"
	ExchangeGateio  Exchange = "gateio"
)

// Valid reports whether e is one of the known exchanges.
func (e Exchange) Valid() bool {
	switch e {
	case ExchangeBinance, ExchangeBybit, ExchangeKucoin, ExchangeGateio:
		return true
	default:
		return false
	}
}

func (e Exchange) String() string { return string(e) }
