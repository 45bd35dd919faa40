// market/assets.go
package market

// Asset classes used for concentration bucketing. A symbol resolves to
// exactly one class; resolution order matters because some index tickers
// collide with stock-looking symbols.
const (
	ClassForexMajor = "forex_major"
	ClassCrypto     = "crypto"
	ClassIndex      = "index"
	ClassCommodity  = "commodity"
	ClassStock      = "stock"
	ClassUnknown    = "unknown"
)

var forexMajors = map[string]struct{}{
	"EUR_USD": {}, "EURUSD": {},
	"USD_JPY": {}, "USDJPY": {},
	"GBP_USD": {}, "GBPUSD": {},
	"USD_CHF": {}, "USDCHF": {},
	"AUD_USD": {}, "AUDUSD": {},
	"USD_CAD": {}, "USDCAD": {},
	"NZD_USD": {}, "NZDUSD": {},
}

var cryptos = map[string]struct{}{
	"BTC_USD": {}, "BTCUSD": {}, "BTCUSDT": {},
	"ETH_USD": {}, "ETHUSD": {}, "ETHUSDT": {},
	"SOL_USD": {}, "SOLUSD": {}, "SOLUSDT": {},
	"XRP_USD": {}, "XRPUSD": {}, "XRPUSDT": {},
}

var indices = map[string]struct{}{
	"SPX500": {}, "US500": {},
	"NAS100": {}, "US100": {},
	"US30":   {},
	"UK100":  {},
	"DE40":   {}, "GER40": {},
	"JP225":  {},
}

var commodities = map[string]struct{}{
	"XAU_USD": {}, "XAUUSD": {}, "GOLD": {},
	"XAG_USD": {}, "XAGUSD": {}, "SILVER": {},
	"WTICO_USD": {}, "USOIL": {},
	"BCO_USD": {}, "UKOIL": {},
	"NATGAS_USD": {}, "NATGAS": {},
}

// AssetClass maps a symbol to its concentration bucket.
// Resolution order: forex majors, crypto, indices, commodities, then
// anything else is treated as a stock. Empty symbols are unknown.
func AssetClass(symbol string) string {
	if symbol == "" {
		return ClassUnknown
	}
	if _, ok := forexMajors[symbol]; ok {
		return ClassForexMajor
	}
	if _, ok := cryptos[symbol]; ok {
		return ClassCrypto
	}
	if _, ok := indices[symbol]; ok {
		return ClassIndex
	}
	if _, ok := commodities[symbol]; ok {
		return ClassCommodity
	}
	return ClassStock
}
