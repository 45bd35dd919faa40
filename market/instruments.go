// market/instruments.go
package market

type InstrumentMeta struct {
	Name             string
	Class            string
	PipLocation      int
	MinimumTradeSize float64
	MarginRate       float64 // fraction of notional held as margin
	MaxLeverage      float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:             "EUR_USD",
		Class:            ClassForexMajor,
		PipLocation:      -4,
		MinimumTradeSize: 1,
		MarginRate:       0.02,
		MaxLeverage:      50,
	},
	"USD_JPY": {
		Name:             "USD_JPY",
		Class:            ClassForexMajor,
		PipLocation:      -2,
		MinimumTradeSize: 1,
		MarginRate:       0.02,
		MaxLeverage:      50,
	},
	"GBP_USD": {
		Name:             "GBP_USD",
		Class:            ClassForexMajor,
		PipLocation:      -4,
		MinimumTradeSize: 1,
		MarginRate:       0.03,
		MaxLeverage:      33,
	},
	"BTC_USD": {
		Name:             "BTC_USD",
		Class:            ClassCrypto,
		PipLocation:      0,
		MinimumTradeSize: 0.001,
		MarginRate:       0.5,
		MaxLeverage:      2,
	},
	"ETH_USD": {
		Name:             "ETH_USD",
		Class:            ClassCrypto,
		PipLocation:      -1,
		MinimumTradeSize: 0.01,
		MarginRate:       0.5,
		MaxLeverage:      2,
	},
	"SPX500": {
		Name:             "SPX500",
		Class:            ClassIndex,
		PipLocation:      -1,
		MinimumTradeSize: 0.1,
		MarginRate:       0.05,
		MaxLeverage:      20,
	},
	"XAU_USD": {
		Name:             "XAU_USD",
		Class:            ClassCommodity,
		PipLocation:      -2,
		MinimumTradeSize: 1,
		MarginRate:       0.05,
		MaxLeverage:      20,
	},
}

// Leverage returns the maximum leverage for a symbol, falling back to a
// conservative 1x for instruments we have no metadata for.
func Leverage(symbol string) float64 {
	if meta, ok := Instruments[symbol]; ok && meta.MaxLeverage > 0 {
		return meta.MaxLeverage
	}
	return 1
}
