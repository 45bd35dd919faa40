package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/riskwatch/portfolio"
)

func TestAnalyzePosition_Long(t *testing.T) {
	t.Parallel()

	p := portfolio.Position{
		Symbol:       "EUR_USD",
		Side:         portfolio.Long,
		Quantity:     10000,
		EntryPrice:   1.10,
		CurrentPrice: 1.10,
	}
	in := SizingInputs{Equity: 10000, FreeMargin: 8000, RiskPerTradePct: 0.01}

	a := AnalyzePosition(p, in)

	// EUR_USD has 50x leverage: margin = 11000/50, liq at 2% below price.
	assert.InDelta(t, 220.0, a.RequiredMargin, 1e-9)
	assert.InDelta(t, 1.10*(1-1.0/50), a.LiquidationPrice, 1e-9)

	// riskAmount = 100, 100/10000 = 0.01 < 1% of price (0.011), so the 1%
	// floor applies.
	assert.InDelta(t, 1.10-0.011, a.SuggestedStop, 1e-9)
	assert.InDelta(t, 1.10+0.022, a.SuggestedTake, 1e-9)

	// riskCap = 100/0.011 ~ 9090.9, marginCap = 8000/(1.10/50) ~ 363636.
	assert.InDelta(t, 100/0.011, a.MaxSize, 1e-6)
	assert.InDelta(t, a.MaxSize*0.8, a.OptimalSize, 1e-9)
	// optimal (~7272) is below current quantity, so it is recommended as-is.
	assert.InDelta(t, a.OptimalSize, a.RecommendedSize, 1e-9)
}

func TestAnalyzePosition_ShortLiquidationAboveEntry(t *testing.T) {
	t.Parallel()

	p := portfolio.Position{
		Symbol:       "BTC_USD",
		Side:         portfolio.Short,
		Quantity:     0.5,
		EntryPrice:   60000,
		CurrentPrice: 60000,
	}
	a := AnalyzePosition(p, SizingInputs{Equity: 50000, FreeMargin: 20000})

	// 2x leverage: short liquidates 50% above price.
	assert.InDelta(t, 60000*1.5, a.LiquidationPrice, 1e-6)
	assert.Greater(t, a.SuggestedStop, 60000.0)
	assert.Less(t, a.SuggestedTake, 60000.0)
}

func TestAnalyzePosition_NeverRecommendsScalingUp(t *testing.T) {
	t.Parallel()

	p := portfolio.Position{
		Symbol:       "EUR_USD",
		Side:         portfolio.Long,
		Quantity:     100, // tiny position
		EntryPrice:   1.10,
		CurrentPrice: 1.10,
	}
	a := AnalyzePosition(p, SizingInputs{Equity: 100000, FreeMargin: 90000})

	assert.InDelta(t, 100.0, a.RecommendedSize, 1e-9)
	assert.Greater(t, a.OptimalSize, a.RecommendedSize)
}

func TestAnalyzePosition_DegeneratesSafely(t *testing.T) {
	t.Parallel()

	// Zero price and zero quantity must not divide by zero or emit
	// negative outputs.
	a := AnalyzePosition(portfolio.Position{Symbol: "EUR_USD", Side: portfolio.Long}, SizingInputs{})
	assert.Zero(t, a.RequiredMargin)
	assert.Zero(t, a.LiquidationPrice)
	assert.Zero(t, a.MaxSize)

	// Negative equity clamps risk to zero instead of producing a negative
	// stop distance.
	p := portfolio.Position{
		Symbol: "EUR_USD", Side: portfolio.Long, Quantity: 100, CurrentPrice: 1.0,
	}
	a = AnalyzePosition(p, SizingInputs{Equity: -5000, FreeMargin: -100})
	assert.GreaterOrEqual(t, a.SuggestedStop, 0.0)
	assert.GreaterOrEqual(t, a.MaxSize, 0.0)
}
