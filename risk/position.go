package risk

import (
	"github.com/rustyeddy/riskwatch/market"
	"github.com/rustyeddy/riskwatch/portfolio"
)

// SizingInputs carries the account context needed for per-position
// analytics. RiskPerTradePct is the fraction of equity risked per trade.
type SizingInputs struct {
	Equity          float64
	FreeMargin      float64
	RiskPerTradePct float64
}

const DefaultRiskPerTradePct = 0.02

// PositionAnalytics is the per-position companion to the portfolio
// Metrics: margin requirement, liquidation distance, suggested exit levels
// and sizing. All outputs are finite and non-negative.
type PositionAnalytics struct {
	Symbol   string
	Side     portfolio.Side
	Exposure float64

	RequiredMargin   float64
	LiquidationPrice float64

	SuggestedStop float64
	SuggestedTake float64

	MaxSize         float64
	OptimalSize     float64
	RecommendedSize float64
}

// AnalyzePosition computes analytics for one open position.
//
// The liquidation distance is purely leverage-driven in this model:
// price * (1 -/+ 1/leverage) for long/short. The suggested stop is never
// tighter than 1% of price, and the take-profit keeps a fixed 2:1
// reward:risk. Sizing never recommends scaling up past current quantity.
func AnalyzePosition(p portfolio.Position, in SizingInputs) PositionAnalytics {
	out := PositionAnalytics{
		Symbol:   p.Symbol,
		Side:     p.Side,
		Exposure: p.Notional(),
	}

	price := p.CurrentPrice
	if price <= 0 || p.Quantity <= 0 {
		return out
	}

	leverage := market.Leverage(p.Symbol)
	out.RequiredMargin = out.Exposure / leverage

	if p.Side == portfolio.Long {
		out.LiquidationPrice = price * (1 - 1/leverage)
	} else {
		out.LiquidationPrice = price * (1 + 1/leverage)
	}
	if out.LiquidationPrice < 0 {
		out.LiquidationPrice = 0
	}

	riskPct := in.RiskPerTradePct
	if riskPct <= 0 {
		riskPct = DefaultRiskPerTradePct
	}
	riskAmount := in.Equity * riskPct
	if riskAmount < 0 {
		riskAmount = 0
	}

	stopDist := riskAmount / p.Quantity
	if min := price * 0.01; stopDist < min {
		stopDist = min
	}
	takeDist := 2 * stopDist

	if p.Side == portfolio.Long {
		out.SuggestedStop = price - stopDist
		out.SuggestedTake = price + takeDist
	} else {
		out.SuggestedStop = price + stopDist
		out.SuggestedTake = price - takeDist
	}
	if out.SuggestedStop < 0 {
		out.SuggestedStop = 0
	}
	if out.SuggestedTake < 0 {
		out.SuggestedTake = 0
	}

	// Sizing: risk-capped and margin-capped, whichever binds first.
	riskCap := riskAmount / stopDist
	marginCap := 0.0
	if in.FreeMargin > 0 {
		marginCap = in.FreeMargin / (price / leverage)
	}
	out.MaxSize = riskCap
	if marginCap < out.MaxSize {
		out.MaxSize = marginCap
	}
	if out.MaxSize < 0 {
		out.MaxSize = 0
	}

	out.OptimalSize = out.MaxSize * 0.8
	out.RecommendedSize = out.OptimalSize
	if p.Quantity < out.RecommendedSize {
		out.RecommendedSize = p.Quantity
	}

	return out
}

// AnalyzePositions runs AnalyzePosition over a whole book.
func AnalyzePositions(positions []portfolio.Position, in SizingInputs) []PositionAnalytics {
	out := make([]PositionAnalytics, 0, len(positions))
	for _, p := range positions {
		out = append(out, AnalyzePosition(p, in))
	}
	return out
}
