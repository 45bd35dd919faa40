package risk

import (
	"math"
	"time"

	"github.com/rustyeddy/riskwatch/market"
	"github.com/rustyeddy/riskwatch/portfolio"
)

// Metrics is the full derived view of portfolio risk. It is recomputed on
// every evaluation and never persisted as a source of truth.
type Metrics struct {
	TotalEquity     float64
	TotalMarginUsed float64
	FreeMargin      float64

	// MarginLevel is equity/marginUsed*100. +Inf means no margin in use,
	// which classifies as SAFE; it is the only infinity a Metrics may carry.
	MarginLevel float64

	DailyPL        float64
	DailyLossLimit float64

	Drawdown      float64
	DrawdownLimit float64

	ConcentrationByAsset map[string]float64
	OpenPositions        int
	TotalExposure        float64
	CorrelationRisk      float64
	VaREstimate          float64

	Status      PortfolioStatus
	Violations  []Violation
	LastUpdated time.Time
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// TotalExposure sums |quantity * current price| over all positions.
func TotalExposure(positions []portfolio.Position) float64 {
	var total float64
	for _, p := range positions {
		total += p.Notional()
	}
	return total
}

// Concentration buckets notional exposure by asset class and returns each
// bucket as a fraction of total exposure. Zero exposure yields an empty map
// so callers never see a division by zero.
func Concentration(positions []portfolio.Position) map[string]float64 {
	total := TotalExposure(positions)
	out := map[string]float64{}
	if total <= 0 {
		return out
	}

	for _, p := range positions {
		out[market.AssetClass(p.Symbol)] += p.Notional()
	}
	for class, notional := range out {
		out[class] = notional / total
	}
	return out
}

// Drawdown is the fractional decline from peak equity, clamped to >= 0.
// A non-positive peak is an invalid baseline and reports no drawdown.
func Drawdown(currentEquity, peakEquity float64) float64 {
	if peakEquity <= 0 {
		return 0
	}
	dd := (peakEquity - currentEquity) / peakEquity
	if dd < 0 {
		return 0
	}
	return dd
}

// PortfolioCorrelation estimates correlation as the fraction of same-side
// position pairs over all pairs. This is a direction proxy, not a return
// covariance; it honors the [0,1] contract and reports 0 when there are
// fewer than two positions.
func PortfolioCorrelation(positions []portfolio.Position) float64 {
	n := len(positions)
	if n < 2 {
		return 0
	}

	var sameSide, pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs++
			if positions[i].Side == positions[j].Side {
				sameSide++
			}
		}
	}
	return float64(sameSide) / float64(pairs)
}

// zScore maps a confidence level to its one-tailed normal quantile.
func zScore(confidence float64) float64 {
	switch confidence {
	case 0.99:
		return 2.326
	case 0.95:
		return 1.645
	default:
		return 1.645
	}
}

// VaR is a simplified parametric value-at-risk as a fraction of equity,
// capped at 1.0. Non-positive equity reports 0.
func VaR(totalExposure, equity, volatility, confidence float64) float64 {
	if equity <= 0 {
		return 0
	}
	v := totalExposure * volatility * zScore(confidence) / equity
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const (
	DefaultVolatility = 0.15
	DefaultConfidence = 0.95
)

// MarginLevel returns equity/marginUsed as a percentage, with +Inf as the
// documented sentinel for "no margin in use".
func MarginLevel(equity, marginUsed float64) float64 {
	if marginUsed <= 0 {
		return math.Inf(1)
	}
	return equity / marginUsed * 100
}

// PortfolioMetrics assembles the full Metrics record for one evaluation.
// It is deterministic apart from LastUpdated.
func PortfolioMetrics(positions []portfolio.Position, acct portfolio.AccountSnapshot, thresholds Thresholds) Metrics {
	exposure := TotalExposure(positions)

	m := Metrics{
		TotalEquity:          acct.Equity,
		TotalMarginUsed:      acct.MarginUsed,
		FreeMargin:           acct.Equity - acct.MarginUsed,
		MarginLevel:          MarginLevel(acct.Equity, acct.MarginUsed),
		DailyPL:              acct.DailyPL,
		DailyLossLimit:       thresholds.Value(ThresholdDailyLoss),
		Drawdown:             Drawdown(acct.Equity, acct.PeakEquity),
		DrawdownLimit:        thresholds.Value(ThresholdDrawdown),
		ConcentrationByAsset: Concentration(positions),
		OpenPositions:        len(positions),
		TotalExposure:        exposure,
		CorrelationRisk:      PortfolioCorrelation(positions),
		VaREstimate:          VaR(exposure, acct.Equity, DefaultVolatility, DefaultConfidence),
		LastUpdated:          time.Now(),
	}

	d := EvaluatePortfolio(m, thresholds)
	m.Status = d.Status
	m.Violations = d.Violations
	return m
}
