package risk

import "fmt"

type ThresholdType string

const (
	ThresholdDailyLoss     ThresholdType = "daily_loss"
	ThresholdDrawdown      ThresholdType = "drawdown"
	ThresholdConcentration ThresholdType = "concentration"
	ThresholdCorrelation   ThresholdType = "correlation"
	ThresholdVaR           ThresholdType = "var"
)

type AlertLevel string

const (
	LevelWarning  AlertLevel = "WARNING"
	LevelCritical AlertLevel = "CRITICAL"
)

// Threshold is configuration, not derived state. One instance per type;
// callers may override defaults per account.
type Threshold struct {
	Type       ThresholdType
	Value      float64
	AlertLevel AlertLevel
	Enabled    bool
}

type Thresholds map[ThresholdType]Threshold

// DefaultThresholds returns the fixed default limits:
// daily loss 1000 account-currency units, drawdown 10%, concentration 25%
// per asset class, correlation 0.85, VaR 5% of equity.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ThresholdDailyLoss:     {Type: ThresholdDailyLoss, Value: 1000, AlertLevel: LevelCritical, Enabled: true},
		ThresholdDrawdown:      {Type: ThresholdDrawdown, Value: 0.10, AlertLevel: LevelCritical, Enabled: true},
		ThresholdConcentration: {Type: ThresholdConcentration, Value: 0.25, AlertLevel: LevelWarning, Enabled: true},
		ThresholdCorrelation:   {Type: ThresholdCorrelation, Value: 0.85, AlertLevel: LevelWarning, Enabled: true},
		ThresholdVaR:           {Type: ThresholdVaR, Value: 0.05, AlertLevel: LevelWarning, Enabled: true},
	}
}

// Value returns the configured limit for a type, or the default when the
// caller supplied a partial set.
func (t Thresholds) Value(typ ThresholdType) float64 {
	if th, ok := t[typ]; ok {
		return th.Value
	}
	return DefaultThresholds()[typ].Value
}

func (t Thresholds) enabled(typ ThresholdType) (Threshold, bool) {
	th, ok := t[typ]
	if !ok {
		th = DefaultThresholds()[typ]
	}
	return th, th.Enabled
}

// PortfolioStatus is the portfolio-level classification (Scheme B in the
// product docs). It is distinct from MarginStatus and must not be merged
// with it; the two enums overlap lexically but answer different questions.
type PortfolioStatus string

const (
	PortfolioSafe     PortfolioStatus = "SAFE"
	PortfolioWarning  PortfolioStatus = "WARNING"
	PortfolioCritical PortfolioStatus = "CRITICAL"
	PortfolioMonitor  PortfolioStatus = "MONITOR"
)

type Violation struct {
	Code string
	Type ThresholdType
	Msg  string

	Current   float64
	Threshold float64
}

type Decision struct {
	Status     PortfolioStatus
	Violations []Violation
}

func (d *Decision) add(code string, typ ThresholdType, current, threshold float64, msg string) {
	d.Violations = append(d.Violations, Violation{
		Code:      code,
		Type:      typ,
		Msg:       msg,
		Current:   current,
		Threshold: threshold,
	})
}

func (d Decision) has(typ ThresholdType) bool {
	for _, v := range d.Violations {
		if v.Type == typ {
			return true
		}
	}
	return false
}

// EvaluatePortfolio checks each enabled threshold independently and then
// classifies. Precedence, first match wins: no violations SAFE; daily-loss
// or drawdown CRITICAL; concentration WARNING; anything else MONITOR.
func EvaluatePortfolio(m Metrics, thresholds Thresholds) Decision {
	d := Decision{Status: PortfolioSafe}

	if th, on := thresholds.enabled(ThresholdDailyLoss); on {
		limit := abs(th.Value)
		if m.DailyPL < -limit {
			d.add("DAILY_LOSS_LIMIT", ThresholdDailyLoss, m.DailyPL, th.Value,
				fmt.Sprintf("daily P/L %.2f breaches loss limit %.2f", m.DailyPL, limit))
		}
	}

	if th, on := thresholds.enabled(ThresholdDrawdown); on {
		if m.Drawdown > th.Value {
			d.add("DRAWDOWN_LIMIT", ThresholdDrawdown, m.Drawdown, th.Value,
				fmt.Sprintf("drawdown %.2f%% exceeds limit %.2f%%", 100*m.Drawdown, 100*th.Value))
		}
	}

	if th, on := thresholds.enabled(ThresholdConcentration); on {
		for class, frac := range m.ConcentrationByAsset {
			if frac > th.Value {
				d.add("CONCENTRATION_LIMIT", ThresholdConcentration, frac, th.Value,
					fmt.Sprintf("%s is %.1f%% of exposure, limit %.1f%%", class, 100*frac, 100*th.Value))
			}
		}
	}

	if th, on := thresholds.enabled(ThresholdCorrelation); on {
		if m.CorrelationRisk > th.Value {
			d.add("CORRELATION_HIGH", ThresholdCorrelation, m.CorrelationRisk, th.Value,
				fmt.Sprintf("portfolio correlation %.2f exceeds %.2f", m.CorrelationRisk, th.Value))
		}
	}

	if th, on := thresholds.enabled(ThresholdVaR); on {
		if m.VaREstimate > th.Value {
			d.add("VAR_LIMIT", ThresholdVaR, m.VaREstimate, th.Value,
				fmt.Sprintf("VaR %.1f%% of equity exceeds %.1f%%", 100*m.VaREstimate, 100*th.Value))
		}
	}

	switch {
	case len(d.Violations) == 0:
		d.Status = PortfolioSafe
	case d.has(ThresholdDailyLoss) || d.has(ThresholdDrawdown):
		d.Status = PortfolioCritical
	case d.has(ThresholdConcentration):
		d.Status = PortfolioWarning
	default:
		d.Status = PortfolioMonitor
	}

	return d
}
