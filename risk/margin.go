package risk

import (
	"math"
	"time"
)

// MarginStatus is the margin-level classification (Scheme A). It drives
// order-placement restrictions and liquidation messaging; portfolio-level
// threshold state lives in PortfolioStatus.
type MarginStatus string

const (
	MarginSafe        MarginStatus = "SAFE"
	MarginWarning     MarginStatus = "WARNING"
	MarginCritical    MarginStatus = "CRITICAL"
	MarginLiquidation MarginStatus = "LIQUIDATION"
)

// ClassifyMargin maps a margin level (percent) to its status band:
// SAFE >= 200, WARNING 100-199, CRITICAL 50-99, LIQUIDATION < 50.
// An unbounded level (no margin in use) is SAFE regardless of equity.
func ClassifyMargin(level float64) MarginStatus {
	switch {
	case math.IsInf(level, 1):
		return MarginSafe
	case level >= 200:
		return MarginSafe
	case level >= 100:
		return MarginWarning
	case level >= 50:
		return MarginCritical
	default:
		return MarginLiquidation
	}
}

// ClassifyAccount classifies directly from equity and margin in use.
func ClassifyAccount(equity, marginUsed float64) (MarginStatus, float64) {
	level := MarginLevel(equity, marginUsed)
	return ClassifyMargin(level), level
}

type OrderRestriction string

const (
	RestrictionNone          OrderRestriction = "none"
	RestrictionNoNewLeverage OrderRestriction = "no_new_leverage"
	RestrictionCloseOnly     OrderRestriction = "close_only"
)

// Restriction returns the order-placement restriction in force for a
// status. WARNING still permits new orders.
func (s MarginStatus) Restriction() OrderRestriction {
	switch s {
	case MarginCritical:
		return RestrictionNoNewLeverage
	case MarginLiquidation:
		return RestrictionCloseOnly
	default:
		return RestrictionNone
	}
}

// TimeToLiquidation is a linear proxy, not a simulation: defined only below
// the 100% margin level, it estimates max(1, round(level)) minutes.
func TimeToLiquidation(level float64) *time.Duration {
	if math.IsInf(level, 1) || level >= 100 {
		return nil
	}
	mins := math.Round(level)
	if mins < 1 {
		mins = 1
	}
	d := time.Duration(mins) * time.Minute
	return &d
}

// RecommendedActions maps a margin status to the action hints surfaced to
// the account holder.
func (s MarginStatus) RecommendedActions() []string {
	switch s {
	case MarginSafe:
		return []string{"monitor"}
	case MarginWarning:
		return []string{"reduce_size", "add_funds"}
	case MarginCritical:
		return []string{"close_positions", "add_funds_urgent", "order_restriction"}
	case MarginLiquidation:
		return []string{"force_liquidation", "emergency_deposit"}
	default:
		return nil
	}
}
