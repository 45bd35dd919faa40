// alert/alert.go
package alert

import (
	"time"

	"github.com/rustyeddy/riskwatch/risk"
)

type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityCritical  Severity = "critical"
	SeverityEmergency Severity = "emergency"
)

// SeverityFor maps a margin status to its notification severity.
func SeverityFor(s risk.MarginStatus) Severity {
	switch s {
	case risk.MarginWarning:
		return SeverityWarning
	case risk.MarginCritical:
		return SeverityCritical
	case risk.MarginLiquidation:
		return SeverityEmergency
	default:
		return SeverityInfo
	}
}

type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// Alert is one lifecycle record: created on a transition, optionally
// acknowledged, resolved on recovery. Only the timestamp fields mutate
// after creation.
type Alert struct {
	ID     string
	UserID string

	// Kind is "margin", "portfolio", or a threshold type string.
	Kind  string
	Scope string // symbol or "account"

	Severity Severity
	Message  string

	CurrentValue  float64
	Threshold     float64
	ExceedancePct float64

	Status         Status
	CreatedAt      time.Time
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
}

// Notification is the user-facing payload handed to the delivery
// collaborator. Delivery is decoupled from alert bookkeeping.
type Notification struct {
	UserID   string
	Severity Severity
	Title    string
	Message  string
}

// Notifier delivers notifications downstream (email, push). Implementations
// live outside the core; failures are logged by the manager and never
// propagate.
type Notifier interface {
	Notify(n Notification) error
}

// ExceedancePct reports how far past a threshold a value landed, as a
// percentage of the threshold. A zero threshold reports 0 rather than
// dividing by it.
func ExceedancePct(current, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	diff := current - threshold
	if diff < 0 {
		diff = -diff
	}
	t := threshold
	if t < 0 {
		t = -t
	}
	return diff / t * 100
}

// severityForExceedance applies the generic threshold-alert rule: more than
// 10% past the limit is critical, anything else warning.
func severityForExceedance(pct float64) Severity {
	if pct > 10 {
		return SeverityCritical
	}
	return SeverityWarning
}
