// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/riskwatch/alert"
	"github.com/rustyeddy/riskwatch/risk"
)

// RiskSnapshot is the journaled form of one evaluation: the account-level
// numbers worth charting later. Derived maps stay out of the journal; they
// are recomputable.
type RiskSnapshot struct {
	Time          time.Time
	Equity        float64
	MarginUsed    float64
	FreeMargin    float64
	MarginLevel   float64
	Drawdown      float64
	DailyPL       float64
	TotalExposure float64
	VaREstimate   float64
	Status        string
}

// Journal persists alert and risk history. Persistence is a collaborator
// concern: the engine works without one, and journal errors are logged by
// the caller, never propagated into risk evaluation.
type Journal interface {
	RecordAlert(alert.Alert) error
	RecordRisk(RiskSnapshot) error
	Close() error
}

// SnapshotFrom flattens a Metrics record for journaling.
func SnapshotFrom(m risk.Metrics) RiskSnapshot {
	return RiskSnapshot{
		Time:          m.LastUpdated,
		Equity:        m.TotalEquity,
		MarginUsed:    m.TotalMarginUsed,
		FreeMargin:    m.FreeMargin,
		MarginLevel:   m.MarginLevel,
		Drawdown:      m.Drawdown,
		DailyPL:       m.DailyPL,
		TotalExposure: m.TotalExposure,
		VaREstimate:   m.VaREstimate,
		Status:        string(m.Status),
	}
}

// Nop discards everything; useful default when journaling is disabled.
type Nop struct{}

func (Nop) RecordAlert(alert.Alert) error { return nil }
func (Nop) RecordRisk(RiskSnapshot) error { return nil }
func (Nop) Close() error                  { return nil }
