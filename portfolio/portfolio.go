// portfolio/portfolio.go
package portfolio

import "time"

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Position is one open position as reported by the tracking layer.
// Quantity is always positive; direction lives in Side.
type Position struct {
	Symbol       string
	Side         Side
	Quantity     float64
	EntryPrice   float64
	CurrentPrice float64
	UnrealizedPL float64
	MarginUsed   float64
	OpenTime     time.Time
	UpdatedAt    time.Time
}

// Notional returns |quantity * current price|.
func (p Position) Notional() float64 {
	n := p.Quantity * p.CurrentPrice
	if n < 0 {
		return -n
	}
	return n
}

// AccountSnapshot is an immutable account view per evaluation.
// PeakEquity is the caller-maintained high-water mark; DailyPL resets once
// per trading day upstream.
type AccountSnapshot struct {
	Balance    float64
	Equity     float64
	MarginUsed float64
	FreeMargin float64
	PeakEquity float64
	DailyPL    float64
}
