// alert/manager.go
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskwatch/id"
	"github.com/rustyeddy/riskwatch/risk"
)

const (
	// DefaultRetention bounds the most-recent-kept alert list.
	DefaultRetention = 50

	// DefaultActiveTTL is how long an alert stays in the active view.
	DefaultActiveTTL = 5 * time.Minute

	// DefaultSweepInterval is the cadence of the active-view purge.
	DefaultSweepInterval = time.Minute
)

// Manager owns alert lifecycle state. It is constructed and wired
// explicitly by the caller; there is no package-level instance.
//
// The anti-spam contract: an alert is created only when the observed status
// differs from the immediately preceding one for the same (user, scope)
// pair. Sitting in CRITICAL produces exactly one alert at the transition.
type Manager struct {
	mu sync.Mutex

	log      zerolog.Logger
	notifier Notifier
	now      func() time.Time

	retention     int
	activeTTL     time.Duration
	sweepInterval time.Duration

	lastMargin    map[string]risk.MarginStatus    // user|scope
	lastPortfolio map[string]risk.PortfolioStatus // user|scope
	violated      map[string]*Alert               // user|scope|type -> active alert

	recent []Alert           // retention ring, newest last
	active map[string]*Alert // id -> alert, purged by sweep
}

type Option func(*Manager)

// WithNotifier wires the downstream delivery collaborator.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithClock overrides time for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

func WithActiveTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.activeTTL = d
		}
	}
}

func NewManager(log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		log:           log.With().Str("component", "alerts").Logger(),
		now:           time.Now,
		retention:     DefaultRetention,
		activeTTL:     DefaultActiveTTL,
		sweepInterval: DefaultSweepInterval,
		lastMargin:    make(map[string]risk.MarginStatus),
		lastPortfolio: make(map[string]risk.PortfolioStatus),
		violated:      make(map[string]*Alert),
		active:        make(map[string]*Alert),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func key(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "|" + p
	}
	return out
}

// ObserveMargin records a margin-status evaluation. A previously unseen
// (user, scope) is treated as coming from SAFE, so the first CRITICAL
// observation alerts and the first SAFE one does not.
func (m *Manager) ObserveMargin(userID string, status risk.MarginStatus, level float64) *Alert {
	m.mu.Lock()

	k := key(userID, "margin")
	prev, seen := m.lastMargin[k]
	if !seen {
		prev = risk.MarginSafe
	}
	m.lastMargin[k] = status

	if status == prev {
		m.mu.Unlock()
		return nil
	}

	a := m.appendLocked(Alert{
		UserID:       userID,
		Kind:         "margin",
		Scope:        "account",
		Severity:     SeverityFor(status),
		Message:      marginMessage(status, level),
		CurrentValue: level,
		Threshold:    100, // liquidation-watch line
	})

	notif, send := marginNotification(userID, prev, status, level)
	m.mu.Unlock()

	if send {
		m.deliver(notif)
	}
	return a
}

func marginMessage(status risk.MarginStatus, level float64) string {
	msg := fmt.Sprintf("margin status %s (level %.1f%%)", status, level)
	if ttl := risk.TimeToLiquidation(level); ttl != nil {
		msg += fmt.Sprintf(", estimated %s to liquidation", *ttl)
	}
	return msg
}

// marginNotification decides whether a transition produces a user-facing
// notification: always on entering CRITICAL or LIQUIDATION, and once on the
// specific SAFE -> WARNING edge.
func marginNotification(userID string, prev, status risk.MarginStatus, level float64) (Notification, bool) {
	switch status {
	case risk.MarginCritical:
		return Notification{
			UserID:   userID,
			Severity: SeverityCritical,
			Title:    "Margin level critical",
			Message: fmt.Sprintf("Margin level is %.1f%%. New leveraged orders are restricted; close positions or add funds urgently.",
				level),
		}, true
	case risk.MarginLiquidation:
		return Notification{
			UserID:   userID,
			Severity: SeverityEmergency,
			Title:    "Liquidation imminent",
			Message: fmt.Sprintf("Margin level is %.1f%%. Account is in close-only mode and positions may be force-liquidated.",
				level),
		}, true
	case risk.MarginWarning:
		if prev == risk.MarginSafe {
			return Notification{
				UserID:   userID,
				Severity: SeverityWarning,
				Title:    "Margin level warning",
				Message: fmt.Sprintf("Margin level dropped to %.1f%%. Consider reducing position size or adding funds.",
					level),
			}, true
		}
	}
	return Notification{}, false
}

// ObservePortfolio records a portfolio-status evaluation for a scope
// (a symbol, or "account" for the aggregate). Change-only, like margin.
func (m *Manager) ObservePortfolio(userID, scope string, status risk.PortfolioStatus) *Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(userID, "portfolio", scope)
	prev, seen := m.lastPortfolio[k]
	if !seen {
		prev = risk.PortfolioSafe
	}
	m.lastPortfolio[k] = status

	if status == prev {
		return nil
	}

	sev := SeverityInfo
	switch status {
	case risk.PortfolioWarning, risk.PortfolioMonitor:
		sev = SeverityWarning
	case risk.PortfolioCritical:
		sev = SeverityCritical
	}

	return m.appendLocked(Alert{
		UserID:   userID,
		Kind:     "portfolio",
		Scope:    scope,
		Severity: sev,
		Message:  fmt.Sprintf("portfolio risk status %s (was %s)", status, prev),
	})
}

// ObserveViolations diffs a decision's violation set against the previous
// evaluation for the same (user, scope). Newly violated thresholds create
// alerts; cleared ones resolve their alert.
func (m *Manager) ObserveViolations(userID, scope string, d risk.Decision) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[risk.ThresholdType]risk.Violation, len(d.Violations))
	for _, v := range d.Violations {
		current[v.Type] = v
	}

	var created []Alert

	for typ, v := range current {
		k := key(userID, scope, string(typ))
		if _, already := m.violated[k]; already {
			continue
		}
		pct := ExceedancePct(v.Current, v.Threshold)
		a := m.appendLocked(Alert{
			UserID:        userID,
			Kind:          string(typ),
			Scope:         scope,
			Severity:      severityForExceedance(pct),
			Message:       v.Msg,
			CurrentValue:  v.Current,
			Threshold:     v.Threshold,
			ExceedancePct: pct,
		})
		m.violated[k] = a
		created = append(created, *a)
	}

	// Recovery resolves the corresponding alert.
	for k, a := range m.violated {
		if a.UserID != userID || a.Scope != scope {
			continue
		}
		if _, still := current[risk.ThresholdType(a.Kind)]; still {
			continue
		}
		m.resolveLocked(a)
		delete(m.violated, k)
	}

	return created
}

// Acknowledge marks an active alert acknowledged. Unknown or resolved ids
// are an error so callers can surface a stale UI action.
func (m *Manager) Acknowledge(alertID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.active[alertID]
	if !ok {
		return fmt.Errorf("acknowledge: alert %q not active", alertID)
	}
	if a.Status == StatusResolved {
		return fmt.Errorf("acknowledge: alert %q already resolved", alertID)
	}

	ts := m.now()
	a.Status = StatusAcknowledged
	a.AcknowledgedAt = &ts
	m.syncRecentLocked(a)
	return nil
}

func (m *Manager) resolveLocked(a *Alert) {
	ts := m.now()
	a.Status = StatusResolved
	a.ResolvedAt = &ts
	m.syncRecentLocked(a)
	delete(m.active, a.ID)
}

// appendLocked stamps and stores a new alert in both the retention ring and
// the active view.
func (m *Manager) appendLocked(a Alert) *Alert {
	a.ID = id.New()
	a.Status = StatusActive
	a.CreatedAt = m.now()

	m.recent = append(m.recent, a)
	if len(m.recent) > m.retention {
		m.recent = m.recent[len(m.recent)-m.retention:]
	}

	stored := a
	m.active[a.ID] = &stored

	m.log.Info().
		Str("user", a.UserID).
		Str("kind", a.Kind).
		Str("scope", a.Scope).
		Str("severity", string(a.Severity)).
		Msg(a.Message)

	return &stored
}

// syncRecentLocked copies mutated lifecycle fields back into the retention
// ring entry with the same id.
func (m *Manager) syncRecentLocked(a *Alert) {
	for i := range m.recent {
		if m.recent[i].ID == a.ID {
			m.recent[i] = *a
			return
		}
	}
}

// Recent returns a copy of the retained alerts, oldest first.
func (m *Manager) Recent() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, len(m.recent))
	copy(out, m.recent)
	return out
}

// Active returns unresolved alerts younger than the active TTL.
func (m *Manager) Active() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.activeTTL)
	out := make([]Alert, 0, len(m.active))
	for _, a := range m.active {
		if a.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// Sweep purges expired alerts from the active view. Retention is a
// separate concern and is untouched here.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.activeTTL)
	var purged int
	for id, a := range m.active {
		if a.CreatedAt.Before(cutoff) {
			delete(m.active, id)
			purged++
		}
	}
	if purged > 0 {
		m.log.Debug().Int("purged", purged).Msg("swept expired alerts")
	}
	return purged
}

// Run sweeps the active view on a ticker until the context is done.
func (m *Manager) Run(ctx context.Context) {
	t := time.NewTicker(m.sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// deliver hands a notification to the collaborator. Failures are logged and
// swallowed; alert bookkeeping has already happened and is never rolled
// back by a delivery problem.
func (m *Manager) deliver(n Notification) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(n); err != nil {
		m.log.Error().Err(err).
			Str("user", n.UserID).
			Str("title", n.Title).
			Msg("notification delivery failed")
	}
}
