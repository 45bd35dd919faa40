package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskwatch/risk"
)

type fakeNotifier struct {
	sent []Notification
	err  error
}

func (f *fakeNotifier) Notify(n Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	opts = append([]Option{WithNotifier(n)}, opts...)
	return NewManager(zerolog.Nop(), opts...), n
}

func TestObserveMargin_AntiSpam(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	// Repeated CRITICAL yields exactly one alert, at the transition.
	a := m.ObserveMargin("u1", risk.MarginCritical, 80)
	require.NotNil(t, a)
	assert.Equal(t, SeverityCritical, a.Severity)

	for i := 0; i < 5; i++ {
		assert.Nil(t, m.ObserveMargin("u1", risk.MarginCritical, 78))
	}
	assert.Len(t, m.Recent(), 1)

	// Recovery is a change again.
	assert.NotNil(t, m.ObserveMargin("u1", risk.MarginSafe, 300))
	assert.Len(t, m.Recent(), 2)
}

func TestObserveMargin_FirstSafeIsSilent(t *testing.T) {
	t.Parallel()

	m, n := newTestManager(t)
	assert.Nil(t, m.ObserveMargin("u1", risk.MarginSafe, 400))
	assert.Empty(t, m.Recent())
	assert.Empty(t, n.sent)
}

func TestObserveMargin_Notifications(t *testing.T) {
	t.Parallel()

	m, n := newTestManager(t)

	// SAFE -> WARNING: one-time warning notification.
	m.ObserveMargin("u1", risk.MarginWarning, 150)
	require.Len(t, n.sent, 1)
	assert.Equal(t, SeverityWarning, n.sent[0].Severity)

	// WARNING -> CRITICAL: critical notification.
	m.ObserveMargin("u1", risk.MarginCritical, 80)
	require.Len(t, n.sent, 2)
	assert.Equal(t, SeverityCritical, n.sent[1].Severity)

	// CRITICAL -> LIQUIDATION: emergency.
	m.ObserveMargin("u1", risk.MarginLiquidation, 30)
	require.Len(t, n.sent, 3)
	assert.Equal(t, SeverityEmergency, n.sent[2].Severity)

	// LIQUIDATION -> WARNING is not the SAFE->WARNING edge: no payload.
	m.ObserveMargin("u1", risk.MarginWarning, 120)
	assert.Len(t, n.sent, 3)
}

func TestObserveMargin_DeliveryFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	m, n := newTestManager(t)
	n.err = errors.New("smtp down")

	a := m.ObserveMargin("u1", risk.MarginCritical, 70)
	require.NotNil(t, a)
	assert.Len(t, m.Recent(), 1)
}

func TestObserveViolations_CreateAndResolve(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	d := risk.Decision{
		Status: risk.PortfolioCritical,
		Violations: []risk.Violation{
			{Code: "DAILY_LOSS_LIMIT", Type: risk.ThresholdDailyLoss, Current: -1500, Threshold: 1000},
		},
	}

	created := m.ObserveViolations("u1", "account", d)
	require.Len(t, created, 1)
	// |-1500 - 1000|/1000 = 250% exceedance: critical.
	assert.InDelta(t, 250.0, created[0].ExceedancePct, 1e-9)
	assert.Equal(t, SeverityCritical, created[0].Severity)

	// Same violation again: no new alert.
	assert.Empty(t, m.ObserveViolations("u1", "account", d))

	// Recovery resolves it.
	m.ObserveViolations("u1", "account", risk.Decision{Status: risk.PortfolioSafe})
	recent := m.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, StatusResolved, recent[0].Status)
	assert.NotNil(t, recent[0].ResolvedAt)
}

func TestExceedanceSeverity(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	// 5% past the limit: warning, not critical.
	d := risk.Decision{
		Violations: []risk.Violation{
			{Type: risk.ThresholdVaR, Current: 0.0525, Threshold: 0.05},
		},
	}
	created := m.ObserveViolations("u1", "account", d)
	require.Len(t, created, 1)
	assert.Equal(t, SeverityWarning, created[0].Severity)
	assert.InDelta(t, 5.0, created[0].ExceedancePct, 1e-9)
}

func TestObservePortfolio_ChangeOnly(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	assert.Nil(t, m.ObservePortfolio("u1", "EUR_USD", risk.PortfolioSafe))
	assert.NotNil(t, m.ObservePortfolio("u1", "EUR_USD", risk.PortfolioWarning))
	assert.Nil(t, m.ObservePortfolio("u1", "EUR_USD", risk.PortfolioWarning))

	// Scopes are independent.
	assert.NotNil(t, m.ObservePortfolio("u1", "BTC_USD", risk.PortfolioWarning))
}

func TestRetentionCap(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, WithRetention(5))

	for i := 0; i < 12; i++ {
		// Alternate to defeat change-only suppression.
		m.ObserveMargin("u1", risk.MarginCritical, 80)
		m.ObserveMargin("u1", risk.MarginSafe, 300)
	}

	recent := m.Recent()
	assert.Len(t, recent, 5)
	// Newest kept: the last entry is the most recent transition.
	assert.Equal(t, "margin", recent[len(recent)-1].Kind)
}

func TestActiveViewAndSweep(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	m, _ := newTestManager(t, WithClock(func() time.Time { return current }))

	m.ObserveMargin("u1", risk.MarginCritical, 80)
	assert.Len(t, m.Active(), 1)

	// Six minutes later the alert is past the 5 minute active TTL.
	current = current.Add(6 * time.Minute)
	assert.Empty(t, m.Active())

	// Retention is a separate concern: still in the recent list.
	assert.Len(t, m.Recent(), 1)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Sweep())
}

func TestAcknowledge(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	a := m.ObserveMargin("u1", risk.MarginCritical, 80)
	require.NotNil(t, a)

	require.NoError(t, m.Acknowledge(a.ID))
	recent := m.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, StatusAcknowledged, recent[0].Status)
	assert.NotNil(t, recent[0].AcknowledgedAt)

	assert.Error(t, m.Acknowledge("no-such-id"))
}
