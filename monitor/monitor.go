// monitor/monitor.go
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskwatch/alert"
	"github.com/rustyeddy/riskwatch/batch"
	"github.com/rustyeddy/riskwatch/journal"
	"github.com/rustyeddy/riskwatch/portfolio"
	"github.com/rustyeddy/riskwatch/risk"
)

// Source is the external position/account tracking layer. Fetch failures
// belong to the wrapping poll, never to the pure calculators.
type Source interface {
	Account(ctx context.Context) (portfolio.AccountSnapshot, error)
	Positions(ctx context.Context) ([]portfolio.Position, error)
}

const DefaultRefreshInterval = 30 * time.Second

type Config struct {
	UserID          string
	RefreshInterval time.Duration
	Thresholds      risk.Thresholds
	RiskPerTradePct float64
}

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.Thresholds == nil {
		c.Thresholds = risk.DefaultThresholds()
	}
	if c.RiskPerTradePct <= 0 {
		c.RiskPerTradePct = risk.DefaultRiskPerTradePct
	}
	return c
}

// Summary is the consumer-facing view of one evaluation: the assembled
// metrics, both classifications, and what to do about them.
type Summary struct {
	Metrics risk.Metrics

	MarginStatus      risk.MarginStatus
	MarginLevel       float64
	Restriction       risk.OrderRestriction
	TimeToLiquidation *time.Duration

	ViolatedThresholds []string
	Recommendations    []string
	Positions          []risk.PositionAnalytics

	Stale bool
}

// Monitor polls a source on a fixed cadence, fans per-symbol inputs into
// the batch scheduler, evaluates the account-level schemes, and keeps the
// latest summary for readers. All collaborators are injected; the monitor
// owns no global state.
type Monitor struct {
	cfg    Config
	log    zerolog.Logger
	source Source
	sched  *batch.Scheduler
	alerts *alert.Manager
	jrnl   journal.Journal

	mu      sync.Mutex
	summary Summary
}

func New(cfg Config, log zerolog.Logger, source Source, sched *batch.Scheduler, alerts *alert.Manager, jrnl journal.Journal) *Monitor {
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	return &Monitor{
		cfg:    cfg.withDefaults(),
		log:    log.With().Str("component", "monitor").Logger(),
		source: source,
		sched:  sched,
		alerts: alerts,
		jrnl:   jrnl,
	}
}

// Poll runs one fetch-evaluate cycle. The account-level evaluation happens
// inline; per-symbol inputs go through the scheduler so tick bursts and
// poll cycles share one coalescing path.
func (m *Monitor) Poll(ctx context.Context) error {
	acct, err := m.source.Account(ctx)
	if err != nil {
		m.markStale()
		return fmt.Errorf("poll account: %w", err)
	}
	positions, err := m.source.Positions(ctx)
	if err != nil {
		m.markStale()
		return fmt.Errorf("poll positions: %w", err)
	}

	// Fan out per-symbol updates for the batched pipeline.
	bySymbol := make(map[string][]portfolio.Position)
	for _, p := range positions {
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}
	for symbol, ps := range bySymbol {
		m.sched.QueueUpdate(symbol, batch.Update{
			UserID:    m.cfg.UserID,
			Account:   acct,
			Positions: ps,
		})
	}

	// Account-level evaluation: portfolio metrics plus the margin scheme.
	metrics := risk.PortfolioMetrics(positions, acct, m.cfg.Thresholds)
	marginStatus, level := risk.ClassifyAccount(acct.Equity, acct.MarginUsed)

	if a := m.alerts.ObserveMargin(m.cfg.UserID, marginStatus, level); a != nil {
		m.journalAlert(*a)
	}
	d := risk.Decision{Status: metrics.Status, Violations: metrics.Violations}
	for _, a := range m.alerts.ObserveViolations(m.cfg.UserID, "account", d) {
		m.journalAlert(a)
	}

	if err := m.jrnl.RecordRisk(journal.SnapshotFrom(metrics)); err != nil {
		m.log.Error().Err(err).Msg("journal risk snapshot failed")
	}

	summary := Summary{
		Metrics:           metrics,
		MarginStatus:      marginStatus,
		MarginLevel:       level,
		Restriction:       marginStatus.Restriction(),
		TimeToLiquidation: risk.TimeToLiquidation(level),
		Recommendations:   marginStatus.RecommendedActions(),
		Positions: risk.AnalyzePositions(positions, risk.SizingInputs{
			Equity:          acct.Equity,
			FreeMargin:      acct.FreeMargin,
			RiskPerTradePct: m.cfg.RiskPerTradePct,
		}),
	}
	for _, v := range metrics.Violations {
		summary.ViolatedThresholds = append(summary.ViolatedThresholds, v.Code)
	}

	m.mu.Lock()
	m.summary = summary
	m.mu.Unlock()

	return nil
}

// journalAlert records one alert; journal failures never propagate.
func (m *Monitor) journalAlert(a alert.Alert) {
	if err := m.jrnl.RecordAlert(a); err != nil {
		m.log.Error().Err(err).Str("alert", a.ID).Msg("journal alert failed")
	}
}

// markStale flags the cached summary after a failed poll. Consumers keep
// reading the previous value; Stale is their hint that it is old.
func (m *Monitor) markStale() {
	m.mu.Lock()
	m.summary.Stale = true
	m.mu.Unlock()
}

// Summary returns the latest evaluation, zero-valued before the first
// successful poll.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

// Run polls on the configured cadence until the context is done, then
// force-flushes the scheduler so shutdown leaves no pending batch behind.
func (m *Monitor) Run(ctx context.Context) error {
	// Prime immediately rather than waiting a full interval.
	if err := m.Poll(ctx); err != nil {
		m.log.Error().Err(err).Msg("initial poll failed")
	}

	t := time.NewTicker(m.cfg.RefreshInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			m.sched.ForceFlush()
			return ctx.Err()
		case <-t.C:
			if err := m.Poll(ctx); err != nil {
				m.log.Error().Err(err).Msg("poll failed")
			}
			if snap := m.sched.Snapshot(); snap.Stale(3*m.cfg.RefreshInterval, time.Now()) {
				m.log.Warn().
					Time("last_update", snap.LastUpdate).
					Msg("batched risk metrics are stale")
			}
		}
	}
}
