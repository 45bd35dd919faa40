// batch/scheduler.go
package batch

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskwatch/alert"
	"github.com/rustyeddy/riskwatch/portfolio"
	"github.com/rustyeddy/riskwatch/risk"
	"github.com/rustyeddy/riskwatch/telemetry"
)

const (
	DefaultMaxBatchSize = 50

	// DefaultBatchTimeout is one frame at 60Hz: high-frequency tick
	// sources coalesce into at most ~60 recalculations a second.
	DefaultBatchTimeout = 16 * time.Millisecond

	// WarnBudget is the observability line, not a hard limit: a flush
	// slower than this logs a warning as a capacity signal.
	WarnBudget = 100 * time.Millisecond
)

// Update is one per-symbol risk input. Queuing a second update for the
// same symbol before a flush replaces the first (last-write-wins).
type Update struct {
	UserID    string
	Account   portfolio.AccountSnapshot
	Positions []portfolio.Position
}

type Config struct {
	MaxBatchSize int
	BatchTimeout time.Duration
	Thresholds   risk.Thresholds
}

func (c Config) withDefaults() Config {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.Thresholds == nil {
		c.Thresholds = risk.DefaultThresholds()
	}
	return c
}

// Scheduler absorbs bursty per-symbol updates and recomputes risk in
// bounded batches. A flush fires when the pending map reaches MaxBatchSize
// or BatchTimeout elapses after the most recent queue, whichever is first.
//
// State is mutex-owned: metric computation happens outside the lock, the
// merge inside it, and readers only ever see copied snapshots.
type Scheduler struct {
	mu  sync.Mutex // guards pending, calculations, timer, state fields
	cfg Config
	log zerolog.Logger

	alerts *alert.Manager

	pending      map[string]Update
	calculations map[string]risk.Metrics
	timer        *time.Timer

	lastUpdate  time.Time
	calculating bool

	flushMu sync.Mutex // serializes whole flushes
}

func NewScheduler(cfg Config, log zerolog.Logger, alerts *alert.Manager) *Scheduler {
	return &Scheduler{
		cfg:          cfg.withDefaults(),
		log:          log.With().Str("component", "batch").Logger(),
		alerts:       alerts,
		pending:      make(map[string]Update),
		calculations: make(map[string]risk.Metrics),
	}
}

// QueueUpdate enqueues an input for a symbol, overwriting any still-pending
// one. It never blocks producers beyond the map insert; when the batch
// fills up the flush runs immediately on the caller's goroutine.
func (s *Scheduler) QueueUpdate(symbol string, u Update) {
	s.mu.Lock()

	s.pending[symbol] = u

	if len(s.pending) >= s.cfg.MaxBatchSize {
		s.stopTimerLocked()
		s.mu.Unlock()
		s.flush("size")
		return
	}

	// Debounce: the window is measured from the most recent queue.
	if s.timer == nil {
		s.timer = time.AfterFunc(s.cfg.BatchTimeout, func() { s.flush("timer") })
	} else {
		s.timer.Reset(s.cfg.BatchTimeout)
	}
	s.mu.Unlock()
}

// ForceFlush cancels any pending timer and flushes immediately. Used for
// shutdown and deterministic tests.
func (s *Scheduler) ForceFlush() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
	s.flush("force")
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// flush drains the pending map, recomputes metrics for every drained
// symbol, and merges results. Previously committed calculations survive a
// failed batch untouched; a single bad symbol is skipped, not fatal.
func (s *Scheduler) flush(trigger string) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[string]Update)
	s.stopTimerLocked()
	s.calculating = true
	s.mu.Unlock()

	start := time.Now()

	// Compute outside the lock.
	results := make(map[string]risk.Metrics, len(batch))
	for symbol, u := range batch {
		m, err := computeOne(u, s.cfg.Thresholds)
		if err != nil {
			telemetry.SymbolFailures.Inc()
			s.log.Error().Err(err).Str("symbol", symbol).Msg("risk computation failed")
			continue
		}
		results[symbol] = m
	}

	// Merge inside it. Symbols not in this batch are retained.
	s.mu.Lock()
	for symbol, m := range results {
		s.calculations[symbol] = m
	}
	s.lastUpdate = time.Now()
	s.calculating = false
	s.mu.Unlock()

	// Alert generation is bookkeeping on the manager's own lock; status
	// change detection keeps this quiet in the steady state.
	for symbol, m := range results {
		u := batch[symbol]
		if a := s.alerts.ObservePortfolio(u.UserID, symbol, m.Status); a != nil {
			telemetry.AlertsGenerated.WithLabelValues(string(a.Severity)).Inc()
		}
		d := risk.Decision{Status: m.Status, Violations: m.Violations}
		for _, a := range s.alerts.ObserveViolations(u.UserID, symbol, d) {
			telemetry.AlertsGenerated.WithLabelValues(string(a.Severity)).Inc()
		}
	}

	elapsed := time.Since(start)
	telemetry.FlushDuration.Observe(float64(elapsed.Milliseconds()))
	telemetry.FlushSize.Observe(float64(len(batch)))
	telemetry.FlushesTotal.WithLabelValues(trigger).Inc()

	if elapsed > WarnBudget {
		s.log.Warn().
			Dur("elapsed", elapsed).
			Int("symbols", len(batch)).
			Str("trigger", trigger).
			Msg("batch flush exceeded 100ms budget")
	}
}

// computeOne isolates a single symbol's computation so one panic cannot
// abort the rest of the batch.
func computeOne(u Update, thresholds risk.Thresholds) (m risk.Metrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("risk computation panicked: %v", r)
		}
	}()
	m = risk.PortfolioMetrics(u.Positions, u.Account, thresholds)
	return m, nil
}

// Snapshot is an immutable copy of the scheduler's visible state. The
// staleness contract: LastUpdate is the commit time of the newest batch,
// and Stale reports whether it is older than maxAge.
type Snapshot struct {
	Calculations   map[string]risk.Metrics
	LastUpdate     time.Time
	Calculating    bool
	PendingUpdates int
	BatchSize      int
}

func (s Snapshot) Stale(maxAge time.Duration, now time.Time) bool {
	if s.LastUpdate.IsZero() {
		return true
	}
	return now.Sub(s.LastUpdate) > maxAge
}

// Snapshot copies the calculations map; callers can hold it as long as
// they like without observing partial batches.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	calcs := make(map[string]risk.Metrics, len(s.calculations))
	for symbol, m := range s.calculations {
		conc := make(map[string]float64, len(m.ConcentrationByAsset))
		for k, v := range m.ConcentrationByAsset {
			conc[k] = v
		}
		m.ConcentrationByAsset = conc
		m.Violations = append([]risk.Violation(nil), m.Violations...)
		calcs[symbol] = m
	}

	return Snapshot{
		Calculations:   calcs,
		LastUpdate:     s.lastUpdate,
		Calculating:    s.calculating,
		PendingUpdates: len(s.pending),
		BatchSize:      s.cfg.MaxBatchSize,
	}
}
