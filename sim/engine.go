// sim/engine.go
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/riskwatch/market"
	"github.com/rustyeddy/riskwatch/portfolio"
)

// Engine is a simulated position/account tracker. It stands in for the
// external tracking layer in demos and tests: ticks move prices, the
// engine maintains unrealized P/L, equity, the peak-equity high-water mark
// and a daily P/L that resets when the tick date rolls over.
type Engine struct {
	mu sync.Mutex

	userID  string
	balance float64

	peakEquity     float64
	dayStartEquity float64
	day            time.Time // midnight of the current trading day

	positions map[string]*portfolio.Position
}

func NewEngine(userID string, balance float64) *Engine {
	return &Engine{
		userID:         userID,
		balance:        balance,
		peakEquity:     balance,
		dayStartEquity: balance,
		positions:      make(map[string]*portfolio.Position),
	}
}

func (e *Engine) UserID() string { return e.userID }

// Open creates a position at the given price. One position per symbol in
// this simplified book.
func (e *Engine) Open(symbol string, side portfolio.Side, quantity, price float64) error {
	if quantity <= 0 || price <= 0 {
		return fmt.Errorf("open %s: quantity and price must be positive", symbol)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.positions[symbol]; exists {
		return fmt.Errorf("open %s: position already exists", symbol)
	}

	now := time.Now()
	e.positions[symbol] = &portfolio.Position{
		Symbol:       symbol,
		Side:         side,
		Quantity:     quantity,
		EntryPrice:   price,
		CurrentPrice: price,
		MarginUsed:   quantity * price / market.Leverage(symbol),
		OpenTime:     now,
		UpdatedAt:    now,
	}
	return nil
}

// Close realizes a position's P/L into the balance and removes it.
func (e *Engine) Close(symbol string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.positions[symbol]
	if !ok {
		return fmt.Errorf("close %s: no open position", symbol)
	}

	e.balance += p.UnrealizedPL
	delete(e.positions, symbol)
	return nil
}

// Tick applies a price update to the symbol's position, if any, and
// revalues the account. Day rollover resets the daily P/L baseline.
func (e *Engine) Tick(symbol string, price float64, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if day := at.Truncate(24 * time.Hour); !day.Equal(e.day) {
		e.day = day
		e.dayStartEquity = e.equityLocked()
	}

	if p, ok := e.positions[symbol]; ok {
		p.CurrentPrice = price
		p.UnrealizedPL = unrealizedPL(p)
		p.MarginUsed = p.Quantity * price / market.Leverage(symbol)
		p.UpdatedAt = at
	}

	if eq := e.equityLocked(); eq > e.peakEquity {
		e.peakEquity = eq
	}
}

// Withdraw reduces the balance and rebases the high-water mark, the one
// case where peak equity may move down.
func (e *Engine) Withdraw(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("withdraw: amount must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if amount > e.balance {
		return fmt.Errorf("withdraw: %.2f exceeds balance %.2f", amount, e.balance)
	}
	e.balance -= amount

	if eq := e.equityLocked(); eq < e.peakEquity {
		e.peakEquity = eq
	}
	e.dayStartEquity -= amount
	return nil
}

func unrealizedPL(p *portfolio.Position) float64 {
	diff := p.CurrentPrice - p.EntryPrice
	if p.Side == portfolio.Short {
		diff = -diff
	}
	return p.Quantity * diff
}

func (e *Engine) equityLocked() float64 {
	eq := e.balance
	for _, p := range e.positions {
		eq += p.UnrealizedPL
	}
	return eq
}

func (e *Engine) marginUsedLocked() float64 {
	var used float64
	for _, p := range e.positions {
		used += p.MarginUsed
	}
	return used
}

// Account implements the monitor source. The snapshot is value-copied;
// callers never see engine internals.
func (e *Engine) Account(ctx context.Context) (portfolio.AccountSnapshot, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	eq := e.equityLocked()
	used := e.marginUsedLocked()
	return portfolio.AccountSnapshot{
		Balance:    e.balance,
		Equity:     eq,
		MarginUsed: used,
		FreeMargin: eq - used,
		PeakEquity: e.peakEquity,
		DailyPL:    eq - e.dayStartEquity,
	}, nil
}

// Positions implements the monitor source.
func (e *Engine) Positions(ctx context.Context) ([]portfolio.Position, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]portfolio.Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, *p)
	}
	return out, nil
}
