// Package risk enforces the hard safety limits of a run: the drawdown
// circuit breaker and the per-intent position-size cap.
package risk

import (
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/mimicry"
)

const DefaultMaxDrawdown = 0.10

type State int

const (
	Active State = iota
	Halted
)

func (s State) String() string {
	if s == Halted {
		return "halted"
	}
	return "active"
}

type Config struct {
	MaxDrawdown      float64 // fraction of peak, default 0.10
	RestrictedAssets []string
}

// HaltEvent is emitted once, when the guardrail trips.
type HaltEvent struct {
	Time      time.Time
	Peak      float64
	Equity    float64
	Drawdown  float64
	Threshold float64
}

// Snapshot is the observable guardrail state.
type Snapshot struct {
	State    State
	Peak     float64
	Equity   float64
	Drawdown float64
}

// Guardrail tracks the equity curve of one run. Once halted it stays halted
// until Reset.
type Guardrail struct {
	mu         sync.RWMutex
	cfg        Config
	restricted map[string]struct{}

	peak     float64
	equity   float64
	drawdown float64
	state    State
	halt     *HaltEvent
}

func NewGuardrail(cfg Config) *Guardrail {
	if !(cfg.MaxDrawdown > 0) {
		cfg.MaxDrawdown = DefaultMaxDrawdown
	}
	g := &Guardrail{cfg: cfg, restricted: make(map[string]struct{})}
	for _, a := range cfg.RestrictedAssets {
		g.restricted[strings.ToUpper(strings.TrimSpace(a))] = struct{}{}
	}
	g.cfg.RestrictedAssets = slices.Clone(cfg.RestrictedAssets)
	return g
}

func (g *Guardrail) MaxDrawdown() float64 { return g.cfg.MaxDrawdown }

// ObserveEquity feeds the next equity value. It returns the halt event only
// on the observation that trips the breaker.
func (g *Guardrail) ObserveEquity(value float64, at time.Time) *HaltEvent {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.equity = value
	if value > g.peak {
		g.peak = value
	}
	g.drawdown = 0
	if g.peak > 0 {
		g.drawdown = max((g.peak-value)/g.peak, 0)
	}

	if g.state == Halted || g.drawdown < g.cfg.MaxDrawdown {
		return nil
	}

	g.state = Halted
	g.halt = &HaltEvent{
		Time:      at,
		Peak:      g.peak,
		Equity:    value,
		Drawdown:  g.drawdown,
		Threshold: g.cfg.MaxDrawdown,
	}
	ev := *g.halt
	return &ev
}

func (g *Guardrail) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Guardrail) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Snapshot{State: g.state, Peak: g.peak, Equity: g.equity, Drawdown: g.drawdown}
}

// Halt returns the event that halted the run, if any.
func (g *Guardrail) Halt() (HaltEvent, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.halt == nil {
		return HaltEvent{}, false
	}
	return *g.halt, true
}

// Reset starts a new run: peak, drawdown and the halt are cleared.
func (g *Guardrail) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.peak, g.equity, g.drawdown = 0, 0, 0
	g.state = Active
	g.halt = nil
}

// CheckPositionSize reports whether the intent's notional stays within
// maxFraction of equity. Non-positive equity never passes.
func CheckPositionSize(intent market.TradeIntent, equity, maxFraction float64) bool {
	if equity <= 0 {
		return false
	}
	return intent.Notional()/equity <= maxFraction
}

// Authorize runs the checks in order: halt, position size, restricted list.
func (g *Guardrail) Authorize(intent market.TradeIntent, equity float64, profile mimicry.Profile) Decision {
	g.mu.RLock()
	state, dd := g.state, g.drawdown
	_, restricted := g.restricted[strings.ToUpper(intent.Asset)]
	g.mu.RUnlock()

	d := Decision{Allowed: true, Drawdown: dd, Fraction: math.Inf(1)}
	if equity > 0 {
		d.Fraction = intent.Notional() / equity
	}

	if state == Halted {
		d.reject(ReasonDrawdownHalt, "trading halted: drawdown %.2f%% reached max %.2f%%",
			100*dd, 100*g.cfg.MaxDrawdown)
		return d
	}
	if !CheckPositionSize(intent, equity, profile.MaxPositionFraction) {
		d.reject(ReasonPositionSize, "trade size %.2f is %.2f%% of equity, max %.2f%%",
			intent.Notional(), 100*d.Fraction, 100*profile.MaxPositionFraction)
		return d
	}
	if restricted {
		d.reject(ReasonRestrictedAsset, "asset %s is on the restricted list", intent.Asset)
		return d
	}
	return d
}
