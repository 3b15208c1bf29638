// Package gate runs every trade intent through compliance, then risk, then
// settlement, in that order.
package gate

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/mimicry"
	"github.com/rustyeddy/tradex/risk"
)

// Settler is the settlement capability the gate needs. *ledger.Ledger is
// the simulated implementation; a live broker adapter satisfies the same
// contract.
type Settler interface {
	ApplyFill(intent market.TradeIntent, commissionRate float64) (ledger.TradeRecord, error)
	Equity(prices market.Prices) float64
	Mark(asset string, price float64)
}

type Options struct {
	CommissionRate float64
}

// Gate serializes all writes to one settler/guardrail pair. Submit and Mark
// never interleave; Equity and Prices may be called at any time.
type Gate struct {
	mu      sync.Mutex
	settler Settler
	guard   *risk.Guardrail
	scorer  *compliance.Scorer
	prices  *market.PriceBook
	opts    Options
}

// New wires a gate and seeds the guardrail with the settler's opening
// equity so drawdown is measured from the start of the run.
func New(s Settler, g *risk.Guardrail, sc *compliance.Scorer, opts Options) *Gate {
	gt := &Gate{
		settler: s,
		guard:   g,
		scorer:  sc,
		prices:  market.NewPriceBook(),
		opts:    opts,
	}
	g.ObserveEquity(s.Equity(nil), time.Time{})
	return gt
}

func (g *Gate) Guardrail() *risk.Guardrail { return g.guard }

// Submit evaluates one intent. Policy rejections are returned as a Result;
// an error means the intent was malformed or settlement failed unexpectedly,
// and in both cases nothing was changed.
func (g *Gate) Submit(intent market.TradeIntent, in compliance.Inputs, profile mimicry.Profile) (Result, error) {
	if err := intent.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Intent: intent}

	res.Compliance = g.scorer.Evaluate(intent.Asset, in, intent.Time)
	if res.Compliance.Blocked() {
		res.Outcome = Rejected
		res.Reason = ReasonEthicalBlock
		res.Detail = res.Compliance.Reason()
		res.Equity = g.Equity()
		return res, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	prices := g.prices.Snapshot().Merge(market.Prices{intent.Asset: intent.Price})
	equity := g.settler.Equity(prices)
	res.Equity = equity

	d := g.guard.Authorize(intent, equity, profile)
	if !d.Allowed {
		res.Outcome = Rejected
		res.Reason = Reason(d.Reason)
		res.Detail = d.Msg
		return res, nil
	}

	tr, err := g.settler.ApplyFill(intent, g.opts.CommissionRate)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		res.Outcome = Rejected
		res.Reason = ReasonInsufficientFunds
		res.Detail = err.Error()
		return res, nil
	case errors.Is(err, ledger.ErrInsufficientHoldings):
		res.Outcome = Rejected
		res.Reason = ReasonInsufficientHoldings
		res.Detail = err.Error()
		return res, nil
	case err != nil:
		return Result{}, fmt.Errorf("settle %s: %w", intent, err)
	}

	g.prices.Set(market.Quote{Asset: intent.Asset, Price: intent.Price, Time: intent.Time})

	res.Outcome = Accepted
	res.Trade = &tr
	res.Equity = g.settler.Equity(prices)
	res.Halt = g.guard.ObserveEquity(res.Equity, intent.Time)
	return res, nil
}

// Mark records a new market price, revalues the book and feeds the
// resulting equity to the guardrail. It returns the halt event if this
// price move tripped the breaker.
func (g *Gate) Mark(q market.Quote) *risk.HaltEvent {
	if !(q.Price > 0) || math.IsInf(q.Price, 0) {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.prices.Set(q)
	g.settler.Mark(q.Asset, q.Price)
	return g.guard.ObserveEquity(g.settler.Equity(g.prices.Snapshot()), q.Time)
}

// Equity values the settler at the latest known prices.
func (g *Gate) Equity() float64 {
	return g.settler.Equity(g.prices.Snapshot())
}

// Prices returns a copy of the latest known prices.
func (g *Gate) Prices() market.Prices {
	return g.prices.Snapshot()
}
