// Package ledger is the simulated cash and position book that settles
// accepted trade intents.
package ledger

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradex/internal/id"
	"github.com/rustyeddy/tradex/market"
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInvalidCommission    = errors.New("commission rate must be in [0, 1)")
)

// Options configure settlement limits.
type Options struct {
	// LeverageAllowed lets cash go negative down to -CreditLimit and
	// allows selling more than is held (short positions).
	LeverageAllowed bool
	CreditLimit     float64
}

// Ledger owns cash, open positions and the trade history of one run.
// It is safe for concurrent use; reads never block each other.
type Ledger struct {
	mu        sync.RWMutex
	initial   decimal.Decimal
	cash      decimal.Decimal
	realized  decimal.Decimal
	positions map[string]*position
	history   []TradeRecord
	opts      Options
	ids       *id.Source
}

func New(initialCash float64, opts Options) *Ledger {
	c := decimal.NewFromFloat(initialCash)
	return &Ledger{
		initial:   c,
		cash:      c,
		positions: make(map[string]*position),
		opts:      opts,
		ids:       id.NewSource(),
	}
}

// ApplyFill settles intent at its requested price. Either everything is
// applied or nothing is: on error the ledger is unchanged.
func (l *Ledger) ApplyFill(intent market.TradeIntent, commissionRate float64) (TradeRecord, error) {
	if err := intent.Validate(); err != nil {
		return TradeRecord{}, err
	}
	if commissionRate < 0 || commissionRate >= 1 {
		return TradeRecord{}, ErrInvalidCommission
	}

	qty := decimal.NewFromFloat(intent.Quantity)
	price := decimal.NewFromFloat(intent.Price)
	gross := qty.Mul(price)
	commission := gross.Mul(decimal.NewFromFloat(commissionRate))

	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		cashAfter decimal.Decimal
		delta     decimal.Decimal
	)
	switch intent.Side {
	case market.Buy:
		cashAfter = l.cash.Sub(gross).Sub(commission)
		delta = qty
	case market.Sell:
		held := decimal.Zero
		if p, ok := l.positions[intent.Asset]; ok {
			held = p.qty
		}
		if !l.opts.LeverageAllowed && qty.GreaterThan(held) {
			return TradeRecord{}, fmt.Errorf("sell %s %s: holding %s: %w",
				qty, intent.Asset, held, ErrInsufficientHoldings)
		}
		cashAfter = l.cash.Add(gross).Sub(commission)
		delta = qty.Neg()
	}

	if cashAfter.LessThan(l.floor()) {
		return TradeRecord{}, fmt.Errorf("%s %s %s needs %s, cash %s: %w",
			intent.Side, qty, intent.Asset, gross.Add(commission), l.cash, ErrInsufficientFunds)
	}

	p, ok := l.positions[intent.Asset]
	if !ok {
		p = &position{asset: intent.Asset}
		l.positions[intent.Asset] = p
	}
	realized := p.apply(delta, price)
	if p.qty.IsZero() {
		delete(l.positions, intent.Asset)
	}

	l.cash = cashAfter
	l.realized = l.realized.Add(realized)

	rec := TradeRecord{
		ID:          l.ids.NewAt(intent.Time),
		Time:        intent.Time,
		Asset:       intent.Asset,
		Side:        intent.Side,
		Quantity:    intent.Quantity,
		Price:       intent.Price,
		Commission:  commission.InexactFloat64(),
		RealizedPL:  realized.InexactFloat64(),
		CashAfter:   l.cash.InexactFloat64(),
		EquityAfter: l.equityLocked(nil).InexactFloat64(),
	}
	l.history = append(l.history, rec)
	return rec, nil
}

func (l *Ledger) floor() decimal.Decimal {
	if !l.opts.LeverageAllowed {
		return decimal.Zero
	}
	return decimal.NewFromFloat(l.opts.CreditLimit).Neg()
}

// Mark updates the fallback price of an open position. Assets without a
// position are ignored.
func (l *Ledger) Mark(asset string, price float64) {
	if !usablePrice(price) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.positions[asset]; ok {
		p.mark = decimal.NewFromFloat(price)
	}
}

// Equity is cash plus the value of all open positions. Positions missing
// from prices, or priced at an unusable value, are valued at their mark.
// It never changes the ledger.
func (l *Ledger) Equity(prices market.Prices) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.equityLocked(prices).InexactFloat64()
}

func (l *Ledger) equityLocked(prices market.Prices) decimal.Decimal {
	eq := l.cash
	for asset, p := range l.positions {
		px := p.mark
		if v, ok := prices[asset]; ok && usablePrice(v) {
			px = decimal.NewFromFloat(v)
		}
		eq = eq.Add(p.qty.Mul(px))
	}
	return eq
}

// usablePrice rejects zero, negative and non-finite prices.
func usablePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// History replays the trade records in settlement order. Each range over
// the returned sequence starts from the first record again.
func (l *Ledger) History() iter.Seq[TradeRecord] {
	return func(yield func(TradeRecord) bool) {
		l.mu.RLock()
		recs := l.history[:len(l.history):len(l.history)]
		l.mu.RUnlock()

		for _, r := range recs {
			if !yield(r) {
				return
			}
		}
	}
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

func (l *Ledger) Cash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash.InexactFloat64()
}

func (l *Ledger) InitialCash() float64 {
	return l.initial.InexactFloat64()
}

func (l *Ledger) RealizedPL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.realized.InexactFloat64()
}

func (l *Ledger) Position(asset string) (Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[asset]
	if !ok {
		return Position{}, false
	}
	return p.view(), true
}

// Positions returns open positions sorted by asset.
func (l *Ledger) Positions() []Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}
