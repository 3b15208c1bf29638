package strategy

import (
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/mimicry"
	"github.com/rustyeddy/tradex/risk"
)

// Crossover trades a fast/slow moving-average cross per asset, with the
// windows and sizing of a mimicry profile.
//   - buys when the fast average crosses above the slow one
//   - sells the whole holding when it crosses below
//
// With a trend filter, buys also need ADX at or above the minimum. Exits
// are never filtered.
//
// It is not safe for concurrent use; one run drives one Crossover.
type Crossover struct {
	profile     mimicry.Profile
	exponential bool
	minADX      float64 // 0 disables the trend filter
	assets      map[string]*crossState
}

type crossState struct {
	fast, slow Indicator
	adx        *ADX

	lastDiff     float64
	haveLastDiff bool
}

func NewCrossover(p mimicry.Profile, exponential bool) *Crossover {
	return &Crossover{profile: p, exponential: exponential, assets: make(map[string]*crossState)}
}

const (
	ADXPeriod     = 14 // trend filter window
	DefaultMinADX = 25
)

// NewTrendCrossover is an exponential crossover that only buys while
// ADX(14) is at least minADX.
func NewTrendCrossover(p mimicry.Profile, minADX float64) *Crossover {
	c := NewCrossover(p, true)
	c.minADX = minADX
	return c
}

func (c *Crossover) indicator(period int) Indicator {
	if c.exponential {
		return NewEMA(period)
	}
	return NewMA(period)
}

func (c *Crossover) state(asset string) *crossState {
	s, ok := c.assets[asset]
	if !ok {
		s = &crossState{
			fast: c.indicator(c.profile.ShortWindow),
			slow: c.indicator(c.profile.LookbackWindow),
		}
		if c.minADX > 0 {
			s.adx = NewADX(ADXPeriod)
		}
		c.assets[asset] = s
	}
	return s
}

func (c *Crossover) GenerateIntent(bar market.Bar, acct Account) (market.TradeIntent, bool) {
	if !(bar.Close > 0) {
		return market.TradeIntent{}, false
	}

	s := c.state(bar.Asset)
	s.fast.Update(bar.Close)
	s.slow.Update(bar.Close)
	if s.adx != nil {
		s.adx.Update(bar)
	}

	// Wait until both averages are warmed up.
	if !s.fast.Ready() || !s.slow.Ready() {
		return market.TradeIntent{}, false
	}

	diff := s.fast.Value() - s.slow.Value()
	if !s.haveLastDiff {
		s.lastDiff = diff
		s.haveLastDiff = true
		return market.TradeIntent{}, false
	}
	prev := s.lastDiff
	s.lastDiff = diff

	intent := market.TradeIntent{Asset: bar.Asset, Price: bar.Close, Time: bar.Time}
	switch {
	case prev <= 0 && diff > 0 && c.trending(s):
		intent.Side = market.Buy
		intent.Quantity = risk.Quantity(acct.Equity, bar.Close, c.profile)
	case prev >= 0 && diff < 0 && acct.Holdings > 0:
		intent.Side = market.Sell
		intent.Quantity = acct.Holdings
	default:
		return market.TradeIntent{}, false
	}

	if intent.Quantity <= 0 {
		return market.TradeIntent{}, false
	}
	return intent, true
}

func (c *Crossover) trending(s *crossState) bool {
	if s.adx == nil {
		return true
	}
	return s.adx.Ready() && s.adx.Value() >= c.minADX
}
