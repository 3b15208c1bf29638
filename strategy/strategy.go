// Package strategy turns market bars into trade intents. The gate never
// depends on a concrete strategy, only on the intents it produces.
package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/mimicry"
)

// Account is what a generator may know about the book when deciding.
type Account struct {
	Equity   float64
	Holdings float64 // quantity held of the bar's asset
}

// Generator proposes at most one intent per bar.
type Generator interface {
	GenerateIntent(bar market.Bar, acct Account) (market.TradeIntent, bool)
}

// GeneratorFunc adapts a plain function.
type GeneratorFunc func(bar market.Bar, acct Account) (market.TradeIntent, bool)

func (f GeneratorFunc) GenerateIntent(bar market.Bar, acct Account) (market.TradeIntent, bool) {
	return f(bar, acct)
}

// Noop never trades.
type Noop struct{}

func (Noop) GenerateIntent(market.Bar, Account) (market.TradeIntent, bool) {
	return market.TradeIntent{}, false
}

// Factory builds a fresh generator for a profile. Generators keep per-run
// state, so every run gets its own.
type Factory func(p mimicry.Profile) Generator

var registry = map[string]Factory{
	"noop":      func(mimicry.Profile) Generator { return Noop{} },
	"ma-cross":  func(p mimicry.Profile) Generator { return NewCrossover(p, false) },
	"ema-cross": func(p mimicry.Profile) Generator { return NewCrossover(p, true) },
	"ema-adx":   func(p mimicry.Profile) Generator { return NewTrendCrossover(p, DefaultMinADX) },
}

// New builds the named generator.
func New(name string, p mimicry.Profile) (Generator, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(p), nil
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
