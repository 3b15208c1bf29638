// Package mimicry holds the catalog of institutional trading styles a run
// can emulate.
package mimicry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownProfile = errors.New("unknown mimicry profile")
	ErrInvalidProfile = errors.New("invalid mimicry profile")
)

// Profile is an immutable bundle of parameters for one style.
type Profile struct {
	Name  string
	Actor string
	Style string

	ShortWindow         int     // fast signal window, trading periods
	LookbackWindow      int     // slow window, trading periods
	RiskTolerance       float64 // [0,1]
	MaxPositionFraction float64 // (0,1], of total equity per asset
}

func (p Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	case p.LookbackWindow <= 0:
		return fmt.Errorf("%w: %s: lookback window must be positive", ErrInvalidProfile, p.Name)
	case p.ShortWindow < 0 || p.ShortWindow >= p.LookbackWindow:
		return fmt.Errorf("%w: %s: short window must be in [0, lookback)", ErrInvalidProfile, p.Name)
	case p.RiskTolerance < 0 || p.RiskTolerance > 1:
		return fmt.Errorf("%w: %s: risk tolerance must be in [0,1]", ErrInvalidProfile, p.Name)
	case !(p.MaxPositionFraction > 0) || p.MaxPositionFraction > 1:
		return fmt.Errorf("%w: %s: max position fraction must be in (0,1]", ErrInvalidProfile, p.Name)
	}
	return nil
}

var builtin = []Profile{
	{
		Name:                "NBIM",
		Actor:               "Norwegian Pension Fund Global",
		Style:               "Long-term Value, ESG Focused",
		ShortWindow:         50,
		LookbackWindow:      200,
		RiskTolerance:       0.25,
		MaxPositionFraction: 0.05,
	},
	{
		Name:                "BLACKROCK",
		Actor:               "BlackRock iShares",
		Style:               "Broad Market Momentum, Tech-Heavy",
		ShortWindow:         20,
		LookbackWindow:      50,
		RiskTolerance:       0.5,
		MaxPositionFraction: 0.10,
	},
	{
		Name:                "RENAISSANCE",
		Actor:               "Renaissance Technologies (Medallion)",
		Style:               "High-Frequency, Quantitative, Volatility-based",
		ShortWindow:         5,
		LookbackWindow:      20,
		RiskTolerance:       0.85,
		MaxPositionFraction: 0.20,
	},
}

// Catalog is a read-only name → profile table. Lookups are case-insensitive.
type Catalog struct {
	profiles map[string]Profile
}

// NewCatalog returns the built-in styles plus extra. An extra profile with
// a built-in name replaces it.
func NewCatalog(extra ...Profile) (*Catalog, error) {
	c := &Catalog{profiles: make(map[string]Profile, len(builtin)+len(extra))}
	for _, p := range append(append([]Profile{}, builtin...), extra...) {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		p.Name = normalize(p.Name)
		c.profiles[p.Name] = p
	}
	return c, nil
}

// Default is the built-in catalog.
var Default = mustCatalog()

func mustCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Select(name string) (Profile, error) {
	p, ok := c.profiles[normalize(name)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %s)",
			ErrUnknownProfile, name, strings.Join(c.Names(), ", "))
	}
	return p, nil
}

// Names lists the catalog keys in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.profiles))
	for k := range c.profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Select looks name up in the built-in catalog.
func Select(name string) (Profile, error) {
	return Default.Select(name)
}

func normalize(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
