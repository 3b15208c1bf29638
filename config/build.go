package config

import (
	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/events"
	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/mimicry"
	"github.com/rustyeddy/tradex/risk"
)

// LedgerOptions translates the execution section.
func (c *Config) LedgerOptions() ledger.Options {
	opts := ledger.Options{LeverageAllowed: c.Execution.LeverageAllowed}
	if opts.LeverageAllowed && c.Execution.MaxLeverage > 1 {
		opts.CreditLimit = (c.Execution.MaxLeverage - 1) * c.Account.InitialCash
	}
	return opts
}

func (c *Config) GateOptions() gate.Options {
	return gate.Options{CommissionRate: c.Execution.CommissionRate}
}

func (c *Config) GuardrailConfig() risk.Config {
	return risk.Config{
		MaxDrawdown:      c.Risk.MaxDrawdown,
		RestrictedAssets: c.Risk.RestrictedAssets,
	}
}

func (c *Config) Thresholds() compliance.Thresholds {
	return compliance.Thresholds{
		Corruption:      c.Compliance.CorruptionThreshold,
		ESG:             c.Compliance.ESGThreshold,
		BlockedSegments: c.Compliance.BlockedSegments,
	}
}

// Index is the configured reference table, or the built-in one.
func (c *Config) Index() *compliance.Index {
	if len(c.Compliance.CountryCPI) == 0 && len(c.Compliance.CompanyESG) == 0 {
		return compliance.DefaultIndex()
	}
	return compliance.NewIndex(c.Compliance.CountryCPI, c.Compliance.CompanyESG)
}

func (c *Config) Directory() *compliance.Directory {
	entries := make(map[string]compliance.Entry, len(c.Compliance.Scores))
	for asset, s := range c.Compliance.Scores {
		entries[asset] = compliance.Entry{
			Country:         s.Country,
			Segment:         s.Segment,
			CorruptionIndex: s.CorruptionIndex,
			ESGScore:        s.ESGScore,
		}
	}
	return compliance.NewDirectory(c.Index(), entries)
}

// Catalog is the built-in catalog extended with the configured profiles.
func (c *Config) Catalog() (*mimicry.Catalog, error) {
	extra := make([]mimicry.Profile, 0, len(c.Mimicry.Profiles))
	for _, p := range c.Mimicry.Profiles {
		extra = append(extra, mimicry.Profile{
			Name:                p.Name,
			Actor:               p.Actor,
			Style:               p.Style,
			ShortWindow:         p.ShortWindow,
			LookbackWindow:      p.LookbackWindow,
			RiskTolerance:       p.RiskTolerance,
			MaxPositionFraction: p.MaxPositionFraction,
		})
	}
	return mimicry.NewCatalog(extra...)
}

// Profile resolves mimicry.profile. The error wraps
// mimicry.ErrUnknownProfile when the name is not in the catalog.
func (c *Config) Profile() (mimicry.Profile, error) {
	cat, err := c.Catalog()
	if err != nil {
		return mimicry.Profile{}, err
	}
	return cat.Select(c.Mimicry.Profile)
}

// RedisConfig translates the events section for events.NewRedis.
func (c *Config) RedisConfig() events.RedisConfig {
	return events.RedisConfig{
		Addr:       c.Events.RedisAddr,
		Password:   c.Events.RedisPassword,
		DB:         c.Events.RedisDB,
		TLSEnabled: c.Events.RedisTLS,
		Channel:    c.Events.Channel,
		Stream:     c.Events.Stream,
	}
}
