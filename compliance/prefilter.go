package compliance

import (
	"time"

	"github.com/rustyeddy/tradex/market"
)

// Prefilter is the scan-phase screen that thins the intent stream before it
// reaches the gate. The gate's own evaluation stays authoritative.
type Prefilter struct {
	scorer *Scorer
	dir    *Directory
}

func NewPrefilter(s *Scorer, d *Directory) *Prefilter {
	return &Prefilter{scorer: s, dir: d}
}

// Allow reports whether intent should be forwarded, with the record that
// decided it. The record carries intent.Time as is, the same stamp the gate
// uses.
func (p *Prefilter) Allow(intent market.TradeIntent) (bool, Record) {
	rec := p.scorer.Evaluate(intent.Asset, p.dir.Lookup(intent.Asset), intent.Time)
	return !rec.Blocked(), rec
}

// Screen splits a universe of assets into tradable and blocked.
func (p *Prefilter) Screen(assets []string, at time.Time) (allowed []string, blocked []Record) {
	for _, a := range assets {
		rec := p.scorer.Evaluate(a, p.dir.Lookup(a), at)
		if rec.Blocked() {
			blocked = append(blocked, rec)
			continue
		}
		allowed = append(allowed, a)
	}
	return allowed, blocked
}
