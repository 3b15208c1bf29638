// Package journal persists the append-only logs of a run: settled trades,
// compliance evaluations, gate results and halt events.
package journal

import (
	"errors"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/risk"
)

type Journal interface {
	RecordTrade(ledger.TradeRecord) error
	RecordCompliance(compliance.Record) error
	RecordResult(gate.Result) error
	RecordHalt(risk.HaltEvent) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(ledger.TradeRecord) error     { return nil }
func (Nop) RecordCompliance(compliance.Record) error { return nil }
func (Nop) RecordResult(gate.Result) error           { return nil }
func (Nop) RecordHalt(risk.HaltEvent) error          { return nil }
func (Nop) Close() error                             { return nil }

// Multi writes every record to all journals and joins their errors.
func Multi(js ...Journal) Journal {
	return multi(js)
}

type multi []Journal

func (m multi) each(fn func(Journal) error) error {
	var errs []error
	for _, j := range m {
		if err := fn(j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) RecordTrade(t ledger.TradeRecord) error {
	return m.each(func(j Journal) error { return j.RecordTrade(t) })
}

func (m multi) RecordCompliance(c compliance.Record) error {
	return m.each(func(j Journal) error { return j.RecordCompliance(c) })
}

func (m multi) RecordResult(r gate.Result) error {
	return m.each(func(j Journal) error { return j.RecordResult(r) })
}

func (m multi) RecordHalt(h risk.HaltEvent) error {
	return m.each(func(j Journal) error { return j.RecordHalt(h) })
}

func (m multi) Close() error {
	return m.each(func(j Journal) error { return j.Close() })
}
