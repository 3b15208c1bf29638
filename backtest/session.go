// Package backtest drives a gate over historical bars: it marks prices,
// asks a strategy for intents, submits them and reports every outcome.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/config"
	"github.com/rustyeddy/tradex/events"
	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/journal"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/metrics"
	"github.com/rustyeddy/tradex/mimicry"
	"github.com/rustyeddy/tradex/risk"
	"github.com/rustyeddy/tradex/strategy"
)

// Session is one isolated run: its own ledger, guardrail and gate.
// Journal, Events, Metrics and Log are optional sinks.
type Session struct {
	RunID   string
	Dataset string
	Profile mimicry.Profile

	Ledger    *ledger.Ledger
	Gate      *gate.Gate
	Directory *compliance.Directory
	Prefilter *compliance.Prefilter // scan-phase screen, optional
	Strategy  strategy.Generator

	Journal journal.Journal
	Events  events.Publisher
	Metrics *metrics.Recorder
	Log     zerolog.Logger
}

// NewSession wires a fresh run from cfg. The prefilter is enabled; clear
// Session.Prefilter to send every intent straight to the gate.
func NewSession(cfg *config.Config, profile mimicry.Profile, gen strategy.Generator) *Session {
	l := ledger.New(cfg.Account.InitialCash, cfg.LedgerOptions())
	scorer := compliance.NewScorer(cfg.Thresholds())
	dir := cfg.Directory()

	return &Session{
		RunID:     uuid.NewString(),
		Dataset:   cfg.Data.BarsFile,
		Profile:   profile,
		Ledger:    l,
		Gate:      gate.New(l, risk.NewGuardrail(cfg.GuardrailConfig()), scorer, cfg.GateOptions()),
		Directory: dir,
		Prefilter: compliance.NewPrefilter(scorer, dir),
		Strategy:  gen,
		Log:       zerolog.Nop(),
	}
}

// Run consumes feed until it is exhausted or ctx is done. Journal failures
// abort the run; event delivery failures are logged and skipped.
func (s *Session) Run(ctx context.Context, feed BarFeed) (Summary, error) {
	if s.Gate == nil || s.Ledger == nil {
		return Summary{}, fmt.Errorf("backtest: session %s is not wired", s.RunID)
	}
	if s.Strategy == nil {
		return Summary{}, fmt.Errorf("backtest: Strategy is required")
	}
	if s.Directory == nil {
		s.Directory = compliance.NewDirectory(nil, nil)
	}
	if s.Journal == nil {
		s.Journal = journal.Nop{}
	}
	if s.Events == nil {
		s.Events = events.Nop{}
	}
	defer feed.Close()

	log := s.Log.With().Str("run_id", s.RunID).Str("profile", s.Profile.Name).Logger()
	sum := newSummary(s)
	log.Info().Float64("initial_cash", sum.InitialCash).Msg("run started")

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		bar, ok, err := feed.Next()
		if err != nil {
			return sum, fmt.Errorf("backtest: read feed: %w", err)
		}
		if !ok {
			break
		}
		if err := s.step(ctx, log, bar, &sum); err != nil {
			return sum, err
		}
	}

	s.finish(&sum)
	s.publish(ctx, log, events.Event{
		Type:     events.TypeRun,
		RunID:    s.RunID,
		Time:     sum.End,
		Equity:   sum.FinalEquity,
		Drawdown: sum.MaxDrawdown,
		Outcome:  sum.outcome(),
	})
	log.Info().
		Int("intents", sum.Intents).
		Int("accepted", sum.Accepted).
		Int("rejected", sum.Rejected).
		Float64("equity", sum.FinalEquity).
		Float64("max_drawdown", sum.MaxDrawdown).
		Bool("halted", sum.Halted).
		Msg("run finished")
	return sum, nil
}

func (s *Session) step(ctx context.Context, log zerolog.Logger, bar market.Bar, sum *Summary) error {
	sum.observeBar(bar)

	if h := s.Gate.Mark(bar.Quote()); h != nil {
		if err := s.halted(ctx, log, *h, sum); err != nil {
			return err
		}
	}
	snap := s.Gate.Guardrail().Snapshot()
	sum.MaxDrawdown = max(sum.MaxDrawdown, snap.Drawdown)
	if s.Metrics != nil {
		s.Metrics.ObserveSnapshot(s.Profile.Name, snap)
	}

	acct := strategy.Account{Equity: s.Gate.Equity()}
	if p, ok := s.Ledger.Position(bar.Asset); ok {
		acct.Holdings = p.Quantity
	}
	intent, ok := s.Strategy.GenerateIntent(bar, acct)
	if !ok {
		return nil
	}
	sum.Intents++

	if s.Prefilter != nil {
		if allow, rec := s.Prefilter.Allow(intent); !allow {
			sum.Prefiltered++
			log.Debug().Str("asset", intent.Asset).Str("why", rec.Reason()).Msg("screened out")
			if err := s.Journal.RecordCompliance(rec); err != nil {
				return fmt.Errorf("backtest: journal compliance: %w", err)
			}
			return nil
		}
	}

	res, err := s.Gate.Submit(intent, s.Directory.Lookup(intent.Asset), s.Profile)
	if err != nil {
		var verr *market.ValidationError
		if errors.As(err, &verr) {
			sum.Invalid++
			log.Warn().Err(err).Str("intent", intent.String()).Msg("invalid intent dropped")
			return nil
		}
		return fmt.Errorf("backtest: submit %s: %w", intent, err)
	}
	return s.report(ctx, log, res, sum)
}

func (s *Session) report(ctx context.Context, log zerolog.Logger, res gate.Result, sum *Summary) error {
	sum.observeResult(res)

	if err := s.Journal.RecordCompliance(res.Compliance); err != nil {
		return fmt.Errorf("backtest: journal compliance: %w", err)
	}
	if err := s.Journal.RecordResult(res); err != nil {
		return fmt.Errorf("backtest: journal result: %w", err)
	}
	if res.Trade != nil {
		if err := s.Journal.RecordTrade(*res.Trade); err != nil {
			return fmt.Errorf("backtest: journal trade: %w", err)
		}
	}
	if s.Metrics != nil {
		s.Metrics.ObserveResult(s.Profile.Name, res)
	}
	s.publish(ctx, log, events.FromResult(s.RunID, res))

	ev := log.Debug()
	if !res.Accepted() {
		ev = log.Info().Str("reason", string(res.Reason)).Str("detail", res.Detail)
	}
	ev.Str("intent", res.Intent.String()).Str("outcome", string(res.Outcome)).Float64("equity", res.Equity).Msg("intent")

	if res.Halt != nil {
		return s.halted(ctx, log, *res.Halt, sum)
	}
	return nil
}

func (s *Session) halted(ctx context.Context, log zerolog.Logger, h risk.HaltEvent, sum *Summary) error {
	sum.Halt = &h
	sum.MaxDrawdown = max(sum.MaxDrawdown, h.Drawdown)
	log.Warn().
		Float64("drawdown", h.Drawdown).
		Float64("peak", h.Peak).
		Float64("equity", h.Equity).
		Time("at", h.Time).
		Msg("drawdown limit reached, trading halted")

	if err := s.Journal.RecordHalt(h); err != nil {
		return fmt.Errorf("backtest: journal halt: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.ObserveHalt(s.Profile.Name, h)
	}
	s.publish(ctx, log, events.FromHalt(s.RunID, h))
	return nil
}

func (s *Session) publish(ctx context.Context, log zerolog.Logger, e events.Event) {
	if err := s.Events.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("type", string(e.Type)).Msg("event not delivered")
	}
}

func (s *Session) finish(sum *Summary) {
	st := s.Ledger.Status(s.Gate.Prices())
	sum.Status = st
	sum.FinalCash = st.Cash
	sum.FinalEquity = st.Equity
	sum.RealizedPL = st.RealizedPL
	sum.Trades = st.Trades
	sum.Halted = s.Gate.Guardrail().State() == risk.Halted
	sum.Finished = time.Now().UTC()
}
