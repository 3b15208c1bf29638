package backtest

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/journal"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/risk"
)

// Summary is what a finished run reports.
type Summary struct {
	RunID    string
	Profile  string
	Dataset  string
	Finished time.Time

	Start time.Time
	End   time.Time
	Bars  int

	Intents     int // proposed by the strategy
	Prefiltered int // screened out before the gate
	Invalid     int // malformed, never reached the gate
	Accepted    int
	Rejected    int
	RejectedBy  map[gate.Reason]int

	Trades      int
	InitialCash float64
	FinalCash   float64
	FinalEquity float64
	RealizedPL  float64
	MaxDrawdown float64

	Halted bool
	Halt   *risk.HaltEvent
	Status ledger.Status
}

func newSummary(s *Session) Summary {
	return Summary{
		RunID:       s.RunID,
		Profile:     s.Profile.Name,
		Dataset:     s.Dataset,
		RejectedBy:  make(map[gate.Reason]int),
		InitialCash: s.Ledger.InitialCash(),
	}
}

func (s *Summary) observeBar(b market.Bar) {
	s.Bars++
	if s.Start.IsZero() || b.Time.Before(s.Start) {
		s.Start = b.Time
	}
	if s.End.IsZero() || b.Time.After(s.End) {
		s.End = b.Time
	}
}

func (s *Summary) observeResult(r gate.Result) {
	if r.Accepted() {
		s.Accepted++
		return
	}
	s.Rejected++
	s.RejectedBy[r.Reason]++
}

func (s Summary) outcome() string {
	if s.Halted {
		return "halted"
	}
	return "completed"
}

// ReturnPct is the change in equity over the run in percent.
func (s Summary) ReturnPct() float64 {
	if s.InitialCash == 0 {
		return 0
	}
	return 100 * (s.FinalEquity - s.InitialCash) / s.InitialCash
}

// Report converts the summary for the journal.
func (s Summary) Report() journal.RunReport {
	r := journal.RunReport{
		RunID:       s.RunID,
		Created:     s.Finished,
		Profile:     s.Profile,
		Dataset:     s.Dataset,
		Start:       s.Start,
		End:         s.End,
		InitialCash: s.InitialCash,
		FinalCash:   s.FinalCash,
		FinalEquity: s.FinalEquity,
		RealizedPL:  s.RealizedPL,
		Intents:     s.Intents,
		Accepted:    s.Accepted,
		Rejected:    s.Rejected,
		MaxDrawdown: s.MaxDrawdown,
		Halted:      s.Halted,
	}
	if len(s.RejectedBy) > 0 {
		r.RejectedBy = make(map[string]int, len(s.RejectedBy))
		for k, v := range s.RejectedBy {
			r.RejectedBy[string(k)] = v
		}
	}
	if s.Prefiltered > 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("%d intents screened out before the gate", s.Prefiltered))
	}
	if s.Halt != nil {
		r.Notes = append(r.Notes, fmt.Sprintf("halted at %s with drawdown %.2f%%",
			s.Halt.Time.Format(time.RFC3339), 100*s.Halt.Drawdown))
	}
	return r
}

func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Run Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", s.RunID)
	fmt.Fprintf(w, "Profile:       %s\n", s.Profile)
	fmt.Fprintf(w, "Dataset:       %s\n", s.Dataset)
	fmt.Fprintf(w, "Tier:          %s\n", s.Status.Tier)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", s.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", s.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Bars:          %d\n", s.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Intents")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Proposed:      %d\n", s.Intents)
	fmt.Fprintf(w, "Screened:      %d\n", s.Prefiltered)
	fmt.Fprintf(w, "Accepted:      %d\n", s.Accepted)
	fmt.Fprintf(w, "Rejected:      %d\n", s.Rejected)
	for _, reason := range slices.Sorted(maps.Keys(s.RejectedBy)) {
		fmt.Fprintf(w, "  %-24s %d\n", reason, s.RejectedBy[reason])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Cash:    %.2f\n", s.InitialCash)
	fmt.Fprintf(w, "End Cash:      %.2f\n", s.FinalCash)
	fmt.Fprintf(w, "End Equity:    %.2f\n", s.FinalEquity)
	fmt.Fprintf(w, "Realized P/L:  %.2f\n", s.RealizedPL)
	fmt.Fprintf(w, "Return:        %.2f%%\n", s.ReturnPct())
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", 100*s.MaxDrawdown)
	fmt.Fprintf(w, "Halted:        %t\n", s.Halted)
	for _, p := range s.Status.Positions {
		fmt.Fprintf(w, "  %-10s %10.4f @ %.4f  (mark %.4f)\n", p.Asset, p.Quantity, p.EntryPrice, p.MarkPrice)
	}
}
