package gate

import (
	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/risk"
)

type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// Reason is why an intent was rejected. Accepted results have no reason.
type Reason string

const (
	ReasonEthicalBlock         Reason = "ethical_block"
	ReasonDrawdownHalt         Reason = Reason(risk.ReasonDrawdownHalt)
	ReasonPositionSize         Reason = Reason(risk.ReasonPositionSize)
	ReasonRestrictedAsset      Reason = Reason(risk.ReasonRestrictedAsset)
	ReasonInsufficientFunds    Reason = "insufficient_funds"
	ReasonInsufficientHoldings Reason = "insufficient_holdings"
)

// Result is the unit handed to reporting for every submitted intent.
type Result struct {
	Intent  market.TradeIntent
	Outcome Outcome
	Reason  Reason
	Detail  string

	Compliance compliance.Record
	Trade      *ledger.TradeRecord // set when accepted
	Halt       *risk.HaltEvent     // set when this fill tripped the breaker

	Equity float64 // after the submission
}

func (r Result) Accepted() bool { return r.Outcome == Accepted }
