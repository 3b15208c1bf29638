package journal

import (
	"time"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/risk"
)

var at = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

func sampleTrade(id string, t time.Time) ledger.TradeRecord {
	return ledger.TradeRecord{
		ID:          id,
		Time:        t,
		Asset:       "EQNR.OL",
		Side:        market.Buy,
		Quantity:    10,
		Price:       100,
		Commission:  10,
		CashAfter:   8990,
		EquityAfter: 9990,
	}
}

func sampleCompliance() compliance.Record {
	return compliance.Evaluate("COAL_CORP", compliance.Scores(85, 12), compliance.DefaultThresholds(), at)
}

func sampleRejected() gate.Result {
	return gate.Result{
		Intent:  market.TradeIntent{Asset: "A", Side: market.Buy, Quantity: 6, Price: 100, Time: at},
		Outcome: gate.Rejected,
		Reason:  gate.ReasonPositionSize,
		Detail:  "trade size 600.00 is 6.00% of equity, max 5.00%",
		Equity:  10000,
	}
}

func sampleHalt() risk.HaltEvent {
	return risk.HaltEvent{Time: at.Add(time.Hour), Peak: 10000, Equity: 8900, Drawdown: 0.11, Threshold: 0.10}
}
