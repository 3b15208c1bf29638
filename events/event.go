// Package events publishes gate results and halt events to external
// listeners such as dashboards or other bots.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/risk"
)

type Type string

const (
	TypeResult Type = "result"
	TypeHalt   Type = "halt"
	TypeRun    Type = "run"
)

// Event is the wire form of everything a run reports. Fields that do not
// apply to the Type are omitted.
type Event struct {
	Type  Type      `json:"type"`
	RunID string    `json:"run_id"`
	Time  time.Time `json:"time"`

	Asset    string  `json:"asset,omitempty"`
	Side     string  `json:"side,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Outcome  string  `json:"outcome,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	Detail   string  `json:"detail,omitempty"`
	TradeID  string  `json:"trade_id,omitempty"`

	Equity    float64 `json:"equity"`
	Peak      float64 `json:"peak,omitempty"`
	Drawdown  float64 `json:"drawdown,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

func FromResult(runID string, r gate.Result) Event {
	ev := Event{
		Type:     TypeResult,
		RunID:    runID,
		Time:     r.Intent.Time,
		Asset:    r.Intent.Asset,
		Side:     string(r.Intent.Side),
		Quantity: r.Intent.Quantity,
		Price:    r.Intent.Price,
		Outcome:  string(r.Outcome),
		Reason:   string(r.Reason),
		Detail:   r.Detail,
		Equity:   r.Equity,
	}
	if r.Trade != nil {
		ev.TradeID = r.Trade.ID
	}
	return ev
}

func FromHalt(runID string, h risk.HaltEvent) Event {
	return Event{
		Type:      TypeHalt,
		RunID:     runID,
		Time:      h.Time,
		Reason:    string(risk.ReasonDrawdownHalt),
		Equity:    h.Equity,
		Peak:      h.Peak,
		Drawdown:  h.Drawdown,
		Threshold: h.Threshold,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Implementations must be safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
