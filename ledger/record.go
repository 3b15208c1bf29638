package ledger

import (
	"time"

	"github.com/rustyeddy/tradex/market"
)

// TradeRecord is one settled fill. Records are appended, never changed.
type TradeRecord struct {
	ID          string
	Time        time.Time
	Asset       string
	Side        market.Side
	Quantity    float64
	Price       float64
	Commission  float64
	RealizedPL  float64
	CashAfter   float64
	EquityAfter float64
}

// Gross is quantity × price before commission.
func (r TradeRecord) Gross() float64 {
	return r.Quantity * r.Price
}
