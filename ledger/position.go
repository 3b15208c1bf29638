package ledger

import "github.com/shopspring/decimal"

// Position is a read-only view of an open holding.
type Position struct {
	Asset      string
	Quantity   float64 // >0 long, <0 short
	EntryPrice float64 // weighted average
	MarkPrice  float64 // last fill or mark
}

// MarketValue is quantity × mark.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.MarkPrice
}

// UnrealizedPL is the open profit at the mark price.
func (p Position) UnrealizedPL() float64 {
	return p.Quantity * (p.MarkPrice - p.EntryPrice)
}

type position struct {
	asset string
	qty   decimal.Decimal
	entry decimal.Decimal
	mark  decimal.Decimal
}

func (p *position) view() Position {
	return Position{
		Asset:      p.asset,
		Quantity:   p.qty.InexactFloat64(),
		EntryPrice: p.entry.InexactFloat64(),
		MarkPrice:  p.mark.InexactFloat64(),
	}
}

// apply adds a signed quantity at price and returns the P&L realized by
// the part of delta that reduced the existing position.
func (p *position) apply(delta, price decimal.Decimal) decimal.Decimal {
	realized := decimal.Zero
	p.mark = price

	if p.qty.IsZero() || p.qty.Sign() == delta.Sign() {
		newQty := p.qty.Add(delta)
		cost := p.qty.Abs().Mul(p.entry).Add(delta.Abs().Mul(price))
		p.entry = cost.Div(newQty.Abs())
		p.qty = newQty
		return realized
	}

	closed := decimal.Min(delta.Abs(), p.qty.Abs())
	realized = price.Sub(p.entry).Mul(closed)
	if p.qty.IsNegative() {
		realized = realized.Neg()
	}

	remaining := p.qty.Add(delta)
	switch {
	case remaining.IsZero():
		p.entry = decimal.Zero
	case remaining.Sign() != p.qty.Sign():
		// flipped through flat: the remainder opens at the fill price
		p.entry = price
	}
	p.qty = remaining
	return realized
}
