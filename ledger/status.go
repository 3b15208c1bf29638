package ledger

import "github.com/rustyeddy/tradex/market"

// Tier buckets a run by its starting purse.
type Tier string

const (
	TierSmall  Tier = "SMALL"
	TierMedium Tier = "MEDIUM"
	TierLarge  Tier = "LARGE"
)

func TierFor(initialCash float64) Tier {
	switch {
	case initialCash <= 20_000:
		return TierSmall
	case initialCash <= 200_000:
		return TierMedium
	default:
		return TierLarge
	}
}

// Status is a point-in-time summary for reporting.
type Status struct {
	Tier       Tier
	Cash       float64
	Equity     float64
	RealizedPL float64
	Trades     int
	Positions  []Position
}

func (l *Ledger) Status(prices market.Prices) Status {
	pos := l.Positions()
	for i := range pos {
		if px, ok := prices[pos[i].Asset]; ok && px > 0 {
			pos[i].MarkPrice = px
		}
	}
	return Status{
		Tier:       TierFor(l.InitialCash()),
		Cash:       l.Cash(),
		Equity:     l.Equity(prices),
		RealizedPL: l.RealizedPL(),
		Trades:     l.Len(),
		Positions:  pos,
	}
}
