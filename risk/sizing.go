package risk

import (
	"math"

	"github.com/rustyeddy/tradex/mimicry"
)

// MaxQuantity is the largest whole quantity at price that passes the
// position-size check for equity.
func MaxQuantity(equity, price, maxFraction float64) float64 {
	if equity <= 0 || price <= 0 || maxFraction <= 0 {
		return 0
	}
	return math.Floor(equity * maxFraction / price)
}

// Quantity sizes an entry for profile: the position cap scaled by the
// profile's risk tolerance, at least one unit when the cap allows any.
func Quantity(equity, price float64, p mimicry.Profile) float64 {
	capQty := MaxQuantity(equity, price, p.MaxPositionFraction)
	if capQty == 0 {
		return 0
	}
	return max(math.Floor(capQty*p.RiskTolerance), 1)
}
