package strategy

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tradex/market"
)

// ADX is Wilder's Average Directional Index over bar highs, lows and
// closes. It needs about 2N bars before it is ready: N periods to seed
// the smoothed ranges, then N directional values to seed the average.
type ADX struct {
	n int

	prev    market.Bar
	hasPrev bool
	periods int
	ready   bool

	adx, plusDI, minusDI float64

	// Wilder smoothed sums; plain sums during the first N periods
	smTR, smPlusDM, smMinusDM float64

	dxSum   float64
	dxCount int
}

func NewADX(period int) *ADX {
	return &ADX{n: max(period, 1)}
}

func (a *ADX) Name() string     { return fmt.Sprintf("ADX(%d)", a.n) }
func (a *ADX) Ready() bool      { return a.ready }
func (a *ADX) Value() float64   { return a.adx }
func (a *ADX) PlusDI() float64  { return a.plusDI }
func (a *ADX) MinusDI() float64 { return a.minusDI }

func (a *ADX) Reset() { *a = ADX{n: a.n} }

// Update consumes the next closed bar.
func (a *ADX) Update(b market.Bar) {
	if !a.hasPrev {
		a.prev, a.hasPrev = b, true
		return
	}
	prev := a.prev
	a.prev = b

	tr := max(b.High-b.Low, math.Abs(b.High-prev.Close), math.Abs(b.Low-prev.Close))

	up := b.High - prev.High
	down := prev.Low - b.Low
	var plusDM, minusDM float64
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}

	a.periods++
	nf := float64(a.n)

	if a.periods <= a.n {
		a.smTR += tr
		a.smPlusDM += plusDM
		a.smMinusDM += minusDM
		if a.periods < a.n {
			return
		}
	} else {
		a.smTR = a.smTR - a.smTR/nf + tr
		a.smPlusDM = a.smPlusDM - a.smPlusDM/nf + plusDM
		a.smMinusDM = a.smMinusDM - a.smMinusDM/nf + minusDM
	}

	a.plusDI, a.minusDI = directional(a.smPlusDM, a.smMinusDM, a.smTR)
	dx := directionalIndex(a.plusDI, a.minusDI)

	if a.ready {
		a.adx = (a.adx*(nf-1) + dx) / nf
		return
	}
	a.dxSum += dx
	a.dxCount++
	if a.dxCount >= a.n {
		a.adx = a.dxSum / nf
		a.ready = true
	}
}

func directional(plusDM, minusDM, tr float64) (float64, float64) {
	if tr <= 0 {
		return 0, 0
	}
	return 100 * plusDM / tr, 100 * minusDM / tr
}

func directionalIndex(plusDI, minusDI float64) float64 {
	den := plusDI + minusDI
	if den <= 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / den
}
