package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/tradex/market"
)

// trending bars: each one a unit higher than the last
func trend(n int) []market.Bar {
	out := make([]market.Bar, n)
	for i := range out {
		lo := float64(i)
		out[i] = market.Bar{Asset: "A", Time: t0.Add(time.Duration(i) * time.Hour), Low: lo, High: lo + 1, Close: lo + 1}
	}
	return out
}

func TestADXWarmup(t *testing.T) {
	t.Parallel()

	a := NewADX(3)
	bs := trend(6)
	for _, b := range bs[:5] {
		a.Update(b)
	}
	assert.False(t, a.Ready())

	a.Update(bs[5])
	assert.True(t, a.Ready())
	assert.Equal(t, "ADX(3)", a.Name())
}

func TestADXStrongTrend(t *testing.T) {
	t.Parallel()

	a := NewADX(3)
	for _, b := range trend(10) {
		a.Update(b)
	}
	assert.InDelta(t, 100.0, a.Value(), 1e-9)
	assert.InDelta(t, 100.0, a.PlusDI(), 1e-9)
	assert.Zero(t, a.MinusDI())

	a.Reset()
	assert.False(t, a.Ready())
	assert.Zero(t, a.Value())
}

func TestADXFlatMarket(t *testing.T) {
	t.Parallel()

	a := NewADX(2)
	for i := range 8 {
		a.Update(market.Bar{Asset: "A", Time: t0.Add(time.Duration(i) * time.Hour), Low: 9, High: 11, Close: 10})
	}
	assert.True(t, a.Ready())
	assert.Zero(t, a.Value())
}
