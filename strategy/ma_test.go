package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleMAStreaming(t *testing.T) {
	t.Parallel()

	closes := []float64{102, 105, 106, 108, 110}

	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(closes[0])
	ma.Update(closes[1])
	assert.False(t, ma.Ready())

	ma.Update(closes[2])
	assert.True(t, ma.Ready())
	assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 1e-9)

	// keeps only the last 3
	ma.Update(closes[3])
	assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 1e-9)

	ma.Reset()
	assert.False(t, ma.Ready())
	ma.Update(1)
	ma.Update(2)
	ma.Update(3)
	assert.InDelta(t, 2.0, ma.Value(), 1e-9)
}

func TestExponentialMAStreaming(t *testing.T) {
	t.Parallel()

	ema := NewEMA(3)
	assert.Equal(t, "EMA(3)", ema.Name())

	ema.Update(102)
	ema.Update(105)
	assert.False(t, ema.Ready())
	ema.Update(106)
	assert.True(t, ema.Ready())
	seed := (102.0 + 105.0 + 106.0) / 3.0
	assert.InDelta(t, seed, ema.Value(), 1e-9)

	ema.Update(108)
	assert.InDelta(t, (108-seed)*0.5+seed, ema.Value(), 1e-9)

	ema.Reset()
	assert.False(t, ema.Ready())
	assert.Equal(t, 0.0, ema.Value())
}

func TestZeroPeriodIsOne(t *testing.T) {
	t.Parallel()

	ma := NewMA(0)
	ma.Update(7)
	assert.True(t, ma.Ready())
	assert.Equal(t, 7.0, ma.Value())
}
