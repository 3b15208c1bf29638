package ledger

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradex/market"
)

var t0 = time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

func intent(asset string, side market.Side, qty, price float64) market.TradeIntent {
	return market.TradeIntent{Asset: asset, Side: side, Quantity: qty, Price: price, Time: t0}
}

func TestApplyFillBuyScenario(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	rec, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0.01)
	require.NoError(t, err)

	assert.InDelta(t, 8990, rec.CashAfter, 1e-9)
	assert.InDelta(t, 10, rec.Commission, 1e-9)
	assert.InDelta(t, 9990, rec.EquityAfter, 1e-9)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, t0, rec.Time)

	p, ok := l.Position("A")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Quantity)
	assert.Equal(t, 100.0, p.EntryPrice)
	assert.InDelta(t, 8990, l.Cash(), 1e-9)
}

func TestApplyFillConservation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		qty, price float64
		rate       float64
	}{
		{"round", 10, 100, 0.01},
		{"fractional", 3.5, 17.23, 0.001},
		{"tiny", 0.001, 61234.5, 0.0025},
		{"free", 7, 9.99, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := New(100_000, Options{})
			before := l.Cash()

			rec, err := l.ApplyFill(intent("X", market.Buy, tt.qty, tt.price), tt.rate)
			require.NoError(t, err)

			want := tt.qty*tt.price + tt.qty*tt.price*tt.rate
			assert.InDelta(t, want, before-l.Cash(), 1e-9)
			p, _ := l.Position("X")
			assert.InDelta(t, tt.qty, p.Quantity, 1e-12)
			assert.GreaterOrEqual(t, l.Cash(), 0.0)
			assert.InDelta(t, rec.CashAfter, l.Cash(), 1e-12)
		})
	}
}

func TestApplyFillInsufficientFundsLeavesLedgerUnchanged(t *testing.T) {
	t.Parallel()

	l := New(1_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0.01) // 1010 > 1000
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	assert.Equal(t, 1_000.0, l.Cash())
	assert.Equal(t, 0, l.Len())
	_, ok := l.Position("A")
	assert.False(t, ok)
}

func TestApplyFillExactCashIsAllowed(t *testing.T) {
	t.Parallel()

	l := New(1_010, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0.01)
	require.NoError(t, err)
	assert.Equal(t, 0.0, l.Cash())
}

func TestApplyFillLeverage(t *testing.T) {
	t.Parallel()

	l := New(1_000, Options{LeverageAllowed: true, CreditLimit: 1_000})
	_, err := l.ApplyFill(intent("A", market.Buy, 15, 100), 0)
	require.NoError(t, err)
	assert.Equal(t, -500.0, l.Cash())

	_, err = l.ApplyFill(intent("A", market.Buy, 6, 100), 0)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, -500.0, l.Cash())
}

func TestApplyFillWeightedAverageEntry(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0)
	require.NoError(t, err)
	_, err = l.ApplyFill(intent("A", market.Buy, 30, 120), 0)
	require.NoError(t, err)

	p, ok := l.Position("A")
	require.True(t, ok)
	assert.Equal(t, 40.0, p.Quantity)
	assert.InDelta(t, 115, p.EntryPrice, 1e-9)
}

func TestApplyFillSellRealizesAndCloses(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 2, 100), 0.001)
	require.NoError(t, err)

	rec, err := l.ApplyFill(intent("A", market.Sell, 1, 110), 0.001)
	require.NoError(t, err)
	assert.InDelta(t, 10, rec.RealizedPL, 1e-9)
	p, ok := l.Position("A")
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Quantity)
	assert.Equal(t, 100.0, p.EntryPrice)

	rec, err = l.ApplyFill(intent("A", market.Sell, 1, 90), 0.001)
	require.NoError(t, err)
	assert.InDelta(t, -10, rec.RealizedPL, 1e-9)
	_, ok = l.Position("A")
	assert.False(t, ok, "flat positions are removed")
	assert.InDelta(t, 0, l.RealizedPL(), 1e-9)

	// 10000 - 200.2 + (110 - 0.11) + (90 - 0.09)
	assert.InDelta(t, 9999.6, l.Cash(), 1e-9)
}

func TestApplyFillSellWithoutHoldings(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Sell, 1, 100), 0)
	assert.ErrorIs(t, err, ErrInsufficientHoldings)
	assert.Equal(t, 0, l.Len())
}

func TestApplyFillShortAndFlip(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{LeverageAllowed: true, CreditLimit: 5_000})
	_, err := l.ApplyFill(intent("A", market.Sell, 5, 100), 0)
	require.NoError(t, err)
	p, _ := l.Position("A")
	assert.Equal(t, -5.0, p.Quantity)
	assert.Equal(t, 100.0, p.EntryPrice)

	// cover 5 at 90 (+50) and go long 3 at 90
	rec, err := l.ApplyFill(intent("A", market.Buy, 8, 90), 0)
	require.NoError(t, err)
	assert.InDelta(t, 50, rec.RealizedPL, 1e-9)
	p, _ = l.Position("A")
	assert.Equal(t, 3.0, p.Quantity)
	assert.Equal(t, 90.0, p.EntryPrice)
}

func TestApplyFillRejectsBadInput(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 0, 100), 0)
	var verr *market.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = l.ApplyFill(intent("A", market.Buy, 1, 100), 1.5)
	assert.ErrorIs(t, err, ErrInvalidCommission)
	assert.Equal(t, 0, l.Len())
}

func TestEquityIsIdempotentRead(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0)
	require.NoError(t, err)

	prices := market.Prices{"A": 120}
	e1 := l.Equity(prices)
	e2 := l.Equity(prices)
	assert.Equal(t, e1, e2)
	assert.InDelta(t, 10_200, e1, 1e-9)
	assert.Equal(t, 1, l.Len())
	assert.InDelta(t, 9_000, l.Cash(), 1e-9)

	// missing prices fall back to the mark
	assert.InDelta(t, 10_000, l.Equity(nil), 1e-9)
	l.Mark("A", 80)
	assert.InDelta(t, 9_800, l.Equity(nil), 1e-9)
}

func TestNonFinitePricesFallBackToMark(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0)
	require.NoError(t, err)

	l.Mark("A", math.Inf(1))
	l.Mark("A", math.NaN())
	assert.InDelta(t, 10_000, l.Equity(nil), 1e-9)

	assert.InDelta(t, 10_000, l.Equity(market.Prices{"A": math.Inf(1)}), 1e-9)
	assert.InDelta(t, 10_000, l.Equity(market.Prices{"A": math.Inf(-1)}), 1e-9)
	assert.InDelta(t, 10_000, l.Equity(market.Prices{"A": math.NaN()}), 1e-9)
}

func TestTradeIDsFollowEachLedgersClock(t *testing.T) {
	t.Parallel()

	late, early := New(10_000, Options{}), New(10_000, Options{})

	in := intent("A", market.Buy, 1, 100)
	in.Time = t0.Add(30 * 24 * time.Hour)
	_, err := late.ApplyFill(in, 0)
	require.NoError(t, err)

	rec, err := early.ApplyFill(intent("A", market.Buy, 1, 100), 0)
	require.NoError(t, err)
	id, err := ulid.Parse(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(t0), id.Time())
}

func TestHistoryIsRestartable(t *testing.T) {
	t.Parallel()

	l := New(10_000, Options{})
	for i := 0; i < 3; i++ {
		_, err := l.ApplyFill(intent("A", market.Buy, 1, 100), 0)
		require.NoError(t, err)
	}

	seq := l.History()
	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count())

	var cash []float64
	for r := range seq {
		cash = append(cash, r.CashAfter)
		if len(cash) == 2 {
			break
		}
	}
	assert.Equal(t, []float64{9_900, 9_800}, cash)
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	t.Parallel()

	l := New(1_000_000, Options{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.Equity(market.Prices{"A": 100})
				for range l.History() {
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		_, err := l.ApplyFill(intent("A", market.Buy, 1, 100), 0)
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, 100, l.Len())
}

func TestStatusAndTier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TierSmall, TierFor(20_000))
	assert.Equal(t, TierMedium, TierFor(20_001))
	assert.Equal(t, TierLarge, TierFor(2_000_000))

	l := New(10_000, Options{})
	_, err := l.ApplyFill(intent("A", market.Buy, 10, 100), 0)
	require.NoError(t, err)

	st := l.Status(market.Prices{"A": 110})
	assert.Equal(t, TierSmall, st.Tier)
	assert.InDelta(t, 10_100, st.Equity, 1e-9)
	require.Len(t, st.Positions, 1)
	assert.InDelta(t, 100, st.Positions[0].UnrealizedPL(), 1e-9)
	assert.Equal(t, 1, st.Trades)
}
