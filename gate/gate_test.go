package gate

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradex/compliance"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/market"
	"github.com/rustyeddy/tradex/mimicry"
	"github.com/rustyeddy/tradex/risk"
)

var t0 = time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

var (
	clean   = compliance.Scores(10, 80)
	corrupt = compliance.Scores(85, 60)
	wide    = mimicry.Profile{Name: "WIDE", LookbackWindow: 10, RiskTolerance: 1, MaxPositionFraction: 1}
)

func buy(asset string, qty, price float64) market.TradeIntent {
	return market.TradeIntent{Asset: asset, Side: market.Buy, Quantity: qty, Price: price, Time: t0}
}

func newGate(t *testing.T, cash, commission float64) (*Gate, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(cash, ledger.Options{})
	g := New(l, risk.NewGuardrail(risk.Config{}), compliance.NewScorer(compliance.DefaultThresholds()),
		Options{CommissionRate: commission})
	return g, l
}

func TestSubmitAcceptedScenario(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 10_000, 0.01)
	res, err := g.Submit(buy("A", 10, 100), clean, wide)
	require.NoError(t, err)

	assert.True(t, res.Accepted())
	assert.Empty(t, res.Reason)
	require.NotNil(t, res.Trade)
	assert.InDelta(t, 8_990, res.Trade.CashAfter, 1e-9)
	assert.InDelta(t, 9_990, res.Equity, 1e-9)
	assert.Nil(t, res.Halt)
	assert.Equal(t, compliance.Pass, res.Compliance.Verdict)

	p, ok := l.Position("A")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Quantity)
	assert.Equal(t, 100.0, p.EntryPrice)
}

func TestSubmitEthicalBlockPrecedesEverything(t *testing.T) {
	t.Parallel()

	// funded, unfunded and halted gates all answer ethical_block
	funded, fl := newGate(t, 1_000_000, 0)
	broke, bl := newGate(t, 1, 0)
	halted, hl := newGate(t, 10_000, 0)
	halted.Guardrail().ObserveEquity(5_000, t0)
	require.Equal(t, risk.Halted, halted.Guardrail().State())

	for _, tc := range []struct {
		g *Gate
		l *ledger.Ledger
	}{{funded, fl}, {broke, bl}, {halted, hl}} {
		before := tc.g.Guardrail().Snapshot()
		res, err := tc.g.Submit(buy("A", 1, 100), corrupt, wide)
		require.NoError(t, err)
		assert.Equal(t, Rejected, res.Outcome)
		assert.Equal(t, ReasonEthicalBlock, res.Reason)
		assert.Equal(t, compliance.Block, res.Compliance.Verdict)
		assert.Equal(t, 0, tc.l.Len())
		assert.Equal(t, before, tc.g.Guardrail().Snapshot())
	}
}

func TestSubmitUnknownScoresFailClosed(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 10_000, 0)
	res, err := g.Submit(buy("A", 1, 100), compliance.Inputs{}, wide)
	require.NoError(t, err)
	assert.Equal(t, ReasonEthicalBlock, res.Reason)
	assert.Equal(t, 0, l.Len())
}

func TestSubmitDrawdownHalt(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 10_000, 0)
	_, err := g.Submit(buy("A", 50, 100), clean, wide)
	require.NoError(t, err)

	// 50 units lose 22 each: equity 10000 -> 8900
	ev := g.Mark(market.Quote{Asset: "A", Price: 78, Time: t0.Add(time.Hour)})
	require.NotNil(t, ev)
	assert.InDelta(t, 0.11, ev.Drawdown, 1e-9)

	res, err := g.Submit(buy("B", 1, 10), clean, wide)
	require.NoError(t, err)
	assert.Equal(t, Rejected, res.Outcome)
	assert.Equal(t, ReasonDrawdownHalt, res.Reason)
	assert.Equal(t, 1, l.Len())

	// recovery does not lift the halt
	assert.Nil(t, g.Mark(market.Quote{Asset: "A", Price: 200, Time: t0.Add(2 * time.Hour)}))
	res, err = g.Submit(buy("B", 1, 10), clean, wide)
	require.NoError(t, err)
	assert.Equal(t, ReasonDrawdownHalt, res.Reason)
}

func TestUntimedIntentStampsMatchPrefilter(t *testing.T) {
	t.Parallel()

	ci, esg := 10.0, 80.0
	pre := compliance.NewPrefilter(compliance.NewScorer(compliance.DefaultThresholds()),
		compliance.NewDirectory(nil, map[string]compliance.Entry{"A": {CorruptionIndex: &ci, ESGScore: &esg}}))

	intent := buy("A", 1, 100)
	intent.Time = time.Time{}
	ok, screened := pre.Allow(intent)
	require.True(t, ok)

	g, _ := newGate(t, 10_000, 0)
	res, err := g.Submit(intent, clean, wide)
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.True(t, res.Compliance.Time.IsZero())
	assert.Equal(t, screened.Time, res.Compliance.Time)
}

func TestMarkIgnoresUnusablePrices(t *testing.T) {
	t.Parallel()

	g, _ := newGate(t, 10_000, 0)
	_, err := g.Submit(buy("A", 10, 100), clean, wide)
	require.NoError(t, err)

	for _, px := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), 0, -5} {
		assert.Nil(t, g.Mark(market.Quote{Asset: "A", Price: px, Time: t0.Add(time.Hour)}))
	}
	assert.Equal(t, 100.0, g.Prices()["A"])
	assert.InDelta(t, 10_000, g.Equity(), 1e-9)
	assert.Equal(t, risk.Active, g.Guardrail().State())
}

func TestSubmitPositionSizeExceeded(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 10_000, 0)
	p := mimicry.Profile{Name: "TIGHT", LookbackWindow: 10, RiskTolerance: 0.5, MaxPositionFraction: 0.05}

	res, err := g.Submit(buy("A", 6, 100), clean, p)
	require.NoError(t, err)
	assert.Equal(t, ReasonPositionSize, res.Reason)
	assert.Equal(t, 0, l.Len())

	res, err = g.Submit(buy("A", 5, 100), clean, p)
	require.NoError(t, err)
	assert.True(t, res.Accepted())
}

func TestSubmitInsufficientFunds(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 1_000, 0.01)
	res, err := g.Submit(buy("A", 10, 100), clean, wide)
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientFunds, res.Reason)
	assert.Equal(t, 1_000.0, l.Cash())
}

func TestSubmitInsufficientHoldings(t *testing.T) {
	t.Parallel()

	g, _ := newGate(t, 10_000, 0)
	sell := buy("A", 1, 100)
	sell.Side = market.Sell
	res, err := g.Submit(sell, clean, wide)
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientHoldings, res.Reason)
}

func TestSubmitValidationError(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 10_000, 0)
	for _, in := range []market.TradeIntent{
		buy("A", 0, 100),
		buy("A", -1, 100),
		buy("A", 1, 0),
		buy("", 1, 1),
		{Asset: "A", Side: "hold", Quantity: 1, Price: 1},
	} {
		_, err := g.Submit(in, corrupt, wide)
		var verr *market.ValidationError
		assert.ErrorAs(t, err, &verr, "%+v", in)
	}
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, risk.Active, g.Guardrail().State())
}

func TestSubmitFillCanTripHalt(t *testing.T) {
	t.Parallel()

	// a huge commission drops equity by more than 10% in one fill
	g, _ := newGate(t, 10_000, 0.5)
	res, err := g.Submit(buy("A", 30, 100), clean, wide)
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	require.NotNil(t, res.Halt)
	assert.Equal(t, risk.Halted, g.Guardrail().State())
}

func TestConcurrentSubmitIsSerialized(t *testing.T) {
	t.Parallel()

	g, l := newGate(t, 10_000, 0)
	const workers, each = 8, 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_, err := g.Submit(buy("A", 1, 100), clean, wide)
				assert.NoError(t, err)
				_ = g.Equity()
			}
		}()
	}
	wg.Wait()

	// 100 fills fit exactly into 10000 of cash
	assert.Equal(t, 100, l.Len())
	assert.Equal(t, 0.0, l.Cash())
	prev := 10_000.0
	for r := range l.History() {
		assert.InDelta(t, prev-100, r.CashAfter, 1e-9)
		prev = r.CashAfter
	}
}

// brokerStub stands in for a live execution venue.
type brokerStub struct {
	fills  []market.TradeIntent
	equity float64
	err    error
}

func (b *brokerStub) ApplyFill(in market.TradeIntent, rate float64) (ledger.TradeRecord, error) {
	if b.err != nil {
		return ledger.TradeRecord{}, b.err
	}
	b.fills = append(b.fills, in)
	return ledger.TradeRecord{Asset: in.Asset, Quantity: in.Quantity, Price: in.Price}, nil
}
func (b *brokerStub) Equity(market.Prices) float64 { return b.equity }
func (b *brokerStub) Mark(string, float64)          {}

func TestGateWorksWithAnySettler(t *testing.T) {
	t.Parallel()

	b := &brokerStub{equity: 50_000}
	g := New(b, risk.NewGuardrail(risk.Config{}), compliance.NewScorer(compliance.DefaultThresholds()), Options{})

	res, err := g.Submit(buy("A", 1, 100), clean, wide)
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.Len(t, b.fills, 1)

	b.err = errors.New("venue down")
	_, err = g.Submit(buy("A", 1, 100), clean, wide)
	assert.ErrorContains(t, err, "venue down")
}
