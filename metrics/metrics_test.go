package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/ledger"
	"github.com/rustyeddy/tradex/risk"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	tr := ledger.TradeRecord{Commission: 10}
	r.ObserveResult("NBIM", gate.Result{Outcome: gate.Accepted, Trade: &tr, Equity: 9990})
	r.ObserveResult("NBIM", gate.Result{Outcome: gate.Rejected, Reason: gate.ReasonEthicalBlock, Equity: 9990})
	r.ObserveResult("NBIM", gate.Result{Outcome: gate.Rejected, Reason: gate.ReasonEthicalBlock, Equity: 9990})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.intents.WithLabelValues("NBIM", "accepted", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.intents.WithLabelValues("NBIM", "rejected", "ethical_block")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.commission.WithLabelValues("NBIM")))
	assert.Equal(t, 9990.0, testutil.ToFloat64(r.equity.WithLabelValues("NBIM")))
}

func TestRecorderHaltAndSnapshot(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveSnapshot("X", risk.Snapshot{Equity: 9500, Drawdown: 0.05})
	assert.Equal(t, 0.05, testutil.ToFloat64(r.drawdown.WithLabelValues("X")))

	r.ObserveHalt("X", risk.HaltEvent{Drawdown: 0.11})
	assert.Equal(t, 1.0, testutil.ToFloat64(r.halts.WithLabelValues("X")))
	assert.Equal(t, 0.11, testutil.ToFloat64(r.drawdown.WithLabelValues("X")))
}

func TestRecordersAreIsolated(t *testing.T) {
	t.Parallel()

	a, b := NewRecorder(), NewRecorder()
	a.ObserveHalt("P", risk.HaltEvent{})
	assert.Equal(t, 0, testutil.CollectAndCount(b.halts))
	assert.Equal(t, 1, testutil.CollectAndCount(a.halts))
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveSnapshot("NBIM", risk.Snapshot{Equity: 10000})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `tradex_equity{profile="NBIM"} 10000`), body)
}
