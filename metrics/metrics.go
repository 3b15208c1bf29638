// Package metrics exposes run outcomes to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/tradex/gate"
	"github.com/rustyeddy/tradex/risk"
)

// Recorder owns its registry so independent runs and tests never collide
// on the global one.
type Recorder struct {
	reg *prometheus.Registry

	intents    *prometheus.CounterVec
	commission *prometheus.CounterVec
	equity     *prometheus.GaugeVec
	drawdown   *prometheus.GaugeVec
	halts      *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		intents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tradex_intents_total",
			Help: "Trade intents submitted to the gate by outcome and rejection reason",
		}, []string{"profile", "outcome", "reason"}),
		commission: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tradex_commission_total",
			Help: "Commission paid on accepted fills",
		}, []string{"profile"}),
		equity: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tradex_equity",
			Help: "Latest observed account equity",
		}, []string{"profile"}),
		drawdown: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tradex_drawdown_ratio",
			Help: "Latest drawdown from peak equity (0.0-1.0)",
		}, []string{"profile"}),
		halts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tradex_halts_total",
			Help: "Drawdown circuit breaker trips",
		}, []string{"profile"}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) ObserveResult(profile string, res gate.Result) {
	r.intents.WithLabelValues(profile, string(res.Outcome), string(res.Reason)).Inc()
	if res.Trade != nil {
		r.commission.WithLabelValues(profile).Add(res.Trade.Commission)
	}
	r.equity.WithLabelValues(profile).Set(res.Equity)
}

func (r *Recorder) ObserveSnapshot(profile string, s risk.Snapshot) {
	r.equity.WithLabelValues(profile).Set(s.Equity)
	r.drawdown.WithLabelValues(profile).Set(s.Drawdown)
}

func (r *Recorder) ObserveHalt(profile string, h risk.HaltEvent) {
	r.halts.WithLabelValues(profile).Inc()
	r.drawdown.WithLabelValues(profile).Set(h.Drawdown)
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
