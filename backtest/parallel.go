package backtest

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Run pairs a session with the feed it consumes.
type Run struct {
	Session *Session
	Feed    BarFeed
}

// RunAll executes independent runs in parallel. Runs share nothing but
// their sinks. The first failure cancels the others; summaries are
// returned in the order of runs.
func RunAll(ctx context.Context, runs []Run) ([]Summary, error) {
	out := make([]Summary, len(runs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range runs {
		g.Go(func() error {
			s, err := r.Session.Run(ctx, r.Feed)
			out[i] = s
			return err
		})
	}
	err := g.Wait()
	return out, err
}
