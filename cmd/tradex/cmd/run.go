package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradex/backtest"
	"github.com/rustyeddy/tradex/config"
	"github.com/rustyeddy/tradex/events"
	"github.com/rustyeddy/tradex/journal"
	"github.com/rustyeddy/tradex/metrics"
	"github.com/rustyeddy/tradex/mimicry"
	"github.com/rustyeddy/tradex/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over historical bars",
	Long: `Replay the configured bars file through a strategy and the execution gate.

With more than one profile, each profile gets its own isolated run (ledger,
guardrail and gate) and the runs execute in parallel.

Examples:
  tradex run --config tradex.yaml
  tradex run --profile NBIM --profile RENAISSANCE --strategy ema-cross
  tradex run --all-profiles --bars data/bars.csv`,
	RunE: runRun,
}

var (
	runProfiles    []string
	runAllProfiles bool
	runStrategy    string
	runBars        string
	runNoPrefilter bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&runProfiles, "profile", "p", nil, "mimicry profile(s) to run; defaults to mimicry.profile")
	runCmd.Flags().BoolVar(&runAllProfiles, "all-profiles", false, "run every profile in the catalog")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "ma-cross", "strategy: "+strings.Join(strategy.Names(), ", "))
	runCmd.Flags().StringVarP(&runBars, "bars", "b", "", "bars CSV file, overrides data.bars_file")
	runCmd.Flags().BoolVar(&runNoPrefilter, "no-prefilter", false, "send every intent to the gate without the compliance screen")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runBars != "" {
		cfg.Data.BarsFile = runBars
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	profiles, err := selectProfiles(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var rec *metrics.Recorder
	if cfg.Metrics.Addr != "" {
		rec = metrics.NewRecorder()
		go func() {
			if err := rec.Serve(ctx, cfg.Metrics.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
			}
		}()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
	}

	pub, err := openPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	runs := make([]backtest.Run, 0, len(profiles))
	defer func() {
		for _, r := range runs {
			_ = r.Feed.Close()
		}
	}()
	for _, p := range profiles {
		gen, err := strategy.New(runStrategy, p)
		if err != nil {
			return err
		}
		feed, err := backtest.OpenCSVBarFeed(cfg.Data.BarsFile, cfg.Data.Assets)
		if err != nil {
			return err
		}

		s := backtest.NewSession(cfg, p, gen)
		if runNoPrefilter {
			s.Prefilter = nil
		}
		s.Events = pub
		s.Metrics = rec
		s.Log = log
		runs = append(runs, backtest.Run{Session: s, Feed: feed})
	}

	sink, err := openJournals(cfg, runs)
	if err != nil {
		return err
	}
	defer sink.close(log)

	log.Info().
		Int("runs", len(runs)).
		Str("strategy", runStrategy).
		Str("bars", cfg.Data.BarsFile).
		Msg("starting")

	var sums []backtest.Summary
	if len(runs) == 1 {
		var s backtest.Summary
		s, err = runs[0].Session.Run(ctx, runs[0].Feed)
		sums = []backtest.Summary{s}
	} else {
		sums, err = backtest.RunAll(ctx, runs)
	}
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, s := range sums {
		if i > 0 {
			fmt.Fprintln(out)
		}
		backtest.PrintSummary(out, s)
		if err := sink.finish(cfg, s, len(sums) > 1); err != nil {
			return err
		}
	}
	return nil
}

// selectProfiles resolves the --profile and --all-profiles flags against
// the configured catalog.
func selectProfiles(cfg *config.Config) ([]mimicry.Profile, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	names := runProfiles
	switch {
	case runAllProfiles:
		names = cat.Names()
	case len(names) == 0:
		names = []string{cfg.Mimicry.Profile}
	}

	out := make([]mimicry.Profile, 0, len(names))
	for _, n := range names {
		p, err := cat.Select(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func openPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, error) {
	if cfg.Events.Type != "redis" {
		return events.Nop{}, nil
	}
	pub, err := events.NewRedis(ctx, cfg.RedisConfig())
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	return pub, nil
}

// journalSink owns whatever the runs write to.
type journalSink struct {
	db      *journal.SQLite
	closers []io.Closer
}

// openJournals attaches a journal to every run. SQLite runs share one
// database keyed by run ID. CSV runs get one file set each, suffixed with
// the profile name when there is more than one run.
func openJournals(cfg *config.Config, runs []backtest.Run) (*journalSink, error) {
	sink := &journalSink{}
	switch cfg.Journal.Type {
	case "sqlite":
		db, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		sink.db = db
		sink.closers = append(sink.closers, db)
		for _, r := range runs {
			r.Session.Journal = db.WithRun(r.Session.RunID)
		}
	case "csv":
		multi := len(runs) > 1
		for _, r := range runs {
			name := r.Session.Profile.Name
			j, err := journal.NewCSV(
				suffixed(cfg.Journal.TradesFile, name, multi),
				suffixed(cfg.Journal.ComplianceFile, name, multi),
				suffixed(cfg.Journal.ResultsFile, name, multi),
			)
			if err != nil {
				for _, c := range sink.closers {
					_ = c.Close()
				}
				return nil, fmt.Errorf("open journal: %w", err)
			}
			sink.closers = append(sink.closers, j)
			r.Session.Journal = j
		}
	default:
		for _, r := range runs {
			r.Session.Journal = journal.Nop{}
		}
	}
	return sink, nil
}

// finish stores the run report and writes the org summary if configured.
func (s *journalSink) finish(cfg *config.Config, sum backtest.Summary, multi bool) error {
	report := sum.Report()
	if s.db != nil {
		if err := s.db.RecordRun(report); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if cfg.Journal.OrgFile != "" {
		if err := report.WriteOrg(suffixed(cfg.Journal.OrgFile, sum.Profile, multi)); err != nil {
			return fmt.Errorf("write org: %w", err)
		}
	}
	return nil
}

func (s *journalSink) close(log zerolog.Logger) {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("close journal")
		}
	}
}

// suffixed turns "trades.csv" into "trades-nbim.csv" when on is set.
func suffixed(path, name string, on bool) string {
	if !on || path == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strings.ToLower(name) + ext
}
