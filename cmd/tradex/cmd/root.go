package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradex/config"
	"github.com/rustyeddy/tradex/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "tradex",
	Short: "A portfolio simulator with ethical and risk enforcement",
	Long: `Tradex replays historical bars through a strategy and an execution gate.

Every proposed trade is checked, in order, against:
  - An ethical filter (corruption index, ESG score, blocked segments)
  - A drawdown circuit breaker
  - A per-asset position size limit from the selected mimicry profile
  - The ledger's cash and holdings

It provides tools for:
  - Running single or parallel backtests per mimicry profile
  - Journaling trades, compliance records and results (CSV or SQLite)
  - Publishing results to Redis and exposing Prometheus metrics
  - Scoring assets against the compliance thresholds`,
	SilenceUsage: true,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults and TRADEX_* env apply without one")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides config")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json, overrides config")
}

// loadConfig resolves the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, format := cfg.Log.Level, cfg.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	return logging.New(os.Stderr, level, format)
}
