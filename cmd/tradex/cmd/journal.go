package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradex/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite journal",
	Long: `Query and display records from a SQLite journal.

Subcommands:
  runs             - List stored runs, newest first
  run <run-id>     - Show one run report in org format
  trades <run-id>  - List the trades of a run
  trade <trade-id> - Get details of a specific trade
  results <run-id> - List every gate result of a run
  halts <run-id>   - List drawdown halts of a run
  day <YYYY-MM-DD> - List trades executed on a specific day
  today            - List trades executed today

Examples:
  tradex journal runs --db tradex.sqlite
  tradex journal trades 3f1c...
  tradex journal day 2024-01-15`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show one run report",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalResultsCmd = &cobra.Command{
	Use:   "results <run-id>",
	Short: "List the gate results of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalResults,
}

var journalHaltsCmd = &cobra.Command{
	Use:   "halts <run-id>",
	Short: "List the drawdown halts of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalHalts,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades executed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades executed today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalResultsCmd)
	journalCmd.AddCommand(journalHaltsCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalTodayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./tradex.sqlite", "path to SQLite journal DB")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCREATED\tPROFILE\tINTENTS\tACCEPTED\tREJECTED\tRETURN\tMAX DD\tHALTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f%%\t%.2f%%\t%t\n",
			r.RunID, r.Created.Format(time.RFC3339), r.Profile, r.Intents, r.Accepted, r.Rejected,
			r.ReturnPct(), 100*r.MaxDrawdown, r.Halted)
	}
	return w.Flush()
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	s, err := r.FormatRunOrg()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalResults(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rows, err := j.ListResults(args[0])
	if err != nil {
		return fmt.Errorf("query results: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tASSET\tSIDE\tQTY\tPRICE\tOUTCOME\tREASON\tEQUITY")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%.4f\t%s\t%s\t%.2f\n",
			r.Time.Format(time.RFC3339), r.Asset, r.Side, r.Quantity, r.Price, r.Outcome, r.Reason, r.Equity)
	}
	return w.Flush()
}

func runJournalHalts(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	halts, err := j.ListHalts(args[0])
	if err != nil {
		return fmt.Errorf("query halts: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPEAK\tEQUITY\tDRAWDOWN\tTHRESHOLD")
	for _, h := range halts {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f%%\t%.2f%%\n",
			h.Time.Format(time.RFC3339), h.Peak, h.Equity, 100*h.Drawdown, 100*h.Threshold)
	}
	return w.Flush()
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().In(time.Local).Format(time.DateOnly))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd, args[0])
}

func listDay(cmd *cobra.Command, day string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	recs, err := j.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
