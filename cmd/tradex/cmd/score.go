package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradex/compliance"
)

var scoreCmd = &cobra.Command{
	Use:   "score <asset>...",
	Short: "Evaluate assets against the compliance thresholds",
	Long: `Resolve each asset's corruption index, ESG score and segment from the
config (compliance.scores, falling back to the country and company index)
and print the verdict. Unknown scores are treated as the worst value.

Example:
  tradex score EQNR.OL COAL --config tradex.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scorer := compliance.NewScorer(cfg.Thresholds())
	dir := cfg.Directory()
	now := time.Now().UTC()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ASSET\tCORRUPTION\tESG\tSEGMENT\tVERDICT\tREASONS")
	for _, asset := range args {
		rec := scorer.Evaluate(asset, dir.Lookup(asset), now)
		seg := rec.Segment
		if seg == "" {
			seg = "-"
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%s\t%s\t%s\n",
			rec.Asset, rec.CorruptionIndex, rec.ESGScore, seg, rec.Verdict, strings.Join(rec.Reasons, "; "))
	}
	return w.Flush()
}
