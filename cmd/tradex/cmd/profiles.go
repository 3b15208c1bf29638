package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the mimicry profiles",
	Long: `List every profile a run can select: the built-in catalog plus any
profiles defined under mimicry.profiles in the config file.`,
	Args: cobra.NoArgs,
	RunE: runProfilesList,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tACTOR\tSHORT\tLOOKBACK\tRISK\tMAX POS\tSTYLE")
	for _, name := range cat.Names() {
		p, err := cat.Select(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%.0f%%\t%s\n",
			p.Name, p.Actor, p.ShortWindow, p.LookbackWindow, p.RiskTolerance, 100*p.MaxPositionFraction, p.Style)
	}
	return w.Flush()
}
