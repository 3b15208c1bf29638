package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradex CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tradex version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "A portfolio simulator with ethical and risk enforcement")
		fmt.Fprintln(cmd.OutOrStdout(), "https://github.com/rustyeddy/tradex")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
