// Command energiecalc prices a consumption profile against one contract from the command line.
package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "energiecalc",
		Short:         "Dutch energy contract cost calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("output", "o", outputTable, "Output format: table, json or yaml")
	root.PersistentFlags().String("tariffs", "", "Path to a YAML tariff file overriding the built-in constants")

	root.AddCommand(newCalculateCmd(), newEstimateCmd())
	return root
}
