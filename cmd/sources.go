package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"animeku/internal/provider"
	"animeku/internal/ui"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the available sources",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range provider.Names() {
			marker := "  "
			if name == cfg.Source {
				marker = ui.Success("* ")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%-8s %s\n", marker, name, provider.Describe(name))
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "animeku", Version)
	},
}
