package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/cli"
	"github.com/aretw0/turingviz/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of turingviz",
	Run: func(cmd *cobra.Command, args []string) {
		if cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "turingviz version %s\n", strings.TrimSpace(turingviz.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
