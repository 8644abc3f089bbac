package main

import (
	"fmt"
	"os"

	"github.com/aretw0/turingviz/internal/cli"
	"github.com/aretw0/turingviz/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the transition table of a machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.machine(cmd.Context())
		if err != nil {
			return err
		}
		markdown := tui.Describe(m.Definition())
		if raw, _ := cmd.Flags().GetBool("raw"); raw || !cli.IsTerminal(os.Stdout) {
			_, err = fmt.Fprint(cmd.OutOrStdout(), markdown)
			return err
		}
		rendered, err := tui.NewRenderer()(markdown)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
