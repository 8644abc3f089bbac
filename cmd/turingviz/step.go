package main

import (
	"errors"
	"os"
	"time"

	"github.com/aretw0/turingviz/internal/cli"
	"github.com/aretw0/turingviz/internal/presentation/tui"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/spf13/cobra"
)

var stepFlags struct {
	input    string
	interval time.Duration
}

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Step through a machine interactively",
	Long: `Opens a terminal view of the tape and the current state.
Keys: n or → steps, b or ← steps back, space plays or pauses, r restarts and q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cli.IsTerminal(os.Stdout) {
			return errors.New("step needs an interactive terminal; use 'run --trace' instead")
		}
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()

		m, err := e.machine(ctx)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("input") {
			m.Restart(ctx, stepFlags.input)
		}

		// Each cell takes about four columns once framed.
		width := cli.TerminalWidth(os.Stdout)/4 - 1
		return tui.RunStepper(ctx, m, width, stepFlags.interval)
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.Flags().StringVarP(&stepFlags.input, "input", "i", "", "Tape input (defaults to the machine's sample input)")
	stepCmd.Flags().DurationVar(&stepFlags.interval, "interval", runner.DefaultInterval, "Pause between steps while playing")
}
