package main

import (
	"bytes"
	"context"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphFlags struct {
	format string
	input  string
	steps  int
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the state diagram",
	Long: `Lays out the state diagram of the selected machine and writes it as SVG,
JSON (positions, edge paths and labels), Mermaid or Graphviz DOT.

With --steps the machine is advanced first, so the current state and the
last applied transition are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := graph.ParseFormat(graphFlags.format)
		if err != nil {
			return err
		}
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		m, err := e.machine(ctx)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("input") {
			m.Restart(ctx, graphFlags.input)
		}
		advance(ctx, m, graphFlags.steps)

		out, err := graph.Render(ctx, m, format)
		if err != nil {
			return err
		}
		if !bytes.HasSuffix(out, []byte("\n")) {
			out = append(out, '\n')
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func advance(ctx context.Context, m *turingviz.Machine, n int) {
	for i := 0; i < n; i++ {
		if !m.Step(ctx) {
			return
		}
	}
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphFlags.format, "format", "svg", "Output format: svg, json, mermaid or dot")
	graphCmd.Flags().StringVarP(&graphFlags.input, "input", "i", "", "Tape input (defaults to the machine's sample input)")
	graphCmd.Flags().IntVar(&graphFlags.steps, "steps", 0, "Advance the machine this many steps before rendering")
}
