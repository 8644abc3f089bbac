package main

import (
	"context"
	"fmt"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/cli"
	"github.com/aretw0/turingviz/pkg/adapters/file"
	"github.com/aretw0/turingviz/pkg/persistence/middleware"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/spf13/cobra"
)

var runFlags struct {
	input      string
	session    string
	sessionDir string
	maxTrace   int
	run        cli.RunOptions
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a machine until it halts",
	Long: `Runs the selected machine headless and prints the outcome.

The exit status is 0 when the machine accepts, 1 when it rejects and 2 when
the run stopped before halting (step limit or Ctrl+C). With --session the
configuration is persisted after the run and resumed by the next one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()

		var res runner.Result
		if runFlags.session != "" {
			res, err = runSession(ctx, cmd, e)
		} else {
			res, err = runOnce(ctx, cmd, e)
		}
		if err != nil {
			return err
		}
		if code := cli.ExitCode(res); code != 0 {
			return exitError{code: code}
		}
		return nil
	},
}

func runOnce(ctx context.Context, cmd *cobra.Command, e *env) (runner.Result, error) {
	m, err := e.machine(ctx, turingviz.WithTrace(false))
	if err != nil {
		return runner.Result{}, err
	}
	if cmd.Flags().Changed("input") {
		m.Restart(ctx, runFlags.input)
	}
	return cli.Run(ctx, cmd.OutOrStdout(), m, runFlags.run)
}

func runSession(ctx context.Context, cmd *cobra.Command, e *env) (runner.Result, error) {
	id, err := opts.ResolveMachine(ctx, e.loader)
	if err != nil {
		return runner.Result{}, err
	}
	store := middleware.Chain(
		file.NewStore(runFlags.sessionDir),
		middleware.NewTraceLimitMiddleware(runFlags.maxTrace),
	)
	mgr := session.NewManager(store, e.loader,
		session.WithLogger(e.logger),
		session.WithMachineOptions(turingviz.WithTraceLimit(runFlags.maxTrace)),
	)

	input := runFlags.input
	if !cmd.Flags().Changed("input") {
		def, err := e.loader.Get(ctx, id)
		if err != nil {
			return runner.Result{}, err
		}
		input = def.Input
	}
	sess, err := mgr.LoadOrStart(ctx, runFlags.session, id, input)
	if err != nil {
		return runner.Result{}, err
	}
	if sess.MachineID != id {
		return runner.Result{}, fmt.Errorf("session %s belongs to machine %s", sess.ID, sess.MachineID)
	}

	var res runner.Result
	_, err = mgr.Update(ctx, sess.ID, func(ctx context.Context, m *turingviz.Machine) error {
		var err error
		res, err = cli.Run(ctx, cmd.OutOrStdout(), m, runFlags.run)
		return err
	})
	return res, err
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVarP(&runFlags.input, "input", "i", "", "Tape input (defaults to the machine's sample input)")
	f.DurationVar(&runFlags.run.Interval, "interval", 0, "Pause between steps, e.g. 200ms (0 runs as fast as possible)")
	f.IntVar(&runFlags.run.MaxSteps, "max-steps", cli.DefaultMaxSteps, "Stop after this many steps")
	f.IntVar(&runFlags.run.Width, "width", 0, "Tape cells shown per trace line")
	f.BoolVar(&runFlags.run.Trace, "trace", false, "Print one line per step")
	f.BoolVar(&runFlags.run.JSON, "json", false, "Print NDJSON snapshots and the result")
	f.StringVar(&runFlags.session, "session", "", "Persist and resume the run under this session ID")
	f.StringVar(&runFlags.sessionDir, "session-dir", file.DefaultSessionDir, "Directory of persisted sessions")
	f.IntVar(&runFlags.maxTrace, "max-trace", 1000, "Undo checkpoints kept in the session (0 is unlimited)")
}

