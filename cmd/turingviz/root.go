package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/cli"
	"github.com/aretw0/turingviz/pkg/ports"
	"github.com/spf13/cobra"
)

var opts cli.Options

var rootCmd = &cobra.Command{
	Use:   "turingviz",
	Short: "turingviz runs and visualizes Turing machines",
	Long: `turingviz executes single-tape Turing machines step by step, lays out
their state diagrams and serves them over HTTP or MCP.

Machines come from the builtin catalog, from YAML/JSON files (--file) or
from a Loam repository (--dir).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process status without printing anything.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.Machine, "machine", "m", "", "Machine ID (optional when the source serves a single machine)")
	flags.StringSliceVarP(&opts.Files, "file", "f", nil, "Machine file or directory of YAML/JSON definitions (repeatable)")
	flags.StringVar(&opts.Dir, "dir", "", "Loam repository containing machine documents")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.LogFile, "log-file", "", "Also append JSON logs to this file")
}

// env is what every command needs: a definition source and a logger.
type env struct {
	loader ports.MachineLoader
	logger *slog.Logger
	closer io.Closer
}

func newEnv(cmd *cobra.Command) (*env, error) {
	logger, closer, err := opts.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	loader, err := opts.NewLoader()
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &env{loader: loader, logger: logger, closer: closer}, nil
}

func (e *env) Close() error { return e.closer.Close() }

// machine builds the selected machine.
func (e *env) machine(ctx context.Context, extra ...turingviz.Option) (*turingviz.Machine, error) {
	id, err := opts.ResolveMachine(ctx, e.loader)
	if err != nil {
		return nil, err
	}
	def, err := e.loader.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return turingviz.New(def, append([]turingviz.Option{turingviz.WithLogger(e.logger)}, extra...)...)
}
