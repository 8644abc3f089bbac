package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/turingviz"
	"github.com/spf13/cobra"
)

var errInvalid = errors.New("one or more machines are invalid")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check machine definitions for consistency",
	Long: `Loads every machine of the source (or only --machine) and reports unknown
states, symbols outside the alphabet and other definition errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		ids := []string{opts.Machine}
		if opts.Machine == "" {
			if ids, err = e.loader.List(ctx); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := false
		for _, id := range ids {
			def, err := e.loader.Get(ctx, id)
			if err == nil {
				_, err = turingviz.New(def, turingviz.WithLogger(e.logger))
			}
			if err != nil {
				failed = true
				fmt.Fprintf(out, "✗ %s\n", id)
				for _, line := range splitJoined(err) {
					fmt.Fprintf(out, "    %s\n", line)
				}
				continue
			}
			fmt.Fprintf(out, "✓ %s\n", id)
		}
		if failed {
			return errInvalid
		}
		return nil
	},
}

// splitJoined unwraps an errors.Join so that each problem gets its own line.
func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var lines []string
		for _, e := range joined.Unwrap() {
			lines = append(lines, splitJoined(e)...)
		}
		return lines
	}
	return []string{err.Error()}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
