package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/presentation/tui"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/aretw0/turingviz/pkg/view"
)

// DefaultMaxSteps bounds a headless run that was not given a limit.
const DefaultMaxSteps = 100000

// RunOptions configure a headless run.
type RunOptions struct {
	Interval time.Duration // pause between steps; zero steps as fast as possible
	MaxSteps int
	Width    int  // tape window width of the trace lines
	Trace    bool // print one line per step
	JSON     bool // NDJSON snapshots instead of text
}

// Run drives m to a halt, the step limit or cancellation and reports on w.
func Run(ctx context.Context, w io.Writer, m *turingviz.Machine, opts RunOptions) (runner.Result, error) {
	if opts.Width <= 0 {
		opts.Width = domain.DefaultWindowWidth
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}

	var writeErr error
	report := func() {
		if writeErr != nil || (!opts.Trace && !opts.JSON) {
			return
		}
		writeErr = writeStep(w, m, opts)
	}

	report()
	var res runner.Result
	if opts.Interval > 0 {
		res = m.Run(ctx,
			runner.WithInterval(opts.Interval),
			runner.WithMaxSteps(opts.MaxSteps),
			runner.WithOnTick(func(ctx context.Context, t runner.Tick) {
				if t.Advanced {
					report()
				}
			}),
		)
	} else {
		res = runFast(ctx, m, opts.MaxSteps, report)
	}
	if writeErr != nil {
		return res, writeErr
	}

	if opts.JSON {
		return res, json.NewEncoder(w).Encode(res)
	}
	snap := m.Snapshot()
	_, err := fmt.Fprintf(w, "%s after %d steps in state %s (%s)\ntape: %s\n",
		tui.Status(w, res.Halted, res.Accepting), snap.Steps, snap.State, res.Reason, snap.Tape)
	return res, err
}

func runFast(ctx context.Context, m *turingviz.Machine, maxSteps int, onStep func()) runner.Result {
	var res runner.Result
	for {
		if ctx.Err() != nil {
			res.Reason = runner.ReasonCancelled
			break
		}
		if !m.Step(ctx) {
			res.Reason = runner.ReasonHalted
			break
		}
		res.Steps++
		onStep()
		if res.Steps >= maxSteps {
			res.Reason = runner.ReasonStepLimit
			break
		}
	}
	res.Halted = m.Halted()
	res.Accepting = m.IsAccepting()
	return res
}

func writeStep(w io.Writer, m *turingviz.Machine, opts RunOptions) error {
	snap := m.Snapshot()
	if opts.JSON {
		return json.NewEncoder(w).Encode(snap)
	}
	_, err := fmt.Fprintf(w, "%5d  %-10s %s\n", snap.Steps, snap.State, FormatCells(m.HeadWindow(opts.Width)))
	return err
}

// FormatCells renders a tape window on one line with the head cell in brackets.
func FormatCells(cells []view.Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		if c.Head {
			fmt.Fprintf(&sb, "[%s]", c.Symbol)
		} else {
			fmt.Fprintf(&sb, " %s ", c.Symbol)
		}
	}
	return sb.String()
}

// ExitCode maps a run result to a process status: 0 accept, 1 reject,
// 2 when the run did not halt.
func ExitCode(res runner.Result) int {
	switch {
	case res.Halted && res.Accepting:
		return 0
	case res.Halted:
		return 1
	default:
		return 2
	}
}
