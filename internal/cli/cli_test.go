package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/aretw0/turingviz/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const machineYAML = `id: flip
states: [s, done]
alphabet: [a, b]
start: s
accept: [done]
transitions:
  s:
    a: b,R,s
    b: a,R,s
    _: _,L,done
`

func TestOptions_NewLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("Builtin", func(t *testing.T) {
		loader, err := Options{}.NewLoader()
		require.NoError(t, err)
		ids, err := loader.List(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, len(memory.Builtin()))
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flip.yaml")
		require.NoError(t, os.WriteFile(path, []byte(machineYAML), 0o644))

		opts := Options{Files: []string{path}}
		loader, err := opts.NewLoader()
		require.NoError(t, err)
		id, err := opts.ResolveMachine(ctx, loader)
		require.NoError(t, err)
		assert.Equal(t, "flip", id)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Options{Files: []string{filepath.Join(t.TempDir(), "nope.yaml")}}.NewLoader()
		assert.Error(t, err)
	})
}

func TestOptions_ResolveMachine(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewBuiltinLoader()

	id, err := Options{Machine: "palindrome"}.ResolveMachine(ctx, loader)
	require.NoError(t, err)
	assert.Equal(t, "palindrome", id)

	_, err = Options{}.ResolveMachine(ctx, loader)
	assert.ErrorIs(t, err, ErrAmbiguousMachine)
	assert.Contains(t, err.Error(), "busy-beaver-2")
}

func TestOptions_NewLogger(t *testing.T) {
	t.Run("InvalidLevel", func(t *testing.T) {
		_, _, err := Options{LogLevel: "loud"}.NewLogger(&bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("DefaultIsWarn", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closer, err := Options{}.NewLogger(&buf)
		require.NoError(t, err)
		defer closer.Close()
		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("LogFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")
		var buf bytes.Buffer
		logger, closer, err := Options{LogLevel: "debug", LogFile: path}.NewLogger(&buf)
		require.NoError(t, err)
		logger.Debug("step", "state", "q0")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var rec map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
		assert.Equal(t, "step", rec["msg"])
		assert.Equal(t, "q0", rec["state"])
		assert.Contains(t, buf.String(), "msg=step")
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Text", func(t *testing.T) {
		m, err := turingviz.New(memory.BusyBeaver())
		require.NoError(t, err)
		var buf bytes.Buffer
		res, err := Run(ctx, &buf, m, RunOptions{Trace: true, Width: 5})
		require.NoError(t, err)

		assert.Equal(t, runner.ReasonHalted, res.Reason)
		assert.Equal(t, 6, res.Steps)
		assert.Equal(t, 0, ExitCode(res))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 7+2, "initial line, one per step, then the summary")
		assert.Contains(t, lines[0], "A")
		assert.Contains(t, lines[7], "ACCEPT")
		assert.Contains(t, lines[8], "tape: 1111")
	})

	t.Run("JSON", func(t *testing.T) {
		m, err := turingviz.New(memory.Palindrome())
		require.NoError(t, err)
		m.Restart(ctx, "ab")
		var buf bytes.Buffer
		res, err := Run(ctx, &buf, m, RunOptions{JSON: true})
		require.NoError(t, err)
		assert.Equal(t, 1, ExitCode(res))

		sc := bufio.NewScanner(&buf)
		var snaps []domain.Snapshot
		var last runner.Result
		for sc.Scan() {
			line := sc.Bytes()
			if bytes.Contains(line, []byte(`"reason"`)) {
				require.NoError(t, json.Unmarshal(line, &last))
				continue
			}
			var s domain.Snapshot
			require.NoError(t, json.Unmarshal(line, &s))
			snaps = append(snaps, s)
		}
		require.NotEmpty(t, snaps)
		assert.Equal(t, 0, snaps[0].Steps)
		assert.Equal(t, res.Steps, snaps[len(snaps)-1].Steps)
		assert.Equal(t, res, last)
	})

	t.Run("StepLimit", func(t *testing.T) {
		m, err := turingviz.New(memory.BusyBeaver())
		require.NoError(t, err)
		var buf bytes.Buffer
		res, err := Run(ctx, &buf, m, RunOptions{MaxSteps: 2})
		require.NoError(t, err)
		assert.Equal(t, runner.ReasonStepLimit, res.Reason)
		assert.Equal(t, 2, ExitCode(res))
		assert.Contains(t, buf.String(), "RUNNING")
	})

	t.Run("Ticker", func(t *testing.T) {
		m, err := turingviz.New(memory.BusyBeaver())
		require.NoError(t, err)
		res, err := Run(ctx, &bytes.Buffer{}, m, RunOptions{Interval: time.Millisecond})
		require.NoError(t, err)
		assert.Equal(t, 6, res.Steps)
		assert.True(t, res.Accepting)
	})

	t.Run("Cancelled", func(t *testing.T) {
		m, err := turingviz.New(memory.BusyBeaver())
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := Run(cctx, &bytes.Buffer{}, m, RunOptions{})
		require.NoError(t, err)
		assert.Equal(t, runner.ReasonCancelled, res.Reason)
		assert.Equal(t, 0, res.Steps)
	})
}

func TestFormatCells(t *testing.T) {
	cells := []view.Cell{{Index: 0, Symbol: "a"}, {Index: 1, Symbol: "b", Head: true}, {Index: 2, Symbol: "_"}}
	assert.Equal(t, " a [b] _ ", FormatCells(cells))
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, DefaultTerminalWidth, TerminalWidth(&buf))
}
