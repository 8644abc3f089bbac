package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/pkg/adapters/file"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default between executions of the
// shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list", "--json")
	require.NoError(t, err)

	var list []dto.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, len(memory.Builtin()))
}

func TestRun(t *testing.T) {
	t.Run("Accept", func(t *testing.T) {
		out, err := execute(t, "run", "-m", "busy-beaver-2")
		require.NoError(t, err)
		assert.Contains(t, out, "after 6 steps")
		assert.Contains(t, out, "tape: 1111")
	})

	t.Run("RejectExitCode", func(t *testing.T) {
		_, err := execute(t, "run", "-m", "palindrome", "--input", "ab")
		var exit exitError
		require.ErrorAs(t, err, &exit)
		assert.Equal(t, 1, exit.code)
	})

	t.Run("StepLimitExitCode", func(t *testing.T) {
		_, err := execute(t, "run", "-m", "busy-beaver-2", "--max-steps", "2")
		var exit exitError
		require.ErrorAs(t, err, &exit)
		assert.Equal(t, 2, exit.code)
	})

	t.Run("Ambiguous", func(t *testing.T) {
		_, err := execute(t, "run")
		assert.ErrorContains(t, err, "--machine is required")
	})

	t.Run("SessionResumes", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, "run", "-m", "busy-beaver-2", "--session", "bb", "--session-dir", dir, "--max-steps", "4")
		var exit exitError
		require.ErrorAs(t, err, &exit)

		out, err := execute(t, "run", "-m", "busy-beaver-2", "--session", "bb", "--session-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "after 6 steps")

		out, err = execute(t, "session", "ls", "--session-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "- bb")

		out, err = execute(t, "session", "inspect", "bb", "--session-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, `"machine_id"`)

		_, err = execute(t, "session", "rm", "--all", "--session-dir", dir)
		require.NoError(t, err)
		out, err = execute(t, "session", "ls", "--session-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "No sessions found.")
	})

	t.Run("SessionTraceBounded", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, "run", "-m", "busy-beaver-2", "--session", "bb", "--session-dir", dir,
			"--max-steps", "5", "--max-trace", "3")
		var exit exitError
		require.ErrorAs(t, err, &exit)

		sess, err := file.NewStore(dir).Load(context.Background(), "bb")
		require.NoError(t, err)
		assert.Equal(t, 5, sess.Current.Steps)
		assert.Len(t, sess.Trace, 3)
	})
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph", "-m", "busy-beaver-2", "--format", "mermaid", "--steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "class B current")

	out, err = execute(t, "graph", "-m", "palindrome")
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")

	_, err = execute(t, "graph", "-m", "palindrome", "--format", "png")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(`id: good
states: [s, done]
start: s
accept: [done]
transitions:
  s:
    _: _,R,done
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`id: bad
states: [s]
start: s
transitions:
  s:
    _: _,R,nowhere
`), 0o644))

	out, err := execute(t, "validate", "--file", dir)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "✓ good")
	assert.Contains(t, out, "✗ bad")
	assert.Contains(t, out, "nowhere")

	out, err = execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ palindrome")
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "describe", "-m", "busy-beaver-2", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "| State | Read | Write | Move | Next |")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "turingviz version")
}
