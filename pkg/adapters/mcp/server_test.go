package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

type harness struct {
	t   *testing.T
	srv *Server
	id  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader())
	h := &harness{t: t, srv: NewServer(mgr)}
	h.call("initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0.0"},
	})
	return h
}

func (h *harness) call(method string, params any) json.RawMessage {
	h.t.Helper()
	h.id++
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      h.id,
		"method":  method,
		"params":  params,
	})
	require.NoError(h.t, err)

	out := h.srv.MCPServer().HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(out)
	require.NoError(h.t, err)

	var resp rpcResponse
	require.NoError(h.t, json.Unmarshal(raw, &resp))
	require.Nil(h.t, resp.Error, string(raw))
	return resp.Result
}

func (h *harness) tool(name string, args map[string]any) toolResult {
	h.t.Helper()
	var res toolResult
	require.NoError(h.t, json.Unmarshal(h.call("tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	}), &res))
	return res
}

func decodeText[T any](t *testing.T, res toolResult) T {
	t.Helper()
	require.False(t, res.IsError, fmt.Sprint(res.Content))
	require.NotEmpty(t, res.Content)
	var v T
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &v), res.Content[0].Text)
	return v
}

func TestServer_ToolsRegistered(t *testing.T) {
	h := newHarness(t)
	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(h.call("tools/list", map[string]any{}), &list))

	names := make([]string, len(list.Tools))
	for i, tool := range list.Tools {
		names[i] = tool.Name
	}
	for _, want := range []string{
		"list_machines", "describe_machine", "run_machine", "create_session", "get_session",
		"step", "step_back", "reset", "restart", "render_diagram",
	} {
		assert.Contains(t, names, want)
	}
}

func TestServer_Machines(t *testing.T) {
	h := newHarness(t)

	t.Run("List", func(t *testing.T) {
		list := decodeText[[]dto.Summary](t, h.tool("list_machines", nil))
		assert.Len(t, list, len(memory.Builtin()))
	})

	t.Run("Describe", func(t *testing.T) {
		res := h.tool("describe_machine", map[string]any{"machine_id": "busy-beaver-2"})
		require.False(t, res.IsError)
		assert.Contains(t, res.Content[0].Text, "| State | Read | Write | Move | Next |")
	})

	t.Run("DescribeUnknown", func(t *testing.T) {
		res := h.tool("describe_machine", map[string]any{"machine_id": "nope"})
		assert.True(t, res.IsError)
	})
}

func TestServer_RunMachine(t *testing.T) {
	h := newHarness(t)

	t.Run("Accept", func(t *testing.T) {
		out := decodeText[RunResponse](t, h.tool("run_machine", map[string]any{"machine_id": "palindrome"}))
		assert.True(t, out.Snapshot.Halted)
		assert.True(t, out.Snapshot.Accepting)
		assert.False(t, out.Limited)
	})

	t.Run("Reject", func(t *testing.T) {
		out := decodeText[RunResponse](t, h.tool("run_machine", map[string]any{"machine_id": "palindrome", "input": "ab"}))
		assert.True(t, out.Snapshot.Halted)
		assert.False(t, out.Snapshot.Accepting)
	})

	t.Run("Limited", func(t *testing.T) {
		out := decodeText[RunResponse](t, h.tool("run_machine", map[string]any{"machine_id": "busy-beaver-2", "max_steps": 2}))
		assert.True(t, out.Limited)
		assert.Equal(t, 2, out.Snapshot.Steps)
	})
}

func TestServer_SessionTools(t *testing.T) {
	h := newHarness(t)

	created := decodeText[SessionResponse](t, h.tool("create_session", map[string]any{
		"machine_id": "busy-beaver-2",
		"session_id": "bb",
	}))
	assert.Equal(t, "bb", created.SessionID)
	assert.Equal(t, "A", created.Snapshot.State)

	stepped := decodeText[SessionResponse](t, h.tool("step", map[string]any{"session_id": "bb", "count": 3}))
	assert.Equal(t, 3, stepped.Snapshot.Steps)
	assert.True(t, stepped.CanStepBack)

	back := decodeText[SessionResponse](t, h.tool("step_back", map[string]any{"session_id": "bb"}))
	assert.Equal(t, 2, back.Snapshot.Steps)

	got := decodeText[SessionResponse](t, h.tool("get_session", map[string]any{"session_id": "bb"}))
	assert.Equal(t, back.Snapshot, got.Snapshot)

	reset := decodeText[SessionResponse](t, h.tool("reset", map[string]any{"session_id": "bb"}))
	assert.Equal(t, "A", reset.Snapshot.State)
	assert.Equal(t, 0, reset.Snapshot.Steps)

	restarted := decodeText[SessionResponse](t, h.tool("restart", map[string]any{"session_id": "bb", "input": "1"}))
	assert.Equal(t, "1", restarted.Input)
	assert.Equal(t, "1", restarted.Snapshot.Tape)

	missing := h.tool("step", map[string]any{"session_id": "none"})
	assert.True(t, missing.IsError)
}

func TestServer_StepBounds(t *testing.T) {
	h := newHarness(t)
	decodeText[SessionResponse](t, h.tool("create_session", map[string]any{
		"machine_id": "busy-beaver-2",
		"session_id": "bb",
	}))

	t.Run("count above limit", func(t *testing.T) {
		res := h.tool("step", map[string]any{"session_id": "bb", "count": DefaultRunLimit + 1})
		assert.True(t, res.IsError)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.srv.handleStep(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "bb", Count: 5})
		require.Error(t, err)
	})

	got := decodeText[SessionResponse](t, h.tool("get_session", map[string]any{"session_id": "bb"}))
	assert.Equal(t, 0, got.Snapshot.Steps)
}

func TestServer_RenderDiagram(t *testing.T) {
	h := newHarness(t)
	decodeText[SessionResponse](t, h.tool("create_session", map[string]any{"machine_id": "busy-beaver-2", "session_id": "bb"}))

	res := h.tool("render_diagram", map[string]any{"session_id": "bb"})
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "graph LR")
	assert.Contains(t, res.Content[0].Text, "class A current")

	res = h.tool("render_diagram", map[string]any{"machine_id": "palindrome", "format": "dot"})
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "digraph")

	assert.True(t, h.tool("render_diagram", map[string]any{}).IsError)
	assert.True(t, h.tool("render_diagram", map[string]any{"machine_id": "palindrome", "format": "png"}).IsError)
}

func TestServer_Resources(t *testing.T) {
	h := newHarness(t)

	var read struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(h.call("resources/read", map[string]any{"uri": machinesURI}), &read))
	require.Len(t, read.Contents, 1)
	var list []dto.Summary
	require.NoError(t, json.Unmarshal([]byte(read.Contents[0].Text), &list))
	assert.Len(t, list, len(memory.Builtin()))

	require.NoError(t, json.Unmarshal(h.call("resources/read", map[string]any{"uri": machinesURI + "/binary-unary"}), &read))
	require.Len(t, read.Contents, 1)
	var meta dto.MachineMetadata
	require.NoError(t, json.Unmarshal([]byte(read.Contents[0].Text), &meta))
	assert.Equal(t, "q0", meta.Start)
}
