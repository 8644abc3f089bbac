package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/aretw0/turingviz/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader())
	srv := NewServer(mgr)
	return srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler, req CreateSessionRequest) SessionView {
	t.Helper()
	w := do(t, h, http.MethodPost, "/sessions", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[SessionView](t, w)
}

func TestServer_HealthAndInfo(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "turingviz-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.NotEmpty(t, info["version"])
}

func TestServer_OpenAPI(t *testing.T) {
	_, h := newTestServer(t)

	doc, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.NotNil(t, doc.Paths.Find("/sessions/{sessionId}/step"))

	w := do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodGet, "/swagger", nil)
	assert.Contains(t, w.Body.String(), "SwaggerUIBundle")
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestServer_RawWriteFailureLogged(t *testing.T) {
	for _, path := range []string{"/openapi.yaml", "/swagger"} {
		t.Run(path, func(t *testing.T) {
			var logs bytes.Buffer
			mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader())
			h := NewHandler(mgr, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

			h.ServeHTTP(failingWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Contains(t, logs.String(), "response write failed")
			assert.Contains(t, logs.String(), "connection reset")
		})
	}
}

func TestServer_CORS(t *testing.T) {
	_, h := newTestServer(t)
	w := do(t, h, http.MethodOptions, "/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Machines(t *testing.T) {
	_, h := newTestServer(t)

	t.Run("List", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/machines", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]dto.Summary](t, w)
		require.Len(t, list, len(memory.Builtin()))
		ids := make([]string, len(list))
		for i, s := range list {
			ids[i] = s.ID
		}
		assert.Contains(t, ids, "busy-beaver-2")
	})

	t.Run("Get", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/machines/palindrome", nil)
		require.Equal(t, http.StatusOK, w.Code)
		meta := decode[dto.MachineMetadata](t, w)
		assert.Equal(t, "start", meta.Start)
		assert.Equal(t, "abba", meta.Input)
	})

	t.Run("NotFound", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/machines/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Diagram", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/machines/busy-beaver-2/diagram", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(strings.TrimSpace(w.Body.String()), "<svg"))
	})
}

func TestServer_SessionLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	sv := createSession(t, h, CreateSessionRequest{MachineID: "busy-beaver-2", SessionID: "bb"})
	assert.Equal(t, "bb", sv.ID)
	assert.Equal(t, "A", sv.Snapshot.State)
	assert.False(t, sv.CanStepBack)

	w := do(t, h, http.MethodPost, "/sessions/bb/step", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sv = decode[SessionView](t, w)
	assert.Equal(t, "B", sv.Snapshot.State)
	assert.Equal(t, 1, sv.Snapshot.Steps)
	assert.True(t, sv.CanStepBack)

	w = do(t, h, http.MethodPost, "/sessions/bb/step?count=2", nil)
	sv = decode[SessionView](t, w)
	assert.Equal(t, 3, sv.Snapshot.Steps)

	w = do(t, h, http.MethodPost, "/sessions/bb/back", nil)
	sv = decode[SessionView](t, w)
	assert.Equal(t, 2, sv.Snapshot.Steps)

	// Persisted across requests
	w = do(t, h, http.MethodGet, "/sessions/bb", nil)
	sv = decode[SessionView](t, w)
	assert.Equal(t, 2, sv.Snapshot.Steps)

	w = do(t, h, http.MethodPost, "/sessions/bb/run", nil)
	sv = decode[SessionView](t, w)
	assert.Equal(t, 6, sv.Snapshot.Steps)
	assert.True(t, sv.Snapshot.Accepting)
	assert.Equal(t, "1111", sv.Snapshot.Tape)

	w = do(t, h, http.MethodPost, "/sessions/bb/reset", nil)
	sv = decode[SessionView](t, w)
	assert.Equal(t, "A", sv.Snapshot.State)
	assert.Equal(t, "1111", sv.Snapshot.Tape, "reset keeps the tape")

	w = do(t, h, http.MethodPost, "/sessions/bb/restart", nil)
	sv = decode[SessionView](t, w)
	assert.Equal(t, "", sv.Snapshot.Tape)
	assert.Equal(t, 0, sv.Snapshot.Steps)

	w = do(t, h, http.MethodGet, "/sessions", nil)
	assert.Equal(t, []string{"bb"}, decode[[]string](t, w))

	w = do(t, h, http.MethodDelete, "/sessions/bb", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/bb", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateSession(t *testing.T) {
	_, h := newTestServer(t)

	t.Run("DefaultInput", func(t *testing.T) {
		sv := createSession(t, h, CreateSessionRequest{MachineID: "palindrome"})
		assert.NotEmpty(t, sv.ID)
		assert.Equal(t, "abba", sv.Input)
		assert.Equal(t, "abba", sv.Snapshot.Tape)
	})

	t.Run("ExplicitInput", func(t *testing.T) {
		in := "aba"
		sv := createSession(t, h, CreateSessionRequest{MachineID: "palindrome", Input: &in})
		assert.Equal(t, "aba", sv.Snapshot.Tape)
	})

	t.Run("Restart", func(t *testing.T) {
		sv := createSession(t, h, CreateSessionRequest{MachineID: "palindrome", SessionID: "p"})
		w := do(t, h, http.MethodPost, "/sessions/p/restart", RestartRequest{Input: ptr("bb")})
		require.Equal(t, http.StatusOK, w.Code)
		sv = decode[SessionView](t, w)
		assert.Equal(t, "bb", sv.Input)
		assert.Equal(t, "bb", sv.Snapshot.Tape)
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name string
			body string
			code int
		}{
			{"Malformed", "{", http.StatusBadRequest},
			{"MissingMachine", `{}`, http.StatusBadRequest},
			{"UnknownMachine", `{"machine_id":"nope"}`, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(tt.body))
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				assert.Equal(t, tt.code, w.Code)
			})
		}
	})
}

func TestServer_BadQuery(t *testing.T) {
	_, h := newTestServer(t)
	createSession(t, h, CreateSessionRequest{MachineID: "busy-beaver-2", SessionID: "bb"})

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions/bb/step?count=x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions/bb/step?count=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/sessions/bb/tape?width=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/sessions/bb/diagram?format=png", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/sessions/none/step", nil).Code)
}

func TestServer_StepBounds(t *testing.T) {
	_, h := newTestServer(t)
	createSession(t, h, CreateSessionRequest{MachineID: "busy-beaver-2", SessionID: "bb"})

	t.Run("count above limit", func(t *testing.T) {
		w := do(t, h, http.MethodPost, fmt.Sprintf("/sessions/bb/step?count=%d", DefaultRunLimit+1), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "at most")
	})

	t.Run("cancelled request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/sessions/bb/step?count=5", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	sv := decode[SessionView](t, do(t, h, http.MethodGet, "/sessions/bb", nil))
	assert.Equal(t, 0, sv.Snapshot.Steps)
}

func TestServer_Tape(t *testing.T) {
	_, h := newTestServer(t)
	createSession(t, h, CreateSessionRequest{MachineID: "palindrome", SessionID: "p"})

	w := do(t, h, http.MethodGet, "/sessions/p/tape?center=1&width=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cells := decode[[]view.Cell](t, w)
	require.Len(t, cells, 3)
	assert.Equal(t, 0, cells[0].Index)
	assert.True(t, cells[0].Head)
	assert.Equal(t, domain.Symbol("b"), cells[1].Symbol)

	w = do(t, h, http.MethodGet, "/sessions/p/tape", nil)
	cells = decode[[]view.Cell](t, w)
	assert.Len(t, cells, domain.DefaultWindowWidth)
}

func TestServer_SessionDiagram(t *testing.T) {
	_, h := newTestServer(t)
	createSession(t, h, CreateSessionRequest{MachineID: "busy-beaver-2", SessionID: "bb"})
	do(t, h, http.MethodPost, "/sessions/bb/step", nil)

	t.Run("JSON", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/sessions/bb/diagram?format=json", nil)
		require.Equal(t, http.StatusOK, w.Code)
		d := decode[view.Diagram](t, w)
		require.Len(t, d.Nodes, 3)
		for _, n := range d.Nodes {
			assert.Equal(t, n.ID == "B", n.Current, n.ID)
		}
		active := 0
		for _, e := range d.Edges {
			if e.Active {
				active++
			}
		}
		assert.Equal(t, 1, active, "the rule applied by the last step stays highlighted")
	})

	t.Run("Mermaid", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/sessions/bb/diagram?format=mermaid", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))
	})

	t.Run("DOT", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/sessions/bb/diagram?format=DOT", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "digraph")
	})
}

func TestServer_Metrics(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), memory.NewBuiltinLoader())
	h := NewHandler(mgr, WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "metrics")
	})))
	w := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, "metrics", w.Body.String())

	_, plain := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, plain, http.MethodGet, "/metrics", nil).Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv, h := newTestServer(t)
	createSession(t, h, CreateSessionRequest{MachineID: "busy-beaver-2", SessionID: "sess-1"})

	// 1. Subscribe
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/events?session_id=sess-1", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()
	require.Eventually(t, func() bool { return srv.Streams.Subscribers("sess-1") == 1 }, time.Second, 5*time.Millisecond)

	// 2. Step
	w := do(t, h, http.MethodPost, "/sessions/sess-1/step", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 3. Disconnect and inspect the stream
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SSE handler did not exit")
	}

	body := wSub.Body.String()
	assert.Contains(t, body, "event: ping")

	var diff domain.SnapshotDiff
	idx := strings.Index(body, "data: {")
	require.GreaterOrEqual(t, idx, 0, body)
	line := strings.TrimSpace(strings.SplitN(body[idx+len("data: "):], "\n", 2)[0])
	require.NoError(t, json.Unmarshal([]byte(line), &diff))
	assert.Equal(t, "sess-1", diff.SessionID)
	require.NotNil(t, diff.State)
	assert.Equal(t, "B", *diff.State)
	require.NotNil(t, diff.Steps)
	assert.Equal(t, 1, *diff.Steps)
	assert.Equal(t, 0, srv.Streams.Subscribers("sess-1"))
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	_, h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s")
	for i := 0; i < 20; i++ {
		sm.Broadcast("s", "msg")
	}
	assert.Len(t, ch, 10)
	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("x: %w", domain.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrMachineNotFound), http.StatusNotFound},
		{errors.Join(domain.ErrInvalidMove, domain.ErrUnknownState), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StatusCode(tt.err), tt.err.Error())
	}
}

func ptr[T any](v T) *T {
	return &v
}
