package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/internal/presentation/graph"
	"github.com/aretw0/turingviz/internal/presentation/tui"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// DefaultRunLimit caps run_machine when max_steps is absent and bounds
// the step tool count.
const DefaultRunLimit = 10000

const (
	machinesURI        = "turingviz://machines"
	machineURITemplate = "turingviz://machines/{id}"
)

// SessionResponse is the structured result of every session tool.
type SessionResponse struct {
	SessionID   string          `json:"session_id" jsonschema_description:"Identifier to pass to subsequent session tools"`
	MachineID   string          `json:"machine_id" jsonschema_description:"The machine definition driving the session"`
	Input       string          `json:"input" jsonschema_description:"The tape input the session was loaded with"`
	Snapshot    domain.Snapshot `json:"snapshot" jsonschema_description:"The machine configuration after the call"`
	CanStepBack bool            `json:"can_step_back" jsonschema_description:"Whether step_back can undo a transition"`
}

// RunResponse is the structured result of run_machine.
type RunResponse struct {
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"The final machine configuration"`
	Limited  bool            `json:"limited" jsonschema_description:"True when max_steps stopped the run before a halt"`
}

// RunArgs are the arguments of run_machine.
type RunArgs struct {
	MachineID string  `json:"machine_id"`
	Input     *string `json:"input,omitempty"`
	MaxSteps  int     `json:"max_steps,omitempty"`
}

// CreateArgs are the arguments of create_session.
type CreateArgs struct {
	MachineID string  `json:"machine_id"`
	SessionID string  `json:"session_id,omitempty"`
	Input     *string `json:"input,omitempty"`
}

// SessionArgs address an existing session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count,omitempty"`
	Input     string `json:"input,omitempty"`
}

// Server exposes machines and sessions as an MCP server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("turingviz-mcp", strings.TrimSpace(turingviz.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_machines
	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the available Turing machine definitions."),
	), s.handleListMachines)

	// TOOL: describe_machine
	s.mcpServer.AddTool(mcp.NewTool("describe_machine",
		mcp.WithDescription("Describe a machine definition as markdown, including its transition table."),
		mcp.WithString("machine_id", mcp.Required(), mcp.Description("The machine ID")),
	), s.handleDescribeMachine)

	// TOOL: run_machine
	s.mcpServer.AddTool(mcp.NewTool("run_machine",
		mcp.WithDescription("Run a machine on an input until it halts, without creating a session."),
		mcp.WithString("machine_id", mcp.Required(), mcp.Description("The machine ID")),
		mcp.WithString("input", mcp.Description("Tape input (defaults to the machine's own input)")),
		mcp.WithNumber("max_steps", mcp.Description("Upper bound on applied transitions")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRunMachine))

	// TOOL: create_session
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Load a machine into a new stepping session."),
		mcp.WithString("machine_id", mcp.Required(), mcp.Description("The machine ID")),
		mcp.WithString("session_id", mcp.Description("Caller-chosen session ID (optional)")),
		mcp.WithString("input", mcp.Description("Tape input (defaults to the machine's own input)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreateSession))

	// TOOL: get_session
	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Read the current configuration of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))

	// TOOL: step
	s.mcpServer.AddTool(mcp.NewTool("step",
		mcp.WithDescription("Apply transitions to a session. Stops early when the machine halts."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
		mcp.WithNumber("count", mcp.Description("Number of steps (default 1, at most 10000)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	// TOOL: step_back
	s.mcpServer.AddTool(mcp.NewTool("step_back",
		mcp.WithDescription("Undo the last transition of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStepBack))

	// TOOL: reset
	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Return a session to its start state. The tape keeps what was written."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	// TOOL: restart
	s.mcpServer.AddTool(mcp.NewTool("restart",
		mcp.WithDescription("Reload a session tape with a new input and return to the start state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
		mcp.WithString("input", mcp.Description("New tape input")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRestart))

	// TOOL: render_diagram
	s.mcpServer.AddTool(mcp.NewTool("render_diagram",
		mcp.WithDescription("Render the state diagram of a machine, or of a session with its current state highlighted."),
		mcp.WithString("machine_id", mcp.Description("The machine ID (used when session_id is absent)")),
		mcp.WithString("session_id", mcp.Description("The session ID")),
		mcp.WithString("format", mcp.Description("mermaid (default), dot, json or svg"),
			mcp.Enum(string(graph.FormatMermaid), string(graph.FormatDOT), string(graph.FormatJSON), string(graph.FormatSVG))),
	), s.handleRenderDiagram)
}

func (s *Server) handleListMachines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.summaries(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(summaries)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDescribeMachine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("machine_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := s.manager.Loader().Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(tui.Describe(def)), nil
}

func (s *Server) handleRunMachine(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (RunResponse, error) {
	def, err := s.manager.Loader().Get(ctx, args.MachineID)
	if err != nil {
		return RunResponse{}, err
	}
	m, err := turingviz.New(def, turingviz.WithLogger(s.logger), turingviz.WithTrace(false))
	if err != nil {
		return RunResponse{}, fmt.Errorf("invalid machine: %w", err)
	}
	if args.Input != nil {
		m.Restart(ctx, *args.Input)
	}

	limit := args.MaxSteps
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return RunResponse{}, err
		}
		if !m.Step(ctx) {
			break
		}
	}
	return RunResponse{Snapshot: m.Snapshot(), Limited: !m.Halted()}, nil
}

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest, args CreateArgs) (SessionResponse, error) {
	input := ""
	if args.Input != nil {
		input = *args.Input
	} else {
		def, err := s.manager.Loader().Get(ctx, args.MachineID)
		if err != nil {
			return SessionResponse{}, err
		}
		input = def.Input
	}

	var (
		sess *domain.Session
		err  error
	)
	if args.SessionID != "" {
		sess, err = s.manager.CreateWithID(ctx, args.SessionID, args.MachineID, input)
	} else {
		sess, err = s.manager.Create(ctx, args.MachineID, input)
	}
	if err != nil {
		return SessionResponse{}, err
	}
	return s.read(ctx, sess.ID)
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	return s.read(ctx, args.SessionID)
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	n := args.Count
	if n <= 0 {
		n = 1
	}
	if n > DefaultRunLimit {
		return SessionResponse{}, fmt.Errorf("count must be at most %d", DefaultRunLimit)
	}
	return s.update(ctx, args.SessionID, func(ctx context.Context, m *turingviz.Machine) error {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !m.Step(ctx) {
				break
			}
		}
		return nil
	})
}

func (s *Server) handleStepBack(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, m *turingviz.Machine) error {
		m.StepBack(ctx)
		return nil
	})
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, m *turingviz.Machine) error {
		m.Reset(ctx)
		return nil
	})
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, m *turingviz.Machine) error {
		m.Restart(ctx, args.Input)
		return nil
	})
}

func (s *Server) handleRenderDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := graph.ParseFormat(request.GetString("format", string(graph.FormatMermaid)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var m *turingviz.Machine
	if sessionID := request.GetString("session_id", ""); sessionID != "" {
		m, _, err = s.manager.Open(ctx, sessionID)
	} else if machineID := request.GetString("machine_id", ""); machineID != "" {
		m, err = s.machine(ctx, machineID)
	} else {
		return mcp.NewToolResultError("either session_id or machine_id is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := graph.Render(ctx, m, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: turingviz://machines
	s.mcpServer.AddResource(mcp.NewResource(machinesURI, "Machine catalog",
		mcp.WithResourceDescription("Summaries of every loadable machine"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := s.summaries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list machines: %w", err)
		}
		jsonBytes, _ := json.Marshal(summaries)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      machinesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: turingviz://machines/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(machineURITemplate, "Machine definition",
		mcp.WithTemplateDescription("A machine definition in its file form"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		id := strings.TrimPrefix(uri, machinesURI+"/")
		if id == "" || id == uri {
			return nil, fmt.Errorf("invalid machine URI %q", uri)
		}
		def, err := s.manager.Loader().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		jsonBytes, err := json.MarshalIndent(dto.FromDefinition(def), "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// -- Helpers --

func (s *Server) summaries(ctx context.Context) ([]dto.Summary, error) {
	loader := s.manager.Loader()
	ids, err := loader.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Summary, 0, len(ids))
	for _, id := range ids {
		def, err := loader.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.Summarize(def))
	}
	return out, nil
}

func (s *Server) machine(ctx context.Context, id string) (*turingviz.Machine, error) {
	def, err := s.manager.Loader().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return turingviz.New(def, turingviz.WithLogger(s.logger))
}

func (s *Server) read(ctx context.Context, sessionID string) (SessionResponse, error) {
	m, sess, err := s.manager.Open(ctx, sessionID)
	if err != nil {
		return SessionResponse{}, err
	}
	return newSessionResponse(sess, m), nil
}

func (s *Server) update(ctx context.Context, sessionID string, fn func(context.Context, *turingviz.Machine) error) (SessionResponse, error) {
	var resp SessionResponse
	sess, err := s.manager.Update(ctx, sessionID, func(ctx context.Context, m *turingviz.Machine) error {
		if err := fn(ctx, m); err != nil {
			return err
		}
		resp.Snapshot = m.Snapshot()
		resp.CanStepBack = m.CanStepBack()
		return nil
	})
	if err != nil {
		return SessionResponse{}, err
	}
	resp.SessionID = sess.ID
	resp.MachineID = sess.MachineID
	resp.Input = sess.Input
	return resp, nil
}

func newSessionResponse(sess *domain.Session, m *turingviz.Machine) SessionResponse {
	return SessionResponse{
		SessionID:   sess.ID,
		MachineID:   sess.MachineID,
		Input:       sess.Input,
		Snapshot:    m.Snapshot(),
		CanStepBack: m.CanStepBack(),
	}
}
