package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/internal/presentation/graph"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI spec: %w", err)
	}
	return doc, nil
}

// DefaultRunLimit caps POST /sessions/{id}/run when max_steps is absent
// and bounds the step count.
const DefaultRunLimit = 10000

// Server serves machines and sessions over HTTP.
type Server struct {
	Manager *session.Manager
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
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

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a server backed by the session manager.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		Manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for the session manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	return NewServer(manager, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		s.writeRaw(w, "text/yaml", rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		s.writeRaw(w, "text/html", []byte(swaggerHTML))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.ListMachines)
		r.Get("/{machineId}", s.GetMachine)
		r.Get("/{machineId}/diagram", s.GetMachineDiagram)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/step", s.StepSession)
			r.Post("/back", s.StepBackSession)
			r.Post("/reset", s.ResetSession)
			r.Post("/restart", s.RestartSession)
			r.Post("/run", s.RunSession)
			r.Get("/tape", s.GetTape)
			r.Get("/diagram", s.GetSessionDiagram)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Turingviz API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// SessionView is the JSON form of a session.
type SessionView struct {
	ID          string          `json:"id"`
	MachineID   string          `json:"machine_id"`
	Input       string          `json:"input"`
	Snapshot    domain.Snapshot `json:"snapshot"`
	CanStepBack bool            `json:"can_step_back"`
}

// CreateSessionRequest is the body of POST /sessions.
// A nil Input loads the machine's default input.
type CreateSessionRequest struct {
	MachineID string  `json:"machine_id"`
	SessionID string  `json:"session_id,omitempty"`
	Input     *string `json:"input,omitempty"`
}

// RestartRequest is the body of POST /sessions/{id}/restart.
type RestartRequest struct {
	Input *string `json:"input,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "turingviz-http",
		"version":     strings.TrimSpace(turingviz.Version),
		"api_version": apiVersion,
	})
}

// ListMachines handles GET /machines.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	loader := s.Manager.Loader()
	ids, err := loader.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.Summary, 0, len(ids))
	for _, id := range ids {
		def, err := loader.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		out = append(out, dto.Summarize(def))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetMachine handles GET /machines/{machineId}.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "machineId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	def, err := s.Manager.Loader().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromDefinition(def))
}

// GetMachineDiagram handles GET /machines/{machineId}/diagram.
func (s *Server) GetMachineDiagram(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "machineId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	def, err := s.Manager.Loader().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	m, err := turingviz.New(def, turingviz.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeDiagram(w, r, m)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateSession: Invalid request body", "err", err)
		return
	}
	if body.MachineID == "" {
		http.Error(w, "machine_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	input := ""
	if body.Input != nil {
		input = *body.Input
	} else {
		def, err := s.Manager.Loader().Get(ctx, body.MachineID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		input = def.Input
	}

	var (
		sess *domain.Session
		err  error
	)
	if body.SessionID != "" {
		sess, err = s.Manager.CreateWithID(ctx, body.SessionID, body.MachineID, input)
	} else {
		sess, err = s.Manager.Create(ctx, body.MachineID, input)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	m, _, err := s.Manager.Open(ctx, sess.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, newSessionView(sess, m))
}

// GetSession handles GET /sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	m, sess, ok := s.open(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionView(sess, m))
}

// DeleteSession handles DELETE /sessions/{sessionId}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "sessionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Manager.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles POST /sessions/{sessionId}/step.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	var count *int
	if err := queryParam(r, "count", &count); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n := 1
	if count != nil {
		n = *count
	}
	if n < 1 {
		http.Error(w, "count must be positive", http.StatusBadRequest)
		return
	}
	if n > DefaultRunLimit {
		http.Error(w, fmt.Sprintf("count must be at most %d", DefaultRunLimit), http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(ctx context.Context, m *turingviz.Machine) error {
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

// StepBackSession handles POST /sessions/{sessionId}/back.
func (s *Server) StepBackSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, m *turingviz.Machine) error {
		m.StepBack(ctx)
		return nil
	})
}

// ResetSession handles POST /sessions/{sessionId}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, m *turingviz.Machine) error {
		m.Reset(ctx)
		return nil
	})
}

// RestartSession handles POST /sessions/{sessionId}/restart.
// An empty body reloads the session's current input.
func (s *Server) RestartSession(w http.ResponseWriter, r *http.Request) {
	var body RestartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("RestartSession: Invalid request body", "err", err)
			return
		}
	}
	s.mutate(w, r, func(ctx context.Context, m *turingviz.Machine) error {
		input := m.Input()
		if body.Input != nil {
			input = *body.Input
		}
		m.Restart(ctx, input)
		return nil
	})
}

// RunSession handles POST /sessions/{sessionId}/run. It steps without delay
// until the machine halts or max_steps transitions were applied.
func (s *Server) RunSession(w http.ResponseWriter, r *http.Request) {
	var maxSteps *int
	if err := queryParam(r, "max_steps", &maxSteps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := DefaultRunLimit
	if maxSteps != nil {
		limit = *maxSteps
	}
	if limit < 1 {
		http.Error(w, "max_steps must be positive", http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(ctx context.Context, m *turingviz.Machine) error {
		for i := 0; i < limit; i++ {
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

// GetTape handles GET /sessions/{sessionId}/tape.
// center defaults to the head, width to domain.DefaultWindowWidth.
func (s *Server) GetTape(w http.ResponseWriter, r *http.Request) {
	var center, width *int
	if err := queryParam(r, "center", &center); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := queryParam(r, "width", &width); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, _, ok := s.open(w, r)
	if !ok {
		return
	}
	wd := domain.DefaultWindowWidth
	if width != nil {
		wd = *width
	}
	if wd < 1 {
		http.Error(w, "width must be positive", http.StatusBadRequest)
		return
	}
	c := m.Snapshot().Head
	if center != nil {
		c = *center
	}
	s.writeJSON(w, http.StatusOK, m.TapeWindow(c, wd))
}

// GetSessionDiagram handles GET /sessions/{sessionId}/diagram.
func (s *Server) GetSessionDiagram(w http.ResponseWriter, r *http.Request) {
	m, _, ok := s.open(w, r)
	if !ok {
		return
	}
	s.writeDiagram(w, r, m)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	var sessionID *string
	if err := queryParam(r, "session_id", &sessionID); err != nil || sessionID == nil || *sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", *sessionID)
	ch, cancel := s.Streams.Subscribe(*sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", *sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func newSessionView(sess *domain.Session, m *turingviz.Machine) SessionView {
	return SessionView{
		ID:          sess.ID,
		MachineID:   sess.MachineID,
		Input:       sess.Input,
		Snapshot:    m.Snapshot(),
		CanStepBack: m.CanStepBack(),
	}
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) (*turingviz.Machine, *domain.Session, bool) {
	id, err := pathParam(r, "sessionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	m, sess, err := s.Manager.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, nil, false
	}
	return m, sess, true
}

// mutate applies fn to the session machine, persists it and broadcasts
// the resulting diff to SSE subscribers.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, *turingviz.Machine) error) {
	id, err := pathParam(r, "sessionId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		before, after domain.Snapshot
		canStepBack   bool
	)
	sess, err := s.Manager.Update(r.Context(), id, func(ctx context.Context, m *turingviz.Machine) error {
		before = m.Snapshot()
		if err := fn(ctx, m); err != nil {
			return err
		}
		after = m.Snapshot()
		canStepBack = m.CanStepBack()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if diff := domain.Diff(id, &before, &after); diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(payload))
		} else {
			s.logger.Error("Failed to marshal diff", "session_id", id, "err", err)
		}
	}

	s.writeJSON(w, http.StatusOK, SessionView{
		ID:          sess.ID,
		MachineID:   sess.MachineID,
		Input:       sess.Input,
		Snapshot:    after,
		CanStepBack: canStepBack,
	})
}

func (s *Server) writeDiagram(w http.ResponseWriter, r *http.Request, m *turingviz.Machine) {
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := graph.FormatSVG
	if format != nil {
		parsed, err := graph.ParseFormat(*format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f = parsed
	}

	out, err := graph.Render(r.Context(), m, f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Write(out)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeRaw(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("response write failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), code)
}

// StatusCode maps engine errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrMachineNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case isDefinitionError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var definitionErrors = []error{
	domain.ErrInvalidTransitionTarget,
	domain.ErrUnknownState,
	domain.ErrUnknownStartState,
	domain.ErrUnknownAcceptState,
	domain.ErrInvalidMove,
	domain.ErrUnknownSymbol,
	domain.ErrDuplicateState,
	domain.ErrEmptyDefinition,
}

func isDefinitionError(err error) bool {
	for _, target := range definitionErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
