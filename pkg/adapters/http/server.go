// Package http exposes the orchestrator over a JSON API with server-sent
// state diffs.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/adflow/internal/dto"
	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
	"github.com/aretw0/adflow/pkg/runner"
)

// maxBodyBytes bounds a request body; messages are further bounded by the sanitizer.
const maxBodyBytes = 1 << 20

// Server serves the workflow API.
type Server struct {
	engine  ports.Orchestrator
	streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
	version string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStreams shares a StreamManager, typically one the engine observes into.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.streams = sm }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a Server.
func NewServer(engine ports.Orchestrator, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}
	return s
}

// Streams returns the StreamManager the server reads from.
func (s *Server) Streams() *StreamManager { return s.streams }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/workflow", func(r chi.Router) {
		r.Post("/chat", s.Chat)
		r.Get("/stages", s.ListStages)
		r.Get("/state/{session_id}", s.GetState)
		r.Post("/{stage}", s.RunStage)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Chat handles POST /api/workflow/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if !req.HasMessage() {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.handle(w, r, req)
}

// RunStage handles POST /api/workflow/{stage}: the stage is the explicit intent.
func (s *Server) RunStage(w http.ResponseWriter, r *http.Request) {
	stage, err := domain.ParseStage(chi.URLParam(r, "stage"))
	if err != nil || stage.Position() < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown stage %q", chi.URLParam(r, "stage")))
		return
	}
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	req.ExplicitIntent = string(stage)
	s.handle(w, r, req)
}

// GetState handles GET /api/workflow/state/{session_id}.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	state, err := s.engine.State(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.logger.Error("state lookup failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, domain.NewResponse(state))
}

type stageInfo struct {
	Name     domain.Stage `json:"name"`
	Position int          `json:"position"`
	Next     domain.Stage `json:"next"`
}

// ListStages handles GET /api/workflow/stages.
func (s *Server) ListStages(w http.ResponseWriter, r *http.Request) {
	out := make([]stageInfo, 0, len(domain.ForwardOrder))
	for i, st := range domain.ForwardOrder {
		out = append(out, stageInfo{Name: st, Position: i, Next: st.Next()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "adflow-http",
		"version": strings.TrimSpace(s.version),
	})
}

// decode reads a JSON object body (possibly empty) into a Request and
// sanitizes its message. It writes the error response itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (domain.Request, bool) {
	payload := map[string]any{}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload)
	if err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return domain.Request{}, false
		}
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return domain.Request{}, false
	}

	req, err := dto.DecodeRequest(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}

	if req.Message != "" {
		clean, err := runner.SanitizeInput(req.Message)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, domain.ErrInputTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			s.logger.Warn("input rejected", "err", err, "size", len(req.Message))
			writeError(w, status, fmt.Sprintf("invalid input: %v", err))
			return req, false
		}
		req.Message = clean
	}
	return req, true
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request, req domain.Request) {
	resp, err := s.engine.Handle(r.Context(), req)
	if err != nil {
		s.logger.Error("request failed", "session_id", req.SessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}
	// Stage failures are part of the payload, not an HTTP error.
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
