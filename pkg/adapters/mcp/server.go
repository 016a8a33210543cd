// Package mcp exposes the orchestrator as a Model Context Protocol server.
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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
	"github.com/aretw0/adflow/pkg/runner"
)

const (
	stagesURI      = "adflow://stages"
	sessionURIBase = "adflow://sessions/"
)

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	Stage     string        `json:"stage"`
	Fields    domain.Fields `json:"fields"`
}

// GetStateArgs are the arguments of the get_state tool.
type GetStateArgs struct {
	SessionID string `json:"session_id"`
}

// StageInfo describes one stage of the forward order.
type StageInfo struct {
	Name     domain.Stage `json:"name"`
	Position int          `json:"position"`
	Next     domain.Stage `json:"next"`
}

// Server wraps the orchestrator and exposes it as an MCP Server.
type Server struct {
	engine    ports.Orchestrator
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Orchestrator, version string, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("adflow-mcp", strings.TrimSpace(version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer.AddTools(s.tools()...)
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("send_message",
				mcp.WithDescription("Send a chat message to a campaign session. Runs at most one stage and returns the updated state. Stage failures are reported in the error field."),
				mcp.WithString("session_id", mcp.Description("Session to continue; omitted starts a new session")),
				mcp.WithString("message", mcp.Description("User message (a URL, feedback, a choice, or a navigation request)")),
				mcp.WithString("stage", mcp.Description("Run this stage directly instead of interpreting the message")),
				mcp.WithObject("fields", mcp.Description("Stage inputs: source_url, subject_index, script_index, num_images, avatar_id, access_token, account_id, media_id")),
				mcp.WithOutputSchema[domain.Response](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleSendMessage),
		},
		{
			Tool: mcp.NewTool("get_state",
				mcp.WithDescription("Return the stored state of a session."),
				mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
				mcp.WithOutputSchema[domain.Response](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleGetState),
		},
		{
			Tool: mcp.NewTool("list_stages",
				mcp.WithDescription("List the workflow stages in forward order."),
			),
			Handler: s.handleListStages,
		},
	}
}

func (s *Server) handleSendMessage(ctx context.Context, _ mcp.CallToolRequest, args SendMessageArgs) (*domain.Response, error) {
	req := domain.Request{
		SessionID: args.SessionID,
		Fields:    args.Fields,
	}
	if args.Stage != "" {
		stage, err := domain.ParseStage(args.Stage)
		if err != nil {
			return nil, err
		}
		req.ExplicitIntent = string(stage)
	}
	if args.Message != "" {
		clean, err := runner.SanitizeInput(args.Message)
		if err != nil {
			s.logger.Warn("MCP input rejected", "err", err, "size", len(args.Message))
			return nil, fmt.Errorf("input rejected: %w", err)
		}
		req.Message = clean
	}
	if !req.HasMessage() && req.ExplicitIntent == "" {
		return nil, errors.New("message or stage is required")
	}

	resp, err := s.engine.Handle(ctx, req)
	if err != nil {
		s.logger.Error("MCP send_message failed", "session_id", req.SessionID, "err", err)
		return nil, fmt.Errorf("send message failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args GetStateArgs) (*domain.Response, error) {
	if args.SessionID == "" {
		return nil, errors.New("session_id is required")
	}
	state, err := s.engine.State(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	return domain.NewResponse(state), nil
}

func (s *Server) handleListStages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(stageList())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stageList() []StageInfo {
	out := make([]StageInfo, 0, len(domain.ForwardOrder))
	for i, st := range domain.ForwardOrder {
		out = append(out, StageInfo{Name: st, Position: i, Next: st.Next()})
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(stagesURI, "Workflow stages",
		mcp.WithResourceDescription("The stages of the campaign workflow in forward order"),
		mcp.WithMIMEType("application/json"),
	), s.readStages)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURIBase+"{session_id}", "Session state",
		mcp.WithTemplateDescription("The stored state of one session"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readSession)
}

func (s *Server) readStages(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(stageList())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: stagesURI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) readSession(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, sessionURIBase)
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid session resource %q", uri)
	}
	state, err := s.engine.State(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	data, err := json.Marshal(state.Redacted())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
