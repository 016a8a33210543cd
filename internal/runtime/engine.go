package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/session"
)

// StateObserver is told about every persisted call, with the state as it was
// before and after the call.
type StateObserver func(ctx context.Context, old, new *domain.State)

// Engine ties session serialization, intent resolution and stage execution together.
type Engine struct {
	sessions  *session.Manager
	resolver  *Resolver
	executor  *Executor
	hooks     domain.LifecycleHooks
	observers []StateObserver
	logger    *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks for intent resolution.
// Stage and collaborator hooks are configured on the Executor.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStateObserver registers a callback run after each persisted call.
func WithStateObserver(obs StateObserver) EngineOption {
	return func(e *Engine) {
		if obs != nil {
			e.observers = append(e.observers, obs)
		}
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine.
func NewEngine(sessions *session.Manager, resolver *Resolver, executor *Executor, opts ...EngineOption) *Engine {
	e := &Engine{
		sessions: sessions,
		resolver: resolver,
		executor: executor,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step runs one request against an in-memory state: the message is logged,
// the intent resolved and at most one stage executed.
func (e *Engine) Step(ctx context.Context, s *domain.State, req domain.Request) Resolution {
	if req.HasMessage() {
		s.AppendMessage(domain.RoleUser, req.Message)
	}

	from := s.CurrentStep
	res := e.resolver.Resolve(ctx, s, req)
	e.logger.Debug("intent resolved",
		"session_id", s.SessionID,
		"from", from,
		"intent", res.Intent,
		"target", res.Target,
		"source", res.Source,
	)
	if e.hooks.OnIntentResolved != nil {
		e.hooks.OnIntentResolved(ctx, &domain.IntentEvent{
			EventBase: domain.NewEventBase(domain.EventIntentResolved, s.SessionID),
			From:      from,
			Intent:    res.Intent,
			Target:    res.Target,
			Source:    string(res.Source),
		})
	}

	e.executor.Execute(ctx, s, req, res)
	return res
}

// Handle serializes the request on its session, runs it and persists the result.
// The error return is reserved for store and lock failures.
func (e *Engine) Handle(ctx context.Context, req domain.Request) (*domain.Response, error) {
	if req.SessionID == "" {
		req.SessionID = e.sessions.NewID()
	}

	var before *domain.State
	state, err := e.sessions.Update(ctx, req.SessionID, func(ctx context.Context, s *domain.State) error {
		before = s.Clone()
		e.Step(ctx, s, req)
		return nil
	})
	if err != nil {
		e.logger.Error("request failed", "session_id", req.SessionID, "err", err)
		return nil, err
	}

	for _, obs := range e.observers {
		obs(ctx, before, state)
	}
	return domain.NewResponse(state), nil
}

// State returns the stored state of a session.
func (e *Engine) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Sessions exposes the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
