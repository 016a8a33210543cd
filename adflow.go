package adflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/internal/runtime"
	"github.com/aretw0/adflow/pkg/adapters/memory"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
	"github.com/aretw0/adflow/pkg/session"
)

// StateObserver is called after every persisted call with the state before and after it.
type StateObserver func(ctx context.Context, old, new *domain.State)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and implements ports.Orchestrator.
type Engine struct {
	runtime *runtime.Engine

	store      ports.StateStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	idGen      func() string
	hooks      domain.LifecycleHooks
	observers  []StateObserver
	triggers   []string
	imageCount int
	logger     *slog.Logger
}

var _ ports.Orchestrator = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the session store (default: in-memory).
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithLocker adds a distributed lock around each session update.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithIDGenerator overrides how new session IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.idGen = fn }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithStateObserver registers a callback run after every persisted call.
func WithStateObserver(obs StateObserver) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observers = append(e.observers, obs)
		}
	}
}

// WithCampaignTriggers replaces the phrases that jump to campaign authentication.
func WithCampaignTriggers(phrases ...string) Option {
	return func(e *Engine) { e.triggers = phrases }
}

// WithImageCount sets how many images generate_images asks for by default.
func WithImageCount(n int) Option {
	return func(e *Engine) { e.imageCount = n }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New builds an Engine around the given collaborators.
func New(collab ports.Collaborators, opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
		if e.lockTTL > 0 {
			sessionOpts = append(sessionOpts, session.WithLockTTL(e.lockTTL))
		}
	}
	if e.idGen != nil {
		sessionOpts = append(sessionOpts, session.WithIDGenerator(e.idGen))
	}

	executorOpts := []runtime.ExecutorOption{
		runtime.WithHooks(e.hooks),
		runtime.WithExecutorLogger(e.logger),
	}
	if e.imageCount > 0 {
		executorOpts = append(executorOpts, runtime.WithImageCount(e.imageCount))
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	}
	for _, obs := range e.observers {
		engineOpts = append(engineOpts, runtime.WithStateObserver(runtime.StateObserver(obs)))
	}

	e.runtime = runtime.NewEngine(
		session.NewManager(e.store, sessionOpts...),
		runtime.NewResolver(collab.Classifier,
			runtime.WithTriggers(e.triggers),
			runtime.WithResolverLogger(e.logger),
		),
		runtime.NewExecutor(collab, executorOpts...),
		engineOpts...,
	)
	return e
}

// Handle runs one request against its session and returns the updated state.
// The error return is reserved for store and lock failures.
func (e *Engine) Handle(ctx context.Context, req domain.Request) (*domain.Response, error) {
	return e.runtime.Handle(ctx, req)
}

// State returns the stored state of a session, or domain.ErrSessionNotFound.
func (e *Engine) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.runtime.State(ctx, sessionID)
}

// Sessions exposes the session manager, e.g. to list or delete sessions.
func (e *Engine) Sessions() *session.Manager {
	return e.runtime.Sessions()
}

// Store returns the configured state store.
func (e *Engine) Store() ports.StateStore {
	return e.store
}
