package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// ErrNoCollaborator is wrapped when a stage needs a generator that was not configured.
var ErrNoCollaborator = errors.New("collaborator not configured")

// DefaultImageCount is how many visuals are requested when the caller does not say.
const DefaultImageCount = 2

// outcome tells the executor how a node body ended.
type outcome int

const (
	outcomeDone   outcome = iota // payload mutated, counts as an iteration
	outcomeCached                // answered from the idempotency cache
	outcomeNoop                  // nothing to do yet, e.g. an unparsable selection
)

// stepInput is what a node sees of the current request.
type stepInput struct {
	req      domain.Request
	res      Resolution
	message  string
	feedback string // the message, when it counts as feedback for this stage
}

// node is the contract every stage obeys: a precondition naming what is
// missing, and a body that calls at most one generator (publish excepted).
type node struct {
	check func(s *domain.State, in *stepInput) string
	run   func(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error)
}

// Executor runs exactly one stage per call.
type Executor struct {
	collab    ports.Collaborators
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	numImages int
	nodes     map[domain.Stage]node
}

// ExecutorOption configures the Executor.
type ExecutorOption func(*Executor)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) ExecutorOption {
	return func(x *Executor) {
		x.hooks = hooks
	}
}

// WithExecutorLogger sets the executor logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(x *Executor) {
		x.logger = logger
	}
}

// WithImageCount sets the default number of generated images.
func WithImageCount(n int) ExecutorOption {
	return func(x *Executor) {
		if n > 0 {
			x.numImages = n
		}
	}
}

// NewExecutor creates an Executor over the given generators.
func NewExecutor(collab ports.Collaborators, opts ...ExecutorOption) *Executor {
	x := &Executor{
		collab:    collab,
		logger:    logging.NewNop(),
		numImages: DefaultImageCount,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.nodes = stageNodes()
	return x
}

func stageNodes() map[domain.Stage]node {
	nodes := make(map[domain.Stage]node)
	for _, set := range []map[domain.Stage]node{contentNodes(), mediaNodes(), campaignNodes()} {
		for k, v := range set {
			nodes[k] = v
		}
	}
	nodes[domain.StageComplete] = node{run: runComplete}
	nodes[domain.StageConfirmRestart] = node{run: func(context.Context, *Executor, *domain.State, *stepInput) (outcome, error) {
		return outcomeNoop, nil
	}}
	return nodes
}

// Has reports whether a node is registered for stage.
func (x *Executor) Has(stage domain.Stage) bool {
	_, ok := x.nodes[stage]
	return ok
}

// Execute applies a resolution to the state. It never returns an error:
// failures are recorded in State.Error.
func (x *Executor) Execute(ctx context.Context, s *domain.State, req domain.Request, res Resolution) {
	switch res.Intent {
	case domain.IntentNewSubject, domain.IntentRestartConfirmed, domain.IntentRestartDeclined:
		if !controlSource(res) {
			x.logger.Warn("control intent not produced by the restart rules, ignoring",
				"session_id", s.SessionID, "step", s.CurrentStep, "intent", res.Intent, "source", res.Source)
			return
		}
	}

	s.NavigationIntent = res.Intent

	switch res.Intent {
	case domain.IntentNewSubject:
		enterRestart(s, res.URL)
		return
	case domain.IntentRestartConfirmed:
		confirmRestart(s)
		return
	case domain.IntentRestartDeclined:
		declineRestart(s)
		return
	}

	if res.Terminates() {
		x.logger.Debug("intent routes nowhere, waiting for next message",
			"session_id", s.SessionID, "step", s.CurrentStep, "intent", res.Intent)
		return
	}

	n, ok := x.nodes[res.Target]
	if !ok {
		x.logger.Warn("no node for stage", "session_id", s.SessionID, "stage", res.Target)
		return
	}

	in := &stepInput{req: req, res: res, message: req.Message}
	if req.Message != "" && res.Intent != domain.IntentNext &&
		(res.Source == SourceClassifier || res.Source == SourceExplicit) {
		in.feedback = req.Message
	}

	s.CurrentStep = res.Target
	x.emitStageEnter(ctx, s)

	if n.check != nil {
		if missing := n.check(s, in); missing != "" {
			s.SetError(missing)
			x.emitStageLeave(ctx, s, missing, false)
			return
		}
	}

	out, err := n.run(ctx, x, s, in)
	if err != nil {
		s.SetError(err.Error())
		x.logger.Warn("stage failed", "session_id", s.SessionID, "stage", res.Target, "err", err)
		x.emitStageLeave(ctx, s, err.Error(), false)
		return
	}

	switch out {
	case outcomeDone:
		s.ClearError()
		s.Bump(res.Target)
	case outcomeCached:
		s.ClearError()
	}
	x.emitStageLeave(ctx, s, "", out == outcomeCached)
}

// controlSource reports whether a restart control intent came from the rule
// allowed to produce it: a mid-pipeline URL enters confirm_restart, and only
// a yes/no answer inside it leaves.
func controlSource(res Resolution) bool {
	switch res.Intent {
	case domain.IntentNewSubject:
		return res.Source == SourceURL && res.URL != ""
	case domain.IntentRestartConfirmed, domain.IntentRestartDeclined:
		return res.Source == SourceRestart
	}
	return true
}

// call wraps one generator invocation with collaborator events.
func (x *Executor) call(ctx context.Context, s *domain.State, name string, fn func(context.Context) error) error {
	ev := &domain.CollaboratorEvent{
		EventBase:    domain.NewEventBase(domain.EventCollaboratorCall, s.SessionID),
		Stage:        s.CurrentStep,
		Collaborator: name,
	}
	if x.hooks.OnCollaboratorCall != nil {
		x.hooks.OnCollaboratorCall(ctx, ev)
	}

	start := time.Now()
	err := fn(ctx)

	if x.hooks.OnCollaboratorReturn != nil {
		ret := *ev
		ret.EventBase = domain.NewEventBase(domain.EventCollaboratorReturn, s.SessionID)
		ret.Duration = time.Since(start)
		ret.IsError = err != nil
		x.hooks.OnCollaboratorReturn(ctx, &ret)
	}
	return err
}

func missing(name string) error {
	return fmt.Errorf("%s: %w", name, ErrNoCollaborator)
}

func (x *Executor) emitStageEnter(ctx context.Context, s *domain.State) {
	if x.hooks.OnStageEnter == nil {
		return
	}
	x.hooks.OnStageEnter(ctx, &domain.StageEvent{
		EventBase: domain.NewEventBase(domain.EventStageEnter, s.SessionID),
		Stage:     s.CurrentStep,
	})
}

func (x *Executor) emitStageLeave(ctx context.Context, s *domain.State, errMsg string, cached bool) {
	if x.hooks.OnStageLeave == nil {
		return
	}
	x.hooks.OnStageLeave(ctx, &domain.StageEvent{
		EventBase: domain.NewEventBase(domain.EventStageLeave, s.SessionID),
		Stage:     s.CurrentStep,
		Error:     errMsg,
		Cached:    cached,
	})
}

func runComplete(context.Context, *Executor, *domain.State, *stepInput) (outcome, error) {
	return outcomeDone, nil
}
