package runtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// ResolutionSource names the rule that produced a Resolution.
type ResolutionSource string

const (
	SourceRestart    ResolutionSource = "restart"
	SourceTrigger    ResolutionSource = "campaign_trigger"
	SourceExplicit   ResolutionSource = "explicit"
	SourceURL        ResolutionSource = "url"
	SourceClassifier ResolutionSource = "classifier"
	SourceDefault    ResolutionSource = "default"
)

// Resolution is the outcome of resolving one request.
type Resolution struct {
	Intent    domain.Intent
	Target    domain.Stage // empty when the intent routes nowhere
	URL       string       // subject URL found in the message, if any
	Reasoning string
	Source    ResolutionSource
}

// Terminates reports whether the resolution leaves the state untouched.
func (r Resolution) Terminates() bool { return r.Target == "" }

// Resolver turns a message into one navigation symbol.
// Every rule but the classifier fallback is deterministic.
type Resolver struct {
	classifier ports.IntentClassifier
	triggers   []string
	logger     *slog.Logger
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithTriggers replaces the campaign-initiation phrases.
func WithTriggers(triggers []string) ResolverOption {
	return func(r *Resolver) {
		if len(triggers) > 0 {
			r.triggers = triggers
		}
	}
}

// WithResolverLogger sets the logger used for classifier failures.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. A nil classifier makes the fallback answer "stay".
func NewResolver(classifier ports.IntentClassifier, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		classifier: classifier,
		triggers:   DefaultCampaignTriggers,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies the rules in precedence order:
//
//  1. a pending restart only accepts a yes/no answer;
//  2. a campaign phrase jumps to authenticate_campaign;
//  3. an explicit intent is taken as given;
//  4. a URL is the source reference at ingest and a new subject elsewhere;
//  5. the classifier decides, any failure meaning "stay".
//
// The symbol is then expanded through Route.
func (r *Resolver) Resolve(ctx context.Context, state *domain.State, req domain.Request) Resolution {
	msg := strings.TrimSpace(req.Message)
	current := state.CurrentStep

	// Ahead of the campaign trigger: confirm_restart is only left via yes/no.
	if current == domain.StageConfirmRestart {
		return r.resolveRestart(state, msg)
	}

	if msg != "" && matchesTrigger(msg, r.triggers) {
		return r.expand(current, Resolution{
			Intent: domain.IntentFor(domain.StageAuthenticateCampaign),
			Source: SourceTrigger,
		})
	}

	if raw := strings.TrimSpace(req.ExplicitIntent); raw != "" {
		intent := domain.Intent(strings.ToLower(raw))
		if !intent.IsNavigational() {
			// Control symbols only come from the restart and URL rules.
			r.logger.Debug("ignoring non-navigational explicit intent", "step", current, "intent", raw)
			return Resolution{Source: SourceExplicit}
		}
		res := Resolution{Intent: intent, Source: SourceExplicit}
		if u, ok := extractURL(msg); ok {
			res.URL = u
		}
		return r.expand(current, res)
	}

	if u, ok := extractURL(msg); ok {
		if current == domain.StageIngest {
			return r.expand(current, Resolution{Intent: domain.IntentFor(domain.StageIngest), URL: u, Source: SourceURL})
		}
		return r.expand(current, Resolution{Intent: domain.IntentNewSubject, URL: u, Source: SourceURL})
	}

	if msg == "" {
		return r.expand(current, Resolution{Intent: domain.IntentStay, Source: SourceDefault})
	}
	return r.expand(current, r.classify(ctx, current, msg))
}

func (r *Resolver) resolveRestart(state *domain.State, msg string) Resolution {
	switch {
	case msg == "":
		return Resolution{Intent: domain.IntentStay, Target: domain.StageConfirmRestart, Source: SourceRestart}
	case isAffirmative(msg):
		return Resolution{Intent: domain.IntentRestartConfirmed, Target: domain.StageIngest, Source: SourceRestart}
	}
	target := domain.FirstStage
	if state.PreviousStep != nil {
		target = *state.PreviousStep
	}
	return Resolution{Intent: domain.IntentRestartDeclined, Target: target, Source: SourceRestart}
}

func (r *Resolver) classify(ctx context.Context, current domain.Stage, msg string) Resolution {
	stay := Resolution{Intent: domain.IntentStay, Source: SourceClassifier}
	if r.classifier == nil {
		return stay
	}

	c, err := r.classifier.Classify(ctx, current, msg)
	if err != nil {
		r.logger.Warn("intent classification failed, staying", "step", current, "err", err)
		return stay
	}

	intent := domain.Intent(strings.ToLower(strings.TrimSpace(c.Intent)))
	if !intent.IsNavigational() {
		r.logger.Debug("classifier returned unknown intent, staying", "step", current, "intent", c.Intent)
		stay.Reasoning = c.Reasoning
		return stay
	}
	return Resolution{Intent: intent, Reasoning: c.Reasoning, Source: SourceClassifier}
}

func (r *Resolver) expand(current domain.Stage, res Resolution) Resolution {
	if target, ok := Route(current, res.Intent); ok {
		res.Target = target
	}
	return res
}
