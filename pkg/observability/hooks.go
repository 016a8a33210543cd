package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/adflow/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, failures at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "stage_enter", "session_id", e.SessionID, "stage", e.Stage)
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			if e.Error != "" {
				logger.WarnContext(ctx, "stage_leave", "session_id", e.SessionID, "stage", e.Stage, "err", e.Error)
				return
			}
			logger.DebugContext(ctx, "stage_leave", "session_id", e.SessionID, "stage", e.Stage, "cached", e.Cached)
		},
		OnCollaboratorCall: func(ctx context.Context, e *domain.CollaboratorEvent) {
			logger.DebugContext(ctx, "collaborator_call", "session_id", e.SessionID, "collaborator", e.Collaborator)
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			logger.DebugContext(ctx, "collaborator_return",
				"session_id", e.SessionID,
				"collaborator", e.Collaborator,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
		OnIntentResolved: func(ctx context.Context, e *domain.IntentEvent) {
			logger.DebugContext(ctx, "intent_resolved",
				"session_id", e.SessionID,
				"from", e.From,
				"intent", e.Intent,
				"target", e.Target,
				"source", e.Source,
			)
		},
	}
}

// Merge combines hook sets; each event is delivered to every set in order.
func Merge(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnStageEnter = chain(out.OnStageEnter, h.OnStageEnter)
		out.OnStageLeave = chain(out.OnStageLeave, h.OnStageLeave)
		out.OnCollaboratorCall = chain(out.OnCollaboratorCall, h.OnCollaboratorCall)
		out.OnCollaboratorReturn = chain(out.OnCollaboratorReturn, h.OnCollaboratorReturn)
		out.OnIntentResolved = chain(out.OnIntentResolved, h.OnIntentResolved)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
